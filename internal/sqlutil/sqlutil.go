// Package sqlutil provides SQL quoting helpers for MySQL-family dialects.
package sqlutil

import "strings"

// QuoteIdentifier backtick-quotes a table or column name, escaping
// embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteQualified quotes a qualifier.name pair.
func QuoteQualified(qualifier, name string) string {
	if qualifier == "" {
		return QuoteIdentifier(name)
	}
	return QuoteIdentifier(qualifier) + "." + QuoteIdentifier(name)
}

// QuoteString single-quotes a string literal, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// JSONPath renders a dotted field path as a quoted MySQL JSON path
// literal: "a.b" becomes '$.a.b'.
func JSONPath(path string) string {
	return QuoteString("$." + path)
}
