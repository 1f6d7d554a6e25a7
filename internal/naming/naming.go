// Package naming derives attribute and relationship names from SQL schema
// names, with pluralization and per-schema overrides.
package naming

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Config holds naming customization options.
type Config struct {
	// PluralOverrides maps singular -> custom plural,
	// e.g. {"person": "people"}.
	PluralOverrides map[string]string `mapstructure:"plural_overrides"`
	// SingularOverrides maps plural -> custom singular.
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// Namer turns table and foreign-key names into entity and relationship
// names.
type Namer struct {
	config Config
}

// New creates a Namer with the given configuration.
func New(cfg Config) *Namer {
	return &Namer{config: cfg}
}

// Default returns a Namer with no overrides.
func Default() *Namer {
	return New(Config{})
}

// Pluralize converts a singular word to its plural form, overrides first.
func (n *Namer) Pluralize(word string) string {
	if override, ok := n.config.PluralOverrides[word]; ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize converts a plural word to its singular form, overrides
// first.
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// EntityName derives an entity name from its table name: the singular
// form, e.g. "user_profiles" -> "user_profile".
func (n *Namer) EntityName(tableName string) string {
	return n.Singularize(tableName)
}

// ManyToOneName derives a to-one relationship name from its FK column,
// stripping common FK suffixes: "author_id" -> "author".
func (n *Namer) ManyToOneName(fkColumn string) string {
	name := fkColumn
	for _, suffix := range []string{"_id", "_fk"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return name
}

// OneToManyName derives a to-many relationship name from the referencing
// table. With a single FK between the tables the pluralized table name is
// enough ("comments"); with several, the FK column disambiguates
// ("author_articles", "editor_articles").
func (n *Namer) OneToManyName(sourceTable, fkColumn string, isOnlyFK bool) string {
	plural := n.Pluralize(n.Singularize(sourceTable))
	if isOnlyFK {
		return plural
	}
	return n.ManyToOneName(fkColumn) + "_" + plural
}
