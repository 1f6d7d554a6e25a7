// Package bags provides uniform, read-only views over the named attributes
// of an entity: stored columns, relationships, simple and computed
// properties, and relationship-qualified related columns. A bag answers
// membership, lookup, enumeration, and bulk-validation queries through one
// contract, so callers can treat structurally different attribute kinds the
// same way and dispatch on kind only where it matters.
package bags

import (
	"sort"
	"strings"

	"relq/internal/entity"
)

// Kind identifies what an attribute reference points at.
type Kind int

const (
	// KindColumn is a stored column.
	KindColumn Kind = iota
	// KindStructuredPath is a dot-path into a structured (JSON) column.
	KindStructuredPath
	// KindRelationship is a relationship to another entity.
	KindRelationship
	// KindProperty is a simple property: it exists and may be requested,
	// nothing more.
	KindProperty
	// KindComputed is a computed property backed by a SQL expression.
	KindComputed
	// KindRelatedColumn is a column of a related entity, addressed as
	// "relationship.column".
	KindRelatedColumn
)

func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindStructuredPath:
		return "structured path"
	case KindRelationship:
		return "relationship"
	case KindProperty:
		return "property"
	case KindComputed:
		return "computed property"
	case KindRelatedColumn:
		return "related column"
	default:
		return "attribute"
	}
}

// Ref is a resolved attribute handle. Exactly the fields relevant to Kind
// are populated; the rest are zero values.
type Ref struct {
	Kind Kind
	// Name is the name the attribute was looked up by, dots included.
	Name string

	// Column is set for KindColumn, KindStructuredPath and
	// KindRelatedColumn.
	Column entity.Column
	// Path is the field path inside a structured column, dot-joined,
	// set for KindStructuredPath.
	Path string
	// Relationship is set for KindRelationship and KindRelatedColumn.
	Relationship entity.Relationship
	// Expr is the SQL expression of a computed property.
	Expr string
	// Qualifier is the table name or query alias for kinds without a
	// Column of their own (KindComputed).
	Qualifier string
}

// Bag is the uniform contract over a named set of entity attributes.
// Implementations are immutable; WithAlias returns a rebound copy.
type Bag interface {
	// Contains reports whether the name resolves in this bag.
	Contains(name string) bool
	// Get resolves a name to an attribute handle, or fails with
	// *UnknownAttributeError.
	Get(name string) (Ref, error)
	// Names returns the sorted set of plain attribute names. Dotted
	// derivations (structured paths) are not enumerated.
	Names() []string
	// Iterate returns a handle per attribute in declaration order.
	Iterate() []Ref
	// InvalidNames returns the requested names that do not resolve,
	// sorted.
	InvalidNames(requested []string) []string
	// WithAlias returns a copy of the bag whose handles are bound to the
	// given query alias. The receiver is unchanged.
	WithAlias(alias string) Bag
}

// splitDotted splits a dotted attribute name at the first dot. For a plain
// name the tail is empty.
func splitDotted(name string) (head, tail string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// headName returns the part of a name before the first dot.
func headName(name string) string {
	head, _ := splitDotted(name)
	return head
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// baseInvalidNames is the default bulk validation: requested minus known,
// with no dot-notation forgiveness.
func baseInvalidNames(requested []string, contains func(string) bool) []string {
	var invalid []string
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if !contains(name) {
			invalid = append(invalid, name)
		}
	}
	sort.Strings(invalid)
	return invalid
}
