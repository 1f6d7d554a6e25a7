package bags

import (
	"sort"

	"relq/internal/entity"
)

// RelatedColumnBag addresses columns of related entities through
// "relationship.column" names. The split point is the relationship
// boundary: the part after the first dot is looked up as one key against
// the target entity's columns, with no further dot-splitting at this level.
type RelatedColumnBag struct {
	entityName string
	// columns maps the full dotted name to the target entity's column.
	columns map[string]entity.Column
	rels    map[string]entity.Relationship
	// relOf maps the full dotted name to the owning relationship name.
	relOf map[string]string
	order []string
	// structured and arrays are keyed by the full dotted name.
	structured map[string]struct{}
	arrays     map[string]struct{}
}

// NewRelatedColumnBag builds the cross-product of each relationship's name
// and its target entity's columns.
func NewRelatedColumnBag(entityName string, rels []entity.Relationship) *RelatedColumnBag {
	b := &RelatedColumnBag{
		entityName: entityName,
		columns:    make(map[string]entity.Column),
		rels:       make(map[string]entity.Relationship, len(rels)),
		relOf:      make(map[string]string),
		structured: make(map[string]struct{}),
		arrays:     make(map[string]struct{}),
	}
	for _, rel := range rels {
		b.rels[rel.Name] = rel
		if rel.Target == nil {
			continue
		}
		for _, col := range rel.Target.Columns() {
			key := rel.Name + "." + col.Name
			b.columns[key] = col
			b.relOf[key] = rel.Name
			b.order = append(b.order, key)
			switch col.Type {
			case entity.Structured:
				b.structured[key] = struct{}{}
			case entity.Array:
				b.arrays[key] = struct{}{}
			}
		}
	}
	return b
}

// Contains reports whether the full dotted name is a known related column.
func (b *RelatedColumnBag) Contains(name string) bool {
	_, ok := b.columns[name]
	return ok
}

// Get resolves a "relationship.column" name.
func (b *RelatedColumnBag) Get(name string) (Ref, error) {
	col, ok := b.columns[name]
	if !ok {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	return Ref{
		Kind:         KindRelatedColumn,
		Name:         name,
		Column:       col,
		Relationship: b.rels[b.relOf[name]],
	}, nil
}

// Names returns the sorted full dotted names.
func (b *RelatedColumnBag) Names() []string {
	names := append([]string(nil), b.order...)
	sort.Strings(names)
	return names
}

// Iterate returns a handle per related column in declaration order.
func (b *RelatedColumnBag) Iterate() []Ref {
	refs := make([]Ref, 0, len(b.order))
	for _, name := range b.order {
		refs = append(refs, Ref{
			Kind:         KindRelatedColumn,
			Name:         name,
			Column:       b.columns[name],
			Relationship: b.rels[b.relOf[name]],
		})
	}
	return refs
}

// InvalidNames returns the requested names that are not related columns.
// There is no dot-path forgiveness here: the related column's own sub-paths
// are not addressable from this bag.
func (b *RelatedColumnBag) InvalidNames(requested []string) []string {
	return baseInvalidNames(requested, b.Contains)
}

// IsArray reports whether the related column is array-typed. The full
// dotted name is the key; no splitting happens.
func (b *RelatedColumnBag) IsArray(name string) bool {
	_, ok := b.arrays[name]
	return ok
}

// IsStructured reports whether the related column is structured, keyed by
// the full dotted name.
func (b *RelatedColumnBag) IsStructured(name string) bool {
	_, ok := b.structured[name]
	return ok
}

// RelationshipName returns the relationship part of a dotted name.
func (b *RelatedColumnBag) RelationshipName(name string) string {
	return headName(name)
}

// ColumnName returns the column part of a dotted name.
func (b *RelatedColumnBag) ColumnName(name string) string {
	_, tail := splitDotted(name)
	return tail
}

// Relationship resolves the relationship a dotted name goes through. It
// accepts both relationship names and related column names.
func (b *RelatedColumnBag) Relationship(name string) (entity.Relationship, error) {
	rel, ok := b.rels[headName(name)]
	if !ok {
		return entity.Relationship{}, NewUnknownAttributeError(b.entityName, name)
	}
	return rel, nil
}

// IsToMany reports whether the relationship behind the name is
// multi-valued. It accepts both "rel" and "rel.col" forms.
func (b *RelatedColumnBag) IsToMany(name string) bool {
	rel, ok := b.rels[headName(name)]
	return ok && rel.ToMany
}

// WithAlias returns a copy whose relationship handles are rebound to the
// alias. Target columns stay bound to the target entity's table: joining
// them under an alias is the join compiler's concern.
func (b *RelatedColumnBag) WithAlias(alias string) Bag {
	return b.withAlias(alias)
}

func (b *RelatedColumnBag) withAlias(alias string) *RelatedColumnBag {
	rebound := make(map[string]entity.Relationship, len(b.rels))
	for name, rel := range b.rels {
		rebound[name] = rel.WithAlias(alias)
	}
	return &RelatedColumnBag{
		entityName: b.entityName,
		columns:    b.columns,
		rels:       rebound,
		relOf:      b.relOf,
		order:      b.order,
		structured: b.structured,
		arrays:     b.arrays,
	}
}
