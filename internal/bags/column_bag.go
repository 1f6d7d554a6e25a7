package bags

import (
	"sort"

	"relq/internal/entity"
)

// ColumnBag holds the stored columns of one entity. Lookups understand
// dot-notation into structured columns: "col.a.b" resolves to a nested
// field accessor when "col" is structured, and fails otherwise.
type ColumnBag struct {
	entityName string
	columns    map[string]entity.Column
	order      []string
	structured map[string]struct{}
	arrays     map[string]struct{}
}

// NewColumnBag builds a bag over the given columns. The entity name is used
// in error messages only.
func NewColumnBag(entityName string, columns []entity.Column) *ColumnBag {
	b := &ColumnBag{
		entityName: entityName,
		columns:    make(map[string]entity.Column, len(columns)),
		order:      make([]string, 0, len(columns)),
		structured: make(map[string]struct{}),
		arrays:     make(map[string]struct{}),
	}
	for _, c := range columns {
		b.columns[c.Name] = c
		b.order = append(b.order, c.Name)
		switch c.Type {
		case entity.Structured:
			b.structured[c.Name] = struct{}{}
		case entity.Array:
			b.arrays[c.Name] = struct{}{}
		}
	}
	return b
}

// Contains reports whether the name resolves: a plain column name, or a
// dotted path whose head is a structured column.
func (b *ColumnBag) Contains(name string) bool {
	head, tail := splitDotted(name)
	if _, ok := b.columns[head]; !ok {
		return false
	}
	if tail == "" {
		return true
	}
	_, structured := b.structured[head]
	return structured
}

// Get resolves a column or a structured-column path.
func (b *ColumnBag) Get(name string) (Ref, error) {
	head, tail := splitDotted(name)
	col, ok := b.columns[head]
	if !ok {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	if tail == "" {
		return Ref{Kind: KindColumn, Name: name, Column: col}, nil
	}
	if _, structured := b.structured[head]; !structured {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	return Ref{Kind: KindStructuredPath, Name: name, Column: col, Path: tail}, nil
}

// Names returns the sorted column names.
func (b *ColumnBag) Names() []string {
	names := append([]string(nil), b.order...)
	sort.Strings(names)
	return names
}

// Iterate returns a handle per column in declaration order.
func (b *ColumnBag) Iterate() []Ref {
	refs := make([]Ref, 0, len(b.order))
	for _, name := range b.order {
		refs = append(refs, Ref{Kind: KindColumn, Name: name, Column: b.columns[name]})
	}
	return refs
}

// InvalidNames validates the requested names. Names that look invalid as a
// whole key get a second chance: a dotted name whose head is a structured
// column is valid once split.
func (b *ColumnBag) InvalidNames(requested []string) []string {
	return baseInvalidNames(requested, b.Contains)
}

// IsArray reports whether the named column (head of a dotted name) is
// array-typed.
func (b *ColumnBag) IsArray(name string) bool {
	_, ok := b.arrays[headName(name)]
	return ok
}

// IsStructured reports whether the named column (head of a dotted name) is
// structured.
func (b *ColumnBag) IsStructured(name string) bool {
	_, ok := b.structured[headName(name)]
	return ok
}

// StructuredNames returns the sorted names of structured columns.
func (b *ColumnBag) StructuredNames() []string {
	return sortedNames(b.structured)
}

// Column returns the plain column for a possibly dotted name.
func (b *ColumnBag) Column(name string) (entity.Column, error) {
	col, ok := b.columns[headName(name)]
	if !ok {
		return entity.Column{}, NewUnknownAttributeError(b.entityName, name)
	}
	return col, nil
}

// WithAlias returns a copy with every column handle rebound to the alias.
// Name sets and type classification are shared facts and carry over as-is.
func (b *ColumnBag) WithAlias(alias string) Bag {
	return b.withAlias(alias)
}

func (b *ColumnBag) withAlias(alias string) *ColumnBag {
	rebound := make(map[string]entity.Column, len(b.columns))
	for name, col := range b.columns {
		rebound[name] = col.WithAlias(alias)
	}
	return &ColumnBag{
		entityName: b.entityName,
		columns:    rebound,
		order:      b.order,
		structured: b.structured,
		arrays:     b.arrays,
	}
}
