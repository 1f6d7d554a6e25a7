package bags

import (
	"sort"

	"relq/internal/entity"
)

// PropertyBag holds simple property names. A simple property exists and may
// be requested, but carries nothing usable for sorting or filtering.
type PropertyBag struct {
	entityName string
	names      map[string]struct{}
	order      []string
}

// NewPropertyBag builds a bag over simple property names.
func NewPropertyBag(entityName string, names []string) *PropertyBag {
	b := &PropertyBag{
		entityName: entityName,
		names:      make(map[string]struct{}, len(names)),
		order:      append([]string(nil), names...),
	}
	for _, n := range names {
		b.names[n] = struct{}{}
	}
	return b
}

func (b *PropertyBag) Contains(name string) bool {
	_, ok := b.names[name]
	return ok
}

func (b *PropertyBag) Get(name string) (Ref, error) {
	if _, ok := b.names[name]; !ok {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	return Ref{Kind: KindProperty, Name: name}, nil
}

func (b *PropertyBag) Names() []string {
	names := append([]string(nil), b.order...)
	sort.Strings(names)
	return names
}

func (b *PropertyBag) Iterate() []Ref {
	refs := make([]Ref, 0, len(b.order))
	for _, name := range b.order {
		refs = append(refs, Ref{Kind: KindProperty, Name: name})
	}
	return refs
}

func (b *PropertyBag) InvalidNames(requested []string) []string {
	return baseInvalidNames(requested, b.Contains)
}

// WithAlias returns the bag itself: simple properties hold no handles to
// rebind, so the bag is alias-agnostic.
func (b *PropertyBag) WithAlias(string) Bag { return b }

// ComputedBag holds computed (hybrid) properties: named SQL expressions
// derived from other attributes.
type ComputedBag struct {
	entityName string
	exprs      map[string]string
	order      []string
	// qualifier is the table or alias the expressions are evaluated
	// against.
	qualifier string
}

// NewComputedBag builds a bag over computed properties, bound to the
// entity's table.
func NewComputedBag(entityName, table string, computed []entity.ComputedProperty) *ComputedBag {
	b := &ComputedBag{
		entityName: entityName,
		exprs:      make(map[string]string, len(computed)),
		order:      make([]string, 0, len(computed)),
		qualifier:  table,
	}
	for _, cp := range computed {
		b.exprs[cp.Name] = cp.Expr
		b.order = append(b.order, cp.Name)
	}
	return b
}

func (b *ComputedBag) Contains(name string) bool {
	_, ok := b.exprs[name]
	return ok
}

func (b *ComputedBag) Get(name string) (Ref, error) {
	expr, ok := b.exprs[name]
	if !ok {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	return Ref{Kind: KindComputed, Name: name, Expr: expr, Qualifier: b.qualifier}, nil
}

func (b *ComputedBag) Names() []string {
	names := append([]string(nil), b.order...)
	sort.Strings(names)
	return names
}

func (b *ComputedBag) Iterate() []Ref {
	refs := make([]Ref, 0, len(b.order))
	for _, name := range b.order {
		refs = append(refs, Ref{Kind: KindComputed, Name: name, Expr: b.exprs[name], Qualifier: b.qualifier})
	}
	return refs
}

func (b *ComputedBag) InvalidNames(requested []string) []string {
	return baseInvalidNames(requested, b.Contains)
}

// WithAlias returns a copy whose handles report the alias as their
// qualifier.
func (b *ComputedBag) WithAlias(alias string) Bag {
	return b.withAlias(alias)
}

func (b *ComputedBag) withAlias(alias string) *ComputedBag {
	return &ComputedBag{
		entityName: b.entityName,
		exprs:      b.exprs,
		order:      b.order,
		qualifier:  alias,
	}
}
