package bags

import (
	"sort"

	"relq/internal/entity"
)

// RelationshipBag holds the relationships of one entity.
type RelationshipBag struct {
	entityName string
	rels       map[string]entity.Relationship
	order      []string
	toMany     map[string]struct{}
}

// NewRelationshipBag builds a bag over the given relationships.
func NewRelationshipBag(entityName string, rels []entity.Relationship) *RelationshipBag {
	b := &RelationshipBag{
		entityName: entityName,
		rels:       make(map[string]entity.Relationship, len(rels)),
		order:      make([]string, 0, len(rels)),
		toMany:     make(map[string]struct{}),
	}
	for _, r := range rels {
		b.rels[r.Name] = r
		b.order = append(b.order, r.Name)
		if r.ToMany {
			b.toMany[r.Name] = struct{}{}
		}
	}
	return b
}

// Contains reports whether the relationship exists.
func (b *RelationshipBag) Contains(name string) bool {
	_, ok := b.rels[name]
	return ok
}

// Get resolves a relationship by name.
func (b *RelationshipBag) Get(name string) (Ref, error) {
	rel, ok := b.rels[name]
	if !ok {
		return Ref{}, NewUnknownAttributeError(b.entityName, name)
	}
	return Ref{Kind: KindRelationship, Name: name, Relationship: rel}, nil
}

// Names returns the sorted relationship names.
func (b *RelationshipBag) Names() []string {
	names := append([]string(nil), b.order...)
	sort.Strings(names)
	return names
}

// Iterate returns a handle per relationship in declaration order.
func (b *RelationshipBag) Iterate() []Ref {
	refs := make([]Ref, 0, len(b.order))
	for _, name := range b.order {
		refs = append(refs, Ref{Kind: KindRelationship, Name: name, Relationship: b.rels[name]})
	}
	return refs
}

// InvalidNames returns the requested names that are not relationships.
func (b *RelationshipBag) InvalidNames(requested []string) []string {
	return baseInvalidNames(requested, b.Contains)
}

// IsToMany reports whether the relationship is multi-valued.
func (b *RelationshipBag) IsToMany(name string) bool {
	_, ok := b.toMany[name]
	return ok
}

// Target returns the target entity of a relationship.
func (b *RelationshipBag) Target(name string) (*entity.Entity, error) {
	rel, ok := b.rels[name]
	if !ok {
		return nil, NewUnknownAttributeError(b.entityName, name)
	}
	return rel.Target, nil
}

// WithAlias returns a copy with every relationship handle rebound to the
// alias.
func (b *RelationshipBag) WithAlias(alias string) Bag {
	return b.withAlias(alias)
}

func (b *RelationshipBag) withAlias(alias string) *RelationshipBag {
	rebound := make(map[string]entity.Relationship, len(b.rels))
	for name, rel := range b.rels {
		rebound[name] = rel.WithAlias(alias)
	}
	return &RelationshipBag{
		entityName: b.entityName,
		rels:       rebound,
		order:      b.order,
		toMany:     b.toMany,
	}
}
