// Package registry owns the per-entity schema metadata: one bag of each
// kind per entity, built exactly once per entity identity and cached for
// the process lifetime. Aliased views of a registry are derived cheaply
// from the cached base without re-running introspection.
package registry

import (
	"sort"
	"sync"

	"relq/internal/bags"
	"relq/internal/entity"
)

// Registry binds all the metadata bags of one entity (or of one query
// alias of it) together. Once built it is immutable and safe for
// unsynchronized concurrent reads.
type Registry struct {
	entity    *entity.Entity
	aliasName string

	Columns        *bags.ColumnBag
	Relationships  *bags.RelationshipBag
	Properties     *bags.PropertyBag
	Computed       *bags.ComputedBag
	RelatedColumns *bags.RelatedColumnBag
	PrimaryKey     *bags.ColumnBag
	Nullable       *bags.ColumnBag

	projectable *bags.CombinedBag
	sortable    *bags.CombinedBag
}

func build(e *entity.Entity) *Registry {
	cols := e.Columns()
	var pk, nullable []entity.Column
	for _, c := range cols {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
		if c.Nullable {
			nullable = append(nullable, c)
		}
	}

	r := &Registry{
		entity:         e,
		Columns:        bags.NewColumnBag(e.Name(), cols),
		Relationships:  bags.NewRelationshipBag(e.Name(), e.Relationships()),
		Properties:     bags.NewPropertyBag(e.Name(), e.Properties()),
		Computed:       bags.NewComputedBag(e.Name(), e.Table(), e.Computed()),
		RelatedColumns: bags.NewRelatedColumnBag(e.Name(), e.Relationships()),
		PrimaryKey:     bags.NewColumnBag(e.Name(), pk),
		Nullable:       bags.NewColumnBag(e.Name(), nullable),
	}
	r.projectable = bags.NewCombinedBag(e.Name(),
		bags.Member{Role: "col", Bag: r.Columns},
		bags.Member{Role: "prop", Bag: r.Properties},
		bags.Member{Role: "hybrid", Bag: r.Computed},
	)
	r.sortable = bags.NewCombinedBag(e.Name(),
		bags.Member{Role: "col", Bag: r.Columns},
		bags.Member{Role: "hybrid", Bag: r.Computed},
	)
	return r
}

// Entity returns the entity the registry describes. For aliased registries
// this is still the base entity.
func (r *Registry) Entity() *entity.Entity { return r.entity }

// AliasName returns the query alias the registry is bound to, or "" for
// the base registry.
func (r *Registry) AliasName() string { return r.aliasName }

// Qualifier returns the alias when bound, the table name otherwise.
func (r *Registry) Qualifier() string {
	if r.aliasName != "" {
		return r.aliasName
	}
	return r.entity.Table()
}

// Projectable is the combined namespace projection inputs are validated
// against: columns, simple properties, and computed properties.
// Relationships and related columns are not projection targets.
func (r *Registry) Projectable() *bags.CombinedBag { return r.projectable }

// Sortable is the combined namespace sort and group inputs are validated
// against: columns and computed properties. Simple properties carry no SQL
// meaning and are rejected.
func (r *Registry) Sortable() *bags.CombinedBag { return r.sortable }

// AllNames returns the sorted names of every attribute defined for the
// entity: columns, properties, computed properties, and relationships.
func (r *Registry) AllNames() []string {
	set := make(map[string]struct{})
	for _, names := range [][]string{
		r.Columns.Names(),
		r.Properties.Names(),
		r.Computed.Names(),
		r.Relationships.Names(),
	} {
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DeriveForAlias returns a fresh registry value bound to the alias. Every
// bag is alias-derived; name sets and type classification are shared with
// the base, which is never mutated. Derivation only reads the immutable
// base and is safe to call concurrently.
func (r *Registry) DeriveForAlias(a entity.Alias) *Registry {
	derived := &Registry{
		entity:         r.entity,
		aliasName:      a.Name,
		Columns:        r.Columns.WithAlias(a.Name).(*bags.ColumnBag),
		Relationships:  r.Relationships.WithAlias(a.Name).(*bags.RelationshipBag),
		Properties:     r.Properties.WithAlias(a.Name).(*bags.PropertyBag),
		Computed:       r.Computed.WithAlias(a.Name).(*bags.ComputedBag),
		RelatedColumns: r.RelatedColumns.WithAlias(a.Name).(*bags.RelatedColumnBag),
		PrimaryKey:     r.PrimaryKey.WithAlias(a.Name).(*bags.ColumnBag),
		Nullable:       r.Nullable.WithAlias(a.Name).(*bags.ColumnBag),
	}
	derived.projectable = r.projectable.WithAlias(a.Name)
	derived.sortable = r.sortable.WithAlias(a.Name)
	return derived
}

// Catalog is the process-wide registry cache, keyed by entity identity.
// The first access for an entity builds its registry under the catalog
// lock; every later access returns the same instance. Entries are never
// evicted or rebuilt.
type Catalog struct {
	mu         sync.Mutex
	registries map[*entity.Entity]*Registry
}

// NewCatalog creates an empty catalog. A catalog is meant to be shared:
// construct one and inject it wherever compilers are built.
func NewCatalog() *Catalog {
	return &Catalog{registries: make(map[*entity.Entity]*Registry)}
}

// ForEntity returns the cached registry for the entity, building it on
// first use. Concurrent first access for the same entity is serialized so
// exactly one registry exists per entity identity.
func (c *Catalog) ForEntity(e *entity.Entity) *Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.registries[e]; ok {
		return r
	}
	r := build(e)
	c.registries[e] = r
	return r
}

// ForAlias resolves the alias back to its base entity, obtains (or builds)
// the base registry, and derives an alias-bound view from it. Derived
// views are not cached; the caller owning the alias owns their lifetime.
func (c *Catalog) ForAlias(a entity.Alias) *Registry {
	return c.ForEntity(a.Entity).DeriveForAlias(a)
}
