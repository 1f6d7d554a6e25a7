// Package entity defines the descriptors the schema registry consumes:
// entities, their columns, relationships, and computed properties, plus the
// aliasing primitive used for self-joins and sub-joins. Descriptors are
// immutable after construction; aliasing returns rebound copies.
package entity

import "fmt"

// TypeClass classifies a column's value shape.
type TypeClass int

const (
	// Plain is a scalar column.
	Plain TypeClass = iota
	// Array is an array-valued column (e.g. MySQL SET).
	Array
	// Structured is a nested-document column (e.g. JSON), addressable
	// through dot-paths.
	Structured
)

func (t TypeClass) String() string {
	switch t {
	case Array:
		return "array"
	case Structured:
		return "structured"
	default:
		return "plain"
	}
}

// Column describes a stored column of an entity.
type Column struct {
	Name       string
	Type       TypeClass
	Nullable   bool
	PrimaryKey bool

	// qualifier is the table name or query alias used to address the
	// column in SQL. Set when the owning entity is built, replaced by
	// WithAlias.
	qualifier string
}

// Qualifier returns the table name or alias the column is bound to.
func (c Column) Qualifier() string { return c.qualifier }

// WithAlias returns a copy of the column bound to the given query alias.
// The receiver is not modified.
func (c Column) WithAlias(alias string) Column {
	c.qualifier = alias
	return c
}

// Relationship describes a named association to another entity.
type Relationship struct {
	Name   string
	Target *Entity
	// ToMany is true for multi-valued relationships.
	ToMany bool

	qualifier string
}

// Qualifier returns the table name or alias the relationship is bound to.
func (r Relationship) Qualifier() string { return r.qualifier }

// WithAlias returns a copy of the relationship bound to a query alias.
func (r Relationship) WithAlias(alias string) Relationship {
	r.qualifier = alias
	return r
}

// ComputedProperty is a named attribute derived from other attributes via a
// SQL expression. It is not separately stored but may be projected or sorted.
type ComputedProperty struct {
	Name string
	Expr string
}

// Definition is the introspection result an Entity is built from.
type Definition struct {
	Name          string
	Table         string
	Columns       []Column
	Relationships []Relationship
	// Properties are simple named attributes: they exist and may be
	// requested, but carry no SQL meaning for sorting or filtering.
	Properties []string
	Computed   []ComputedProperty
}

// Entity is an opaque handle to a mapped relational type. Two entities are
// the same entity only if they are the same pointer; the registry cache is
// keyed by that identity.
type Entity struct {
	name          string
	table         string
	columns       []Column
	relationships []Relationship
	properties    []string
	computed      []ComputedProperty
}

// New builds an Entity from a definition, binding every column and
// relationship to the entity's table name.
func New(def Definition) *Entity {
	e := &Entity{
		name:          def.Name,
		table:         def.Table,
		columns:       make([]Column, len(def.Columns)),
		relationships: make([]Relationship, len(def.Relationships)),
		properties:    append([]string(nil), def.Properties...),
		computed:      append([]ComputedProperty(nil), def.Computed...),
	}
	for i, c := range def.Columns {
		c.qualifier = def.Table
		e.columns[i] = c
	}
	for i, r := range def.Relationships {
		r.qualifier = def.Table
		e.relationships[i] = r
	}
	return e
}

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// Table returns the mapped table name.
func (e *Entity) Table() string { return e.table }

// Columns returns the stored columns in declaration order.
func (e *Entity) Columns() []Column { return e.columns }

// Relationships returns the entity's relationships in declaration order.
func (e *Entity) Relationships() []Relationship { return e.relationships }

// Properties returns the simple property names.
func (e *Entity) Properties() []string { return e.properties }

// Computed returns the computed properties.
func (e *Entity) Computed() []ComputedProperty { return e.computed }

// PrimaryKey returns the primary key columns in declaration order.
func (e *Entity) PrimaryKey() []Column {
	var pk []Column
	for _, c := range e.columns {
		if c.PrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// BindRelationships attaches relationships after every entity of a schema
// exists, so cyclic references can be expressed. It is part of
// construction: binding twice is an error, and no relationships may be
// bound after the entity has been handed to a registry.
func (e *Entity) BindRelationships(rels []Relationship) error {
	if len(e.relationships) > 0 {
		return fmt.Errorf("entity %s: relationships already bound", e.name)
	}
	e.relationships = make([]Relationship, len(rels))
	for i, r := range rels {
		r.qualifier = e.table
		e.relationships[i] = r
	}
	return nil
}

// Alias is a distinct reference to an entity within one query, e.g. for a
// self-join. Attribute handles resolved through an alias are bound to it
// instead of the entity's table.
type Alias struct {
	Entity *Entity
	Name   string
}

// As derives a query alias for the entity. The entity itself is never
// modified by aliasing.
func (e *Entity) As(name string) Alias {
	return Alias{Entity: e, Name: name}
}
