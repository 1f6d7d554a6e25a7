package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BindsQualifiers(t *testing.T) {
	e := New(Definition{
		Name:  "user",
		Table: "users",
		Columns: []Column{
			{Name: "id", PrimaryKey: true},
			{Name: "name"},
		},
	})

	assert.Equal(t, "user", e.Name())
	assert.Equal(t, "users", e.Table())
	require.Len(t, e.Columns(), 2)
	for _, c := range e.Columns() {
		assert.Equal(t, "users", c.Qualifier())
	}
}

func TestPrimaryKey(t *testing.T) {
	e := New(Definition{
		Name:  "order_item",
		Table: "order_items",
		Columns: []Column{
			{Name: "order_id", PrimaryKey: true},
			{Name: "item_id", PrimaryKey: true},
			{Name: "quantity"},
		},
	})

	pk := e.PrimaryKey()
	require.Len(t, pk, 2)
	assert.Equal(t, "order_id", pk[0].Name)
	assert.Equal(t, "item_id", pk[1].Name)
}

func TestBindRelationships(t *testing.T) {
	users := New(Definition{Name: "user", Table: "users", Columns: []Column{{Name: "id", PrimaryKey: true}}})
	articles := New(Definition{Name: "article", Table: "articles", Columns: []Column{{Name: "id", PrimaryKey: true}, {Name: "uid"}}})

	require.NoError(t, users.BindRelationships([]Relationship{
		{Name: "articles", Target: articles, ToMany: true},
	}))
	require.NoError(t, articles.BindRelationships([]Relationship{
		{Name: "user", Target: users},
	}))

	require.Len(t, users.Relationships(), 1)
	rel := users.Relationships()[0]
	assert.Equal(t, "articles", rel.Name)
	assert.True(t, rel.ToMany)
	assert.Same(t, articles, rel.Target)
	assert.Equal(t, "users", rel.Qualifier())
}

func TestBindRelationships_Twice(t *testing.T) {
	users := New(Definition{Name: "user", Table: "users", Columns: []Column{{Name: "id"}}})
	require.NoError(t, users.BindRelationships([]Relationship{{Name: "self", Target: users}}))

	err := users.BindRelationships([]Relationship{{Name: "again", Target: users}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bound")
}

func TestColumnWithAlias(t *testing.T) {
	e := New(Definition{Name: "user", Table: "users", Columns: []Column{{Name: "id"}}})

	col := e.Columns()[0]
	aliased := col.WithAlias("u1")
	assert.Equal(t, "u1", aliased.Qualifier())
	// The original handle keeps its table binding.
	assert.Equal(t, "users", col.Qualifier())
	assert.Equal(t, "users", e.Columns()[0].Qualifier())
}

func TestAs(t *testing.T) {
	e := New(Definition{Name: "node", Table: "nodes", Columns: []Column{{Name: "id"}}})
	a := e.As("parent")
	assert.Same(t, e, a.Entity)
	assert.Equal(t, "parent", a.Name)
}
