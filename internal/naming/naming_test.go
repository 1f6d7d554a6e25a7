package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	n := Default()
	assert.Equal(t, "users", n.Pluralize("user"))
	assert.Equal(t, "categories", n.Pluralize("category"))
	assert.Equal(t, "people", n.Pluralize("person"))
}

func TestPluralize_Override(t *testing.T) {
	n := New(Config{PluralOverrides: map[string]string{"schema": "schemata"}})
	assert.Equal(t, "schemata", n.Pluralize("schema"))
	assert.Equal(t, "users", n.Pluralize("user"))
}

func TestSingularize(t *testing.T) {
	n := Default()
	assert.Equal(t, "user", n.Singularize("users"))
	assert.Equal(t, "category", n.Singularize("categories"))
}

func TestEntityName(t *testing.T) {
	n := Default()
	assert.Equal(t, "user_profile", n.EntityName("user_profiles"))
	assert.Equal(t, "order", n.EntityName("orders"))
}

func TestManyToOneName(t *testing.T) {
	n := Default()
	assert.Equal(t, "author", n.ManyToOneName("author_id"))
	assert.Equal(t, "owner", n.ManyToOneName("owner_fk"))
	assert.Equal(t, "parent", n.ManyToOneName("parent"))
}

func TestOneToManyName(t *testing.T) {
	n := Default()
	assert.Equal(t, "comments", n.OneToManyName("comments", "article_id", true))
	// A second FK to the same target disambiguates via the FK column.
	assert.Equal(t, "author_articles", n.OneToManyName("articles", "author_id", false))
	assert.Equal(t, "editor_articles", n.OneToManyName("articles", "editor_id", false))
}
