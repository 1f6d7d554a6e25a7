package clauses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/internal/bags"
)

func TestGroup_NameList(t *testing.T) {
	g := NewGroup(newUserRegistry(t))

	res, err := g.Apply(SortInput{Names: []string{"age", "name-"}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{
		{Name: "age", Direction: +1},
		{Name: "name", Direction: -1},
	}, res.Entries)
	assert.Equal(t, []string{"age", "name"}, res.Names())
}

func TestGroup_NoInput(t *testing.T) {
	g := NewGroup(newUserRegistry(t))

	res, err := g.Apply(SortInput{})
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

func TestGroup_MultiKeyMapping(t *testing.T) {
	g := NewGroup(newUserRegistry(t))

	_, err := g.Apply(SortInput{Flags: map[string]int{"age": 1, "name": 1}})
	var ambiguous *AmbiguousQueryError
	require.ErrorAs(t, err, &ambiguous)
	assert.Contains(t, err.Error(), "group")
}

func TestGroup_RejectsSimpleProperty(t *testing.T) {
	g := NewGroup(newUserRegistry(t))

	_, err := g.Apply(SortInput{Names: []string{"display_name"}})
	var unknown *bags.UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
}
