package clauses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/internal/bags"
)

func TestSort_NameList(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{Names: []string{"age-", "name+", "id"}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{
		{Name: "age", Direction: -1},
		{Name: "name", Direction: +1},
		{Name: "id", Direction: +1},
	}, res.Entries)
	assert.Equal(t, []string{"age", "name", "id"}, res.Names())
	assert.False(t, res.IsEmpty())
}

func TestSort_NoInput(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{})
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

func TestSort_DuplicateKeepsFirstPosition(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{Names: []string{"age+", "name-", "age-"}})
	require.NoError(t, err)
	// The later duplicate overwrites the direction in place.
	assert.Equal(t, []SortEntry{
		{Name: "age", Direction: -1},
		{Name: "name", Direction: -1},
	}, res.Entries)
}

func TestSort_MappingShorthand(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{Flags: map[string]int{"age": -1}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{{Name: "age", Direction: -1}}, res.Entries)

	res, err = s.Apply(SortInput{Flags: map[string]int{"age": 1}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{{Name: "age", Direction: +1}}, res.Entries)
}

func TestSort_MappingRejectsInvalidDirection(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	for _, dir := range []int{0, 2, -3} {
		_, err := s.Apply(SortInput{Flags: map[string]int{"age": dir}})
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid, "direction %d", dir)
	}
}

func TestSort_MultiKeyMapping(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	_, err := s.Apply(SortInput{Flags: map[string]int{"age": -1, "name": 1}})
	var ambiguous *AmbiguousQueryError
	require.ErrorAs(t, err, &ambiguous)
}

func TestSort_ComputedProperty(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{Names: []string{"age_next_year-"}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{{Name: "age_next_year", Direction: -1}}, res.Entries)
}

func TestSort_RejectsSimpleProperty(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	_, err := s.Apply(SortInput{Names: []string{"display_name"}})
	var unknown *bags.UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"display_name"}, unknown.Names)
}

func TestSort_UnknownName(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	_, err := s.Apply(SortInput{Names: []string{"name", "bogus-"}})
	var unknown *bags.UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"bogus"}, unknown.Names)
}

func TestSort_StructuredPath(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	res, err := s.Apply(SortInput{Names: []string{"meta.rating-"}})
	require.NoError(t, err)
	assert.Equal(t, []SortEntry{{Name: "meta.rating", Direction: -1}}, res.Entries)
}

func TestSort_ListAndMappingConflict(t *testing.T) {
	s := NewSort(newUserRegistry(t))

	_, err := s.Apply(SortInput{Names: []string{"age"}, Flags: map[string]int{"age": 1}})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
