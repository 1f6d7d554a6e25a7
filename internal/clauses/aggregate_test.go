package clauses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/internal/bags"
)

func TestAggregate_ColumnOperators(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	res, err := a.Apply(AggregateInput{
		"oldest":   {Operator: OpMax, Name: "age"},
		"youngest": {Operator: OpMin, Name: "age"},
		"average":  {Operator: OpAvg, Name: "age"},
		"total":    {Operator: OpSum, Name: "age"},
	})
	require.NoError(t, err)
	// Entries come out ordered by label.
	assert.Equal(t, []string{"average", "oldest", "total", "youngest"}, res.Labels())
	assert.Equal(t, AggregateEntry{Label: "oldest", Operator: OpMax, Name: "age"}, res.Entries[1])
	assert.False(t, res.IsEmpty())
}

func TestAggregate_LabeledColumn(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	res, err := a.Apply(AggregateInput{"years": {Name: "age"}})
	require.NoError(t, err)
	assert.Equal(t, []AggregateEntry{{Label: "years", Name: "age"}}, res.Entries)
}

func TestAggregate_ComputedProperty(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	res, err := a.Apply(AggregateInput{"oldest_next_year": {Operator: OpMax, Name: "age_next_year"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest_next_year"}, res.Labels())
}

func TestAggregate_SumConstant(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	n := 1
	res, err := a.Apply(AggregateInput{"n": {Operator: OpSum, Constant: &n}})
	require.NoError(t, err)
	require.Equal(t, 1, len(res.Entries))
	require.NotNil(t, res.Entries[0].Constant)
	assert.Equal(t, 1, *res.Entries[0].Constant)
}

func TestAggregate_ConstantRequiresSum(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	n := 1
	_, err := a.Apply(AggregateInput{"n": {Operator: OpMin, Constant: &n}})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestAggregate_UnknownOperator(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	_, err := a.Apply(AggregateInput{"x": {Operator: "$median", Name: "age"}})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestAggregate_UnknownName(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	_, err := a.Apply(AggregateInput{"x": {Operator: OpMax, Name: "bogus"}})
	var unknown *bags.UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"bogus"}, unknown.Names)
}

func TestAggregate_RejectsSimpleProperty(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	_, err := a.Apply(AggregateInput{"x": {Operator: OpMax, Name: "display_name"}})
	var unknown *bags.UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
}

func TestAggregate_NoInput(t *testing.T) {
	a := NewAggregate(newUserRegistry(t))

	res, err := a.Apply(nil)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}
