package clauses

import (
	"sort"

	"relq/internal/bags"
	"relq/internal/registry"
)

// Aggregate operators accepted in expressions.
const (
	OpMin = "$min"
	OpMax = "$max"
	OpSum = "$sum"
	OpAvg = "$avg"
)

var aggregateOperators = map[string]struct{}{
	OpMin: {},
	OpMax: {},
	OpSum: {},
	OpAvg: {},
}

// AggregateTerm is one requested aggregate expression before validation.
// An empty Operator labels the attribute as-is; a non-nil Constant is the
// integer operand of $sum, which counts rows.
type AggregateTerm struct {
	Operator string
	Name     string
	Constant *int
}

// AggregateInput maps result labels to their requested terms; nil means no
// aggregation was requested.
type AggregateInput map[string]AggregateTerm

// Aggregate compiles aggregation inputs against one entity registry.
// Operands must resolve against columns or computed properties, the same
// attribute set sorting accepts.
type Aggregate struct {
	reg *registry.Registry
	bag *bags.CombinedBag
}

// NewAggregate builds an aggregate compiler for the registry.
func NewAggregate(reg *registry.Registry) *Aggregate {
	return &Aggregate{reg: reg, bag: reg.Sortable()}
}

// Apply compiles one request input into a validated aggregation
// specification. Request objects carry no ordering, so entries come out
// sorted by label.
func (a *Aggregate) Apply(input AggregateInput) (*AggregateResult, error) {
	if len(input) == 0 {
		return &AggregateResult{}, nil
	}

	labels := make([]string, 0, len(input))
	for label := range input {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var names []string
	for _, label := range labels {
		term := input[label]
		if term.Operator != "" {
			if _, ok := aggregateOperators[term.Operator]; !ok {
				return nil, &InvalidInputError{
					Reason: "aggregate operator " + term.Operator + " is not supported",
				}
			}
		}
		if term.Constant != nil {
			if term.Operator != OpSum {
				return nil, &InvalidInputError{Reason: "only " + OpSum + " accepts an integer operand"}
			}
			continue
		}
		names = append(names, term.Name)
	}
	if invalid := a.bag.InvalidNames(names); len(invalid) > 0 {
		return nil, bags.NewUnknownAttributeError(a.reg.Entity().Name(), invalid...)
	}

	entries := make([]AggregateEntry, 0, len(labels))
	for _, label := range labels {
		term := input[label]
		entries = append(entries, AggregateEntry{
			Label:    label,
			Operator: term.Operator,
			Name:     term.Name,
			Constant: term.Constant,
		})
	}
	return &AggregateResult{Entries: entries}, nil
}

// AggregateEntry is one validated aggregate expression.
type AggregateEntry struct {
	Label    string
	Operator string
	Name     string
	Constant *int
}

// AggregateResult is a validated aggregation specification, ordered by
// label.
type AggregateResult struct {
	Entries []AggregateEntry
}

// IsEmpty reports whether any aggregation was requested.
func (r *AggregateResult) IsEmpty() bool { return len(r.Entries) == 0 }

// Labels returns the result labels in order.
func (r *AggregateResult) Labels() []string {
	labels := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		labels[i] = e.Label
	}
	return labels
}
