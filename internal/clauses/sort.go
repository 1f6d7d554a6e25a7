package clauses

import (
	"strings"

	"relq/internal/bags"
	"relq/internal/registry"
)

// SortEntry is one ordered sort key with its direction (+1 or -1).
type SortEntry struct {
	Name      string
	Direction int
}

// SortInput is the per-request sort value. Names is an ordered list of
// attribute names, each optionally suffixed "+" or "-" ("+" is the
// default). Flags is the one-entry mapping shorthand; both nil means no
// sorting was requested.
type SortInput struct {
	Names []string
	Flags map[string]int
}

// Sort compiles sort inputs against one entity registry. Sort keys must
// resolve against columns or computed properties; simple properties carry
// no order and are rejected.
type Sort struct {
	reg *registry.Registry
	bag *bags.CombinedBag
}

// NewSort builds a sort compiler for the registry.
func NewSort(reg *registry.Registry) *Sort {
	return &Sort{reg: reg, bag: reg.Sortable()}
}

// Apply compiles one request input into an ordered sort specification.
func (s *Sort) Apply(input SortInput) (*SortResult, error) {
	entries, err := s.compile(input, "sort")
	if err != nil {
		return nil, err
	}
	return &SortResult{Entries: entries}, nil
}

func (s *Sort) compile(input SortInput, operation string) ([]SortEntry, error) {
	if input.Names != nil && input.Flags != nil {
		return nil, &InvalidInputError{Reason: operation + " cannot be both a list and a mapping"}
	}

	names := input.Names
	if input.Flags != nil {
		// A one-entry mapping is accepted as shorthand. Anything larger
		// has no trustworthy ordering.
		if len(input.Flags) > 1 {
			return nil, &AmbiguousQueryError{
				Reason: operation + " mapping has more than one key; use the ordered list form for multi-key " + operation,
			}
		}
		for name, dir := range input.Flags {
			switch dir {
			case +1:
				names = []string{name + "+"}
			case -1:
				names = []string{name + "-"}
			default:
				return nil, &InvalidInputError{
					Reason: operation + " direction must be +1 or -1",
				}
			}
		}
	}

	// First occurrence fixes the position; a later duplicate overwrites
	// the direction in place.
	var order []string
	directions := make(map[string]int, len(names))
	var plain []string
	for _, raw := range names {
		name, direction := splitDirection(raw)
		if _, ok := directions[name]; !ok {
			order = append(order, name)
		}
		directions[name] = direction
		plain = append(plain, name)
	}

	if invalid := s.bag.InvalidNames(plain); len(invalid) > 0 {
		return nil, bags.NewUnknownAttributeError(s.reg.Entity().Name(), invalid...)
	}

	entries := make([]SortEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, SortEntry{Name: name, Direction: directions[name]})
	}
	return entries, nil
}

// splitDirection strips a trailing "+" or "-" and returns the signed
// direction, defaulting to ascending.
func splitDirection(raw string) (string, int) {
	switch {
	case strings.HasSuffix(raw, "-"):
		return raw[:len(raw)-1], -1
	case strings.HasSuffix(raw, "+"):
		return raw[:len(raw)-1], +1
	default:
		return raw, +1
	}
}

// SortResult is an ordered, validated sort specification.
type SortResult struct {
	Entries []SortEntry
}

// IsEmpty reports whether any sorting was requested.
func (r *SortResult) IsEmpty() bool { return len(r.Entries) == 0 }

// Names returns the sort key names in order.
func (r *SortResult) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}
