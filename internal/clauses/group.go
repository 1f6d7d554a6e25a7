package clauses

import "relq/internal/registry"

// Group compiles grouping inputs. It shares the sort compiler's parsing
// and validation but produces an ordered set of grouping keys.
type Group struct {
	sort *Sort
}

// NewGroup builds a group compiler for the registry.
func NewGroup(reg *registry.Registry) *Group {
	return &Group{sort: NewSort(reg)}
}

// Apply compiles one request input into an ordered grouping specification.
func (g *Group) Apply(input SortInput) (*GroupResult, error) {
	entries, err := g.sort.compile(input, "group")
	if err != nil {
		return nil, err
	}
	return &GroupResult{Entries: entries}, nil
}

// GroupResult is an ordered, validated grouping specification. Directions
// are carried for dialects that honor ordered grouping.
type GroupResult struct {
	Entries []SortEntry
}

// IsEmpty reports whether any grouping was requested.
func (r *GroupResult) IsEmpty() bool { return len(r.Entries) == 0 }

// Names returns the grouping key names in order.
func (r *GroupResult) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}
