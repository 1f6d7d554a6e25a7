package bags

import "sort"

// Member is a role-named bag inside a CombinedBag.
type Member struct {
	Role string
	Bag  Bag
}

// CombinedBag merges several bags into one addressable namespace and
// remembers which member produced a match, so callers can dispatch on
// attribute kind. Lookup tries members in construction order; the first
// success wins, which lets callers control precedence between roles.
type CombinedBag struct {
	entityName string
	members    []Member
	names      map[string]struct{}
	// structuredHeads are column names (plain or full dotted related
	// names) known to be structured in any member, used for the dotted
	// second-chance rule.
	structuredHeads map[string]struct{}
}

// structuredNamer is implemented by member bags that can enumerate their
// structured columns.
type structuredNamer interface {
	StructuredNames() []string
}

// NewCombinedBag merges the member bags. Member order is lookup precedence.
// The entity name is used in error messages only.
func NewCombinedBag(entityName string, members ...Member) *CombinedBag {
	cb := &CombinedBag{
		entityName:      entityName,
		members:         members,
		names:           make(map[string]struct{}),
		structuredHeads: make(map[string]struct{}),
	}
	for _, m := range members {
		for _, name := range m.Bag.Names() {
			cb.names[name] = struct{}{}
		}
		if sn, ok := m.Bag.(structuredNamer); ok {
			for _, name := range sn.StructuredNames() {
				cb.structuredHeads[name] = struct{}{}
			}
		}
	}
	return cb
}

// Contains reports whether any member resolves the name, directly or as a
// dot-path into a structured column.
func (cb *CombinedBag) Contains(name string) bool {
	if _, ok := cb.names[name]; ok {
		return true
	}
	if _, ok := cb.structuredHeads[headName(name)]; ok {
		return true
	}
	// Fall back to the members' own dotted rules.
	for _, m := range cb.members {
		if m.Bag.Contains(name) {
			return true
		}
	}
	return false
}

// Get resolves a name and reports the role of the member that matched.
func (cb *CombinedBag) Get(name string) (string, Bag, Ref, error) {
	for _, m := range cb.members {
		ref, err := m.Bag.Get(name)
		if err == nil {
			return m.Role, m.Bag, ref, nil
		}
	}
	return "", nil, Ref{}, NewUnknownAttributeError(cb.entityName, name)
}

// Ref resolves a name without provenance.
func (cb *CombinedBag) Ref(name string) (Ref, error) {
	_, _, ref, err := cb.Get(name)
	return ref, err
}

// Names returns the sorted union of the member name sets.
func (cb *CombinedBag) Names() []string {
	return sortedNames(cb.names)
}

// Iterate chains the members' handles in member order.
func (cb *CombinedBag) Iterate() []Ref {
	var refs []Ref
	for _, m := range cb.members {
		refs = append(refs, m.Bag.Iterate()...)
	}
	return refs
}

// InvalidNames validates against the union name set, re-admitting dotted
// names whose head is a structured column in any member.
func (cb *CombinedBag) InvalidNames(requested []string) []string {
	var invalid []string
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := cb.names[name]; ok {
			continue
		}
		if _, ok := cb.structuredHeads[headName(name)]; ok {
			continue
		}
		invalid = append(invalid, name)
	}
	sort.Strings(invalid)
	return invalid
}

// WithAlias returns a combined bag over alias-rebound members.
func (cb *CombinedBag) WithAlias(alias string) *CombinedBag {
	members := make([]Member, len(cb.members))
	for i, m := range cb.members {
		members[i] = Member{Role: m.Role, Bag: m.Bag.WithAlias(alias)}
	}
	return &CombinedBag{
		entityName:      cb.entityName,
		members:         members,
		names:           cb.names,
		structuredHeads: cb.structuredHeads,
	}
}
