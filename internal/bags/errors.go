package bags

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownAttributeError reports one or more names that do not resolve
// against an entity: not a column, property, computed property,
// relationship, or a valid dot-path into a structured column.
type UnknownAttributeError struct {
	// Entity is the entity (or alias) the lookup ran against.
	Entity string
	// Names are the offending names, sorted.
	Names []string
}

// NewUnknownAttributeError builds the error with names sorted and
// de-duplicated.
func NewUnknownAttributeError(entityName string, names ...string) *UnknownAttributeError {
	seen := make(map[string]struct{}, len(names))
	uniq := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	sort.Strings(uniq)
	return &UnknownAttributeError{Entity: entityName, Names: uniq}
}

func (e *UnknownAttributeError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("unknown attribute %q on %s", e.Names[0], e.Entity)
	}
	return fmt.Sprintf("unknown attributes on %s: %s", e.Entity, strings.Join(e.Names, ", "))
}
