// Package clauses compiles declarative query-clause inputs (projection,
// sort, grouping, limits) into validated, fully explicit internal forms.
// Compilers are configured once, validated at construction, and applied to
// request inputs any number of times without accumulating state.
package clauses

import (
	"fmt"
	"sort"
	"strings"
)

// InconsistentSpecError reports a construction-time configuration that is
// internally contradictory, e.g. a default projection mixing include and
// exclude directives, or an attribute both force-included and
// force-excluded.
type InconsistentSpecError struct {
	Reason string
}

func (e *InconsistentSpecError) Error() string {
	return "inconsistent compiler configuration: " + e.Reason
}

// AmbiguousProjectionError reports a request-time mixed include/exclude
// projection that leaves some attributes unmentioned.
type AmbiguousProjectionError struct {
	Missing []string
}

func (e *AmbiguousProjectionError) Error() string {
	if len(e.Missing) == 0 {
		return "a mixed projection must mention every attribute"
	}
	sorted := append([]string(nil), e.Missing...)
	sort.Strings(sorted)
	return fmt.Sprintf("a mixed projection must mention every attribute; missing: %s",
		strings.Join(sorted, ", "))
}

// AmbiguousQueryError reports a request-time input whose ordering cannot be
// determined, e.g. a sort mapping with more than one key.
type AmbiguousQueryError struct {
	Reason string
}

func (e *AmbiguousQueryError) Error() string {
	return "ambiguous query input: " + e.Reason
}

// UnknownOperationError reports unknown section keys in a query object.
type UnknownOperationError struct {
	Operations []string
}

func (e *UnknownOperationError) Error() string {
	sorted := append([]string(nil), e.Operations...)
	sort.Strings(sorted)
	return "unknown query operations: " + strings.Join(sorted, ", ")
}

// InvalidInputError reports a request value of the wrong shape, e.g. a
// non-integer limit or a projection that is neither a list nor a mapping.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid query input: " + e.Reason
}
