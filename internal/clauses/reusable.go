package clauses

import "relq/internal/registry"

// Settings bundles the construction-time configuration of every clause
// compiler for one entity.
type Settings struct {
	Projection ProjectionSettings
	Limit      LimitSettings
}

// Reusable is a pre-built compiler set for one entity: its static
// configuration is validated once, at construction, and the set can then
// be applied to any number of request query objects. Applications are
// fully independent; nothing leaks from one Compile to the next.
type Reusable struct {
	reg        *registry.Registry
	projection *Projection
	sort       *Sort
	group      *Group
	aggregate  *Aggregate
	limit      *Limit
}

// NewReusable validates the settings against the registry and builds the
// compiler set.
func NewReusable(reg *registry.Registry, settings Settings) (*Reusable, error) {
	projection, err := NewProjection(reg, settings.Projection)
	if err != nil {
		return nil, err
	}
	limit, err := NewLimit(settings.Limit)
	if err != nil {
		return nil, err
	}
	return &Reusable{
		reg:        reg,
		projection: projection,
		sort:       NewSort(reg),
		group:      NewGroup(reg),
		aggregate:  NewAggregate(reg),
		limit:      limit,
	}, nil
}

// Registry returns the registry the compilers validate against.
func (r *Reusable) Registry() *registry.Registry { return r.reg }

// Projection returns the projection compiler for direct use.
func (r *Reusable) Projection() *Projection { return r.projection }

// Sort returns the sort compiler for direct use.
func (r *Reusable) Sort() *Sort { return r.sort }

// Group returns the group compiler for direct use.
func (r *Reusable) Group() *Group { return r.group }

// Aggregate returns the aggregate compiler for direct use.
func (r *Reusable) Aggregate() *Aggregate { return r.aggregate }

// operationNames are the query object sections this compiler set handles.
var operationNames = map[string]struct{}{
	"project":   {},
	"sort":      {},
	"group":     {},
	"aggregate": {},
	"skip":      {},
	"limit":     {},
	"count":     {},
}

// Compile validates and compiles a whole request query object. Unknown
// section keys fail with *UnknownOperationError; each section's own
// validation failures propagate unchanged.
func (r *Reusable) Compile(query map[string]any) (*Compiled, error) {
	var unknown []string
	for key := range query {
		if _, ok := operationNames[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownOperationError{Operations: unknown}
	}

	count, err := parseBoolValue(query["count"], "count")
	if err != nil {
		return nil, err
	}

	projInput, err := parseProjectionValue(query["project"])
	if err != nil {
		return nil, err
	}
	projection, err := r.projection.Apply(projInput)
	if err != nil {
		return nil, err
	}

	sortInput, err := parseSortValue(query["sort"], "sort")
	if err != nil {
		return nil, err
	}
	sortRes, err := r.sort.Apply(sortInput)
	if err != nil {
		return nil, err
	}

	groupInput, err := parseSortValue(query["group"], "group")
	if err != nil {
		return nil, err
	}
	groupRes, err := r.group.Apply(groupInput)
	if err != nil {
		return nil, err
	}

	aggInput, err := parseAggregateValue(query["aggregate"])
	if err != nil {
		return nil, err
	}
	aggRes, err := r.aggregate.Apply(aggInput)
	if err != nil {
		return nil, err
	}

	skip, err := parseIntValue(query["skip"], "skip")
	if err != nil {
		return nil, err
	}
	limit, err := parseIntValue(query["limit"], "limit")
	if err != nil {
		return nil, err
	}
	limitRes := r.limit.Apply(LimitInput{Skip: skip, Limit: limit}, count)

	return &Compiled{
		Projection: projection,
		Sort:       sortRes,
		Group:      groupRes,
		Aggregate:  aggRes,
		Limit:      limitRes,
		Count:      count,
	}, nil
}

// Compile validates the settings and compiles a single query object in one
// shot. Callers issuing many requests against the same entity should build
// a Reusable once and share it instead.
func Compile(reg *registry.Registry, settings Settings, query map[string]any) (*Compiled, error) {
	r, err := NewReusable(reg, settings)
	if err != nil {
		return nil, err
	}
	return r.Compile(query)
}

// Compiled is a fully validated query object, ready for the query builder.
// It is immutable and needs no further schema lookups.
type Compiled struct {
	Projection *ProjectionResult
	Sort       *SortResult
	Group      *GroupResult
	Aggregate  *AggregateResult
	Limit      *LimitResult
	Count      bool
}

// ContainsEntities reports whether the result rows are entity rows, which
// is the case unless the query groups, aggregates, or counts.
func (c *Compiled) ContainsEntities() bool {
	return !c.Count && c.Group.IsEmpty() && c.Aggregate.IsEmpty()
}

// IsScalar reports whether the query yields a single scalar value.
func (c *Compiled) IsScalar() bool { return c.Count }
