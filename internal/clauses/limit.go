package clauses

// LimitSettings configures the limit compiler.
type LimitSettings struct {
	// MaxItems caps the per-request limit. Zero means uncapped. When set,
	// it is forced onto every request, including requests with no limit.
	MaxItems int
}

// LimitInput is the per-request skip/limit pair. Nil pointers mean the
// request did not set the value.
type LimitInput struct {
	Skip  *int
	Limit *int
}

// Limit compiles skip/limit inputs, normalizing non-positive values to
// unset and clamping to the configured maximum.
type Limit struct {
	maxItems int
}

// NewLimit builds a limit compiler. A negative MaxItems is a configuration
// contradiction.
func NewLimit(settings LimitSettings) (*Limit, error) {
	if settings.MaxItems < 0 {
		return nil, &InconsistentSpecError{Reason: "max items must not be negative"}
	}
	return &Limit{maxItems: settings.MaxItems}, nil
}

// Apply compiles one skip/limit request. When the query counts rows
// instead of returning them, the caller passes counting=true and the
// MaxItems clamp is suspended: a count inspects the whole result set.
func (l *Limit) Apply(input LimitInput, counting bool) *LimitResult {
	res := &LimitResult{}

	if input.Skip != nil && *input.Skip > 0 {
		skip := *input.Skip
		res.Skip = &skip
	}
	if input.Limit != nil && *input.Limit > 0 {
		limit := *input.Limit
		res.Limit = &limit
	}

	if l.maxItems > 0 && !counting {
		if res.Limit == nil || *res.Limit > l.maxItems {
			capped := l.maxItems
			res.Limit = &capped
		}
	}
	return res
}

// LimitResult is a normalized skip/limit pair; nil means unset.
type LimitResult struct {
	Skip  *int
	Limit *int
}

// IsEmpty reports whether neither skip nor limit applies.
func (r *LimitResult) IsEmpty() bool { return r.Skip == nil && r.Limit == nil }
