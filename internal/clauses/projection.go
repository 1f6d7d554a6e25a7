package clauses

import (
	"sort"
	"sync"

	"relq/internal/bags"
	"relq/internal/registry"
)

// ProjectionMode says what happens to attributes a projection does not
// mention.
type ProjectionMode int

const (
	// ModeInclude: unmentioned attributes are excluded.
	ModeInclude ProjectionMode = iota
	// ModeExclude: unmentioned attributes are included.
	ModeExclude
	// ModeMixed: nothing is left implicit; every attribute is mentioned.
	ModeMixed
)

func (m ProjectionMode) String() string {
	switch m {
	case ModeInclude:
		return "include"
	case ModeExclude:
		return "exclude"
	default:
		return "mixed"
	}
}

// ProjectionSettings are the construction-time defaults and administrator
// overrides of a projection compiler. All names are validated against the
// registry when the compiler is built, not when it is applied.
type ProjectionSettings struct {
	// DefaultProjection seeds the projection when a request carries none.
	// It must be uniform: all values 1, or all values 0.
	DefaultProjection map[string]int
	// DefaultExclude is merged into exclude-mode projections.
	DefaultExclude []string
	// ForceInclude names attributes every result must include.
	ForceInclude []string
	// ForceExclude names attributes no result may include.
	ForceExclude []string
}

// ProjectionInput is the per-request value. Exactly one of Names and Flags
// may be set; both nil means the request carried no projection.
type ProjectionInput struct {
	Names []string
	Flags map[string]int
}

// Projection compiles projection inputs against one entity registry.
// Instances are immutable after construction and safe to share across
// concurrent Apply calls.
type Projection struct {
	reg *registry.Registry
	bag *bags.CombinedBag

	defaultProjection map[string]int
	defaultMode       ProjectionMode
	defaultExclude    []string
	forceInclude      []string
	forceExclude      []string
}

// NewProjection validates the settings against the registry and builds a
// projection compiler. Unknown names fail with *bags.UnknownAttributeError;
// contradictory settings fail with *InconsistentSpecError.
func NewProjection(reg *registry.Registry, settings ProjectionSettings) (*Projection, error) {
	bag := reg.Projectable()

	var configured []string
	for name := range settings.DefaultProjection {
		configured = append(configured, name)
	}
	configured = append(configured, settings.DefaultExclude...)
	configured = append(configured, settings.ForceInclude...)
	configured = append(configured, settings.ForceExclude...)
	if invalid := bag.InvalidNames(configured); len(invalid) > 0 {
		return nil, bags.NewUnknownAttributeError(reg.Entity().Name(), invalid...)
	}

	p := &Projection{
		reg:            reg,
		bag:            bag,
		defaultExclude: append([]string(nil), settings.DefaultExclude...),
		forceInclude:   append([]string(nil), settings.ForceInclude...),
		forceExclude:   append([]string(nil), settings.ForceExclude...),
	}

	if settings.DefaultProjection != nil {
		mode, err := uniformMode(settings.DefaultProjection)
		if err != nil {
			return nil, err
		}
		p.defaultMode = mode
		p.defaultProjection = make(map[string]int, len(settings.DefaultProjection))
		for name, v := range settings.DefaultProjection {
			p.defaultProjection[name] = v
		}
	}

	forced := make(map[string]struct{}, len(p.forceInclude))
	for _, name := range p.forceInclude {
		forced[name] = struct{}{}
	}
	for _, name := range p.forceExclude {
		if _, ok := forced[name]; ok {
			return nil, &InconsistentSpecError{
				Reason: "attribute " + name + " is both force-included and force-excluded",
			}
		}
	}

	return p, nil
}

// uniformMode classifies a non-empty directive mapping that must be all 1
// or all 0.
func uniformMode(projection map[string]int) (ProjectionMode, error) {
	ones, zeros := countDirectives(projection)
	switch {
	case ones > 0 && zeros > 0:
		return 0, &InconsistentSpecError{
			Reason: "default projection mixes include and exclude directives",
		}
	case zeros > 0:
		return ModeExclude, nil
	default:
		return ModeInclude, nil
	}
}

func countDirectives(projection map[string]int) (ones, zeros int) {
	for _, v := range projection {
		if v == 0 {
			zeros++
		} else {
			ones++
		}
	}
	return ones, zeros
}

// Apply compiles one request input into an explicit projection. The call
// never mutates the compiler; every application is independent.
func (p *Projection) Apply(input ProjectionInput) (*ProjectionResult, error) {
	if input.Names != nil && input.Flags != nil {
		return nil, &InvalidInputError{Reason: "projection cannot be both a list and a mapping"}
	}

	mode, projection, err := p.seed(input)
	if err != nil {
		return nil, err
	}

	// Declarative defaults apply only when unmentioned attributes default
	// to included.
	if mode == ModeExclude {
		for _, name := range p.defaultExclude {
			if _, ok := projection[name]; !ok {
				projection[name] = 0
			}
		}
	}

	mode, projection = resolveForced(mode, projection, p.forceInclude, p.forceExclude, p.bag.Names())

	return &ProjectionResult{
		Mode:       mode,
		Projection: projection,
		bag:        p.bag,
	}, nil
}

// seed derives the initial (mode, projection) pair from the request input,
// or from the configured default when the request carries none.
func (p *Projection) seed(input ProjectionInput) (ProjectionMode, map[string]int, error) {
	switch {
	case input.Names != nil:
		if invalid := p.bag.InvalidNames(input.Names); len(invalid) > 0 {
			return 0, nil, bags.NewUnknownAttributeError(p.reg.Entity().Name(), invalid...)
		}
		projection := make(map[string]int, len(input.Names))
		for _, name := range input.Names {
			projection[name] = 1
		}
		return ModeInclude, projection, nil

	case len(input.Flags) > 0:
		keys := make([]string, 0, len(input.Flags))
		for name := range input.Flags {
			keys = append(keys, name)
		}
		if invalid := p.bag.InvalidNames(keys); len(invalid) > 0 {
			return 0, nil, bags.NewUnknownAttributeError(p.reg.Entity().Name(), invalid...)
		}

		projection := make(map[string]int, len(input.Flags))
		for name, v := range input.Flags {
			if v != 0 {
				v = 1
			}
			projection[name] = v
		}

		ones, zeros := countDirectives(projection)
		switch {
		case ones > 0 && zeros > 0:
			// A mixed mapping is only unambiguous when it decides every
			// attribute explicitly.
			if missing := missingNames(p.bag.Names(), projection); len(missing) > 0 {
				return 0, nil, &AmbiguousProjectionError{Missing: missing}
			}
			return ModeMixed, projection, nil
		case zeros > 0:
			return ModeExclude, projection, nil
		default:
			return ModeInclude, projection, nil
		}

	default:
		if p.defaultProjection != nil {
			projection := make(map[string]int, len(p.defaultProjection))
			for name, v := range p.defaultProjection {
				projection[name] = v
			}
			return p.defaultMode, projection, nil
		}
		// Nothing decided yet: everything defaults to included.
		return ModeExclude, map[string]int{}, nil
	}
}

func missingNames(all []string, projection map[string]int) []string {
	var missing []string
	for _, name := range all {
		if _, ok := projection[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// resolveForced applies the forced overrides to a seeded projection and
// returns the final mode and mapping. It is a pure function of its inputs:
// promotion from a pure mode to MIXED happens here, in one place, and a
// promoted projection is always made fully explicit.
func resolveForced(mode ProjectionMode, projection map[string]int, forceInclude, forceExclude, allNames []string) (ProjectionMode, map[string]int) {
	for _, name := range forceExclude {
		if mode == ModeInclude {
			// An include-mode projection that omits a name excludes it.
			delete(projection, name)
		} else {
			projection[name] = 0
		}
	}
	for _, name := range forceInclude {
		projection[name] = 1
	}

	if mode != ModeMixed {
		ones, zeros := countDirectives(projection)
		uniform := (mode == ModeInclude && zeros == 0) || (mode == ModeExclude && ones == 0)
		if !uniform {
			projection = fullProjection(mode, projection, allNames)
			mode = ModeMixed
		}
	}
	return mode, projection
}

// fullProjection expands a possibly compact projection to a directive per
// attribute name, filling unmentioned names with the mode's implicit
// default.
func fullProjection(mode ProjectionMode, projection map[string]int, allNames []string) map[string]int {
	implicit := 0
	if mode == ModeExclude {
		implicit = 1
	}
	full := make(map[string]int, len(allNames)+len(projection))
	for _, name := range allNames {
		full[name] = implicit
	}
	// Mentioned names win, dotted structured paths included.
	for name, v := range projection {
		full[name] = v
	}
	return full
}

// ProjectionResult is one compiled projection: explicit enough that no
// further schema lookup is needed to execute it. It is immutable; the full
// projection is computed lazily and memoized.
type ProjectionResult struct {
	Mode ProjectionMode
	// Projection is the possibly compact mapping produced by resolution.
	Projection map[string]int

	bag *bags.CombinedBag

	fullOnce sync.Once
	full     map[string]int
}

// FullProjection returns a complete directive per attribute name.
func (r *ProjectionResult) FullProjection() map[string]int {
	r.fullOnce.Do(func() {
		if r.Mode == ModeMixed {
			// Mixed projections are fully explicit by invariant.
			r.full = r.Projection
			return
		}
		r.full = fullProjection(r.Mode, r.Projection, r.bag.Names())
	})
	return r.full
}

// Contains reports whether the named attribute is included.
func (r *ProjectionResult) Contains(name string) bool {
	return r.FullProjection()[name] == 1
}

// CompiledColumns returns handles for the included attributes that are
// stored columns (structured paths included; properties and computed
// properties are not). This is the list the query builder selects.
func (r *ProjectionResult) CompiledColumns() []bags.Ref {
	full := r.FullProjection()
	names := make([]string, 0, len(full))
	for name, v := range full {
		if v == 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var refs []bags.Ref
	for _, name := range names {
		role, _, ref, err := r.bag.Get(name)
		if err != nil || role != "col" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
