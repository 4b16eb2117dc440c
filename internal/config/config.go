// Package config builds the single immutable configuration struct that is
// passed by value through every geometric function once geometric work
// begins (spec.md §5 "Shared-resource policy", §9 "Process-wide
// epsilons"). It is constructed once, via Builder, before any pass other
// than the lexer/parser runs; nothing in this package or its callers
// mutates a Config after Build returns.
package config

import (
	"fmt"

	"github.com/csgslice/csgslice/internal/geom"
)

// Policy is one of {error, warn, ignore}, applied independently to each of
// the four policy-governed GeomError subkinds (spec.md §4.3, §6).
type Policy int

const (
	PolicyError Policy = iota
	PolicyWarn
	PolicyIgnore
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "error":
		return PolicyError, nil
	case "warn":
		return PolicyWarn, nil
	case "ignore":
		return PolicyIgnore, nil
	default:
		return PolicyError, fmt.Errorf("config: unknown policy %q (want error|warn|ignore)", s)
	}
}

// MaxLazy is the hard upper bound on MaxSimultaneous (spec.md §4.6).
const MaxLazy = 10

// RangeOverride captures a user-specified override of the layer schedule;
// zero value means "let internal/schedule derive it from the bounding box".
type RangeOverride struct {
	ZMin, ZMax, ZStep float64
	HasZMin, HasZMax, HasZStep bool
}

// Config is the process-wide, immutable configuration surface of spec.md
// §6. Every geometric function below internal/csg3 takes one of these (or
// just its Epsilons) by value.
type Config struct {
	Eps geom.Epsilons

	MaxFn           int
	LayerGap        float64
	MaxSimultaneous int

	SkipEmptyPaths  bool // optimisation: skip zero-area/degenerate paths (default on)
	DropCollinear   bool // optimisation: collapse collinear edges (default on)

	EmptyAtSource      Policy // primitive has zero size/radius in source
	CollapsedByTransform Policy // transform collapses geometry (e.g. scale by 0)
	Outside2DIn3D      Policy // 2D object used directly in 3D context
	Outside3DIn2D      Policy // 3D object used directly in 2D context

	Range RangeOverride

	ColorRand bool // JS/WebGL output only; carried through for collaborators
}

// Builder assembles a Config and validates it once, mirroring the
// validate-then-construct pattern of the teacher's database connection
// manager (internal/database/db_manager.go's Connect).
type Builder struct {
	cfg Config
	err error
}

// NewBuilder starts from the spec's documented defaults: both
// optimisations on, all four policies "error", MaxSimultaneous at a
// moderate default within [2, MaxLazy].
func NewBuilder() *Builder {
	return &Builder{
		cfg: Config{
			Eps: geom.Epsilons{Pt: 1e-5, Eq: 1e-6, Sqr: 1e-9},
			MaxFn:           0, // 0 = no cap on the resolved $fn
			LayerGap:        0,
			MaxSimultaneous: 6,
			SkipEmptyPaths:  true,
			DropCollinear:   true,
			EmptyAtSource:      PolicyError,
			CollapsedByTransform: PolicyError,
			Outside2DIn3D:      PolicyError,
			Outside3DIn2D:      PolicyError,
		},
	}
}

func (b *Builder) WithEpsilons(pt, eq, sqr float64) *Builder {
	if b.err != nil {
		return b
	}
	if sqr > eq || eq > pt {
		b.err = fmt.Errorf("config: epsilons must satisfy sqr <= eq <= pt, got sqr=%v eq=%v pt=%v", sqr, eq, pt)
		return b
	}
	b.cfg.Eps = geom.Epsilons{Pt: pt, Eq: eq, Sqr: sqr}
	return b
}

func (b *Builder) WithMaxFn(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = fmt.Errorf("config: max_fn must be >= 0, got %d", n)
		return b
	}
	b.cfg.MaxFn = n
	return b
}

// WithLayerGap resolves the §9 open question on negative layer_gap: -1 is
// special-cased by the caller's output kind (STL vs SCAD/JS) before
// reaching here; any other negative value is rejected outright rather than
// silently clamped, since an unclamped negative gap would violate the
// layer-ordering invariant of §5.
func (b *Builder) WithLayerGap(gap float64) *Builder {
	if b.err != nil {
		return b
	}
	if gap < 0 {
		b.err = fmt.Errorf("config: layer_gap must be >= 0 after special-casing -1 upstream, got %v", gap)
		return b
	}
	b.cfg.LayerGap = gap
	return b
}

func (b *Builder) WithMaxSimultaneous(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 2 || n > MaxLazy {
		b.err = fmt.Errorf("config: max_simultaneous must be in [2, %d], got %d", MaxLazy, n)
		return b
	}
	b.cfg.MaxSimultaneous = n
	return b
}

func (b *Builder) WithOptimisations(skipEmpty, dropCollinear bool) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.SkipEmptyPaths = skipEmpty
	b.cfg.DropCollinear = dropCollinear
	return b
}

func (b *Builder) WithPolicies(emptyAtSource, collapsed, outside2Din3D, outside3Din2D Policy) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.EmptyAtSource = emptyAtSource
	b.cfg.CollapsedByTransform = collapsed
	b.cfg.Outside2DIn3D = outside2Din3D
	b.cfg.Outside3DIn2D = outside3Din2D
	return b
}

func (b *Builder) WithRange(r RangeOverride) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.Range = r
	return b
}

func (b *Builder) WithColorRand(on bool) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.ColorRand = on
	return b
}

// Build finalizes the Config, or returns the first validation error
// encountered by any With* call.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	return b.cfg, nil
}
