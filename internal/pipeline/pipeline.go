// Package pipeline drives the per-file state machine of spec.md §4's
// "State machines" section -- {PARSED, SCADDED, CSG3_BUILT, SLICED,
// EVALUATED, TRIANGULATED, DIFFED, EMITTED} -- wiring together every pass
// from the lexer through the optional triangulation and layer-difference
// stages.
package pipeline

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/csgslice/csgslice/internal/boolean"
	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/diag"
	"github.com/csgslice/csgslice/internal/layerdiff"
	"github.com/csgslice/csgslice/internal/scad"
	"github.com/csgslice/csgslice/internal/schedule"
	"github.com/csgslice/csgslice/internal/syn"
	"github.com/csgslice/csgslice/internal/synlex"
	"github.com/csgslice/csgslice/internal/triangulate"
)

// Stage is one state of the per-file pipeline state machine.
type Stage int

const (
	StageParsed Stage = iota
	StageScadded
	StageCSG3Built
	StageSliced
	StageEvaluated
	StageTriangulated
	StageDiffed
	StageEmitted
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "PARSED"
	case StageScadded:
		return "SCADDED"
	case StageCSG3Built:
		return "CSG3_BUILT"
	case StageSliced:
		return "SLICED"
	case StageEvaluated:
		return "EVALUATED"
	case StageTriangulated:
		return "TRIANGULATED"
	case StageDiffed:
		return "DIFFED"
	case StageEmitted:
		return "EMITTED"
	default:
		return "UNKNOWN"
	}
}

// Options configures one pipeline run: the configuration surface of
// spec.md §6 plus the early-exit "dump after stage X" request and the
// worker count for the per-layer data-parallel region.
type Options struct {
	Config      config.Config
	StopAt      Stage // pipeline skips remaining transitions once this stage is reached
	Workers     int   // 0 => runtime.NumCPU()
	Triangulate bool
	LayerDiff   bool
}

// Layer is one layer's final output: the evaluated flat polygons, its
// triangulation (if requested), and its z height.
type Layer struct {
	Index    int
	Z        float64
	Polygons csg2.PolygonSet
	Tris     []triangulate.Triangle
}

// Result is a completed (or early-exited) pipeline run.
type Result struct {
	RunID    string
	Stage    Stage
	Syn      []*syn.Call
	Scad     []scad.Node
	CSG3     []csg3.Node
	Range    schedule.Range
	Layers   []Layer
	Warnings []*diag.Diagnostic // non-fatal config.PolicyWarn diagnostics (spec.md §4.3/§7)
}

// Run drives one source file through every stage up to (and including)
// opts.StopAt, or to completion if StopAt is the zero value's natural
// maximum (StageEmitted).
func Run(file, source string, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	sc := synlex.NewScanner(source)
	toks, lexErr := sc.ScanTokens()
	if lexErr != nil {
		r := diag.NewResolver(file, sc.Preserved())
		return res, renderLexError(r, lexErr)
	}

	body, parseErr := syn.NewParser(toks).Parse()
	if parseErr != nil {
		r := diag.NewResolver(file, sc.Preserved())
		return res, renderParseError(r, parseErr)
	}
	res.Syn = body
	res.Stage = StageParsed
	if opts.StopAt == StageParsed {
		return res, nil
	}

	scadNodes, scadErr := scad.Lower(body, scad.Options{MaxFn: opts.Config.MaxFn})
	if scadErr != nil {
		r := diag.NewResolver(file, sc.Preserved())
		return res, renderScadError(r, scadErr)
	}
	res.Scad = scadNodes
	res.Stage = StageScadded
	if opts.StopAt == StageScadded {
		return res, nil
	}

	csg3Nodes, csg3Warnings, csg3Err := csg3.Build(scadNodes, opts.Config)
	if csg3Err != nil {
		r := diag.NewResolver(file, sc.Preserved())
		return res, renderCSG3Error(r, csg3Err)
	}
	if len(csg3Warnings) > 0 {
		r := diag.NewResolver(file, sc.Preserved())
		for _, w := range csg3Warnings {
			res.Warnings = append(res.Warnings, renderCSG3Warning(r, w))
		}
	}
	res.CSG3 = csg3Nodes
	res.Stage = StageCSG3Built
	if opts.StopAt == StageCSG3Built {
		return res, nil
	}

	bbox := schedule.BoundingBox(csg3Nodes, true)
	rng := schedule.Compute(bbox, opts.Config)
	res.Range = rng

	layers, err := runLayers(csg3Nodes, rng, opts)
	if err != nil {
		return res, err
	}
	res.Layers = layers
	res.Stage = StageEvaluated
	if opts.StopAt <= StageEvaluated {
		return res, nil
	}

	if opts.Triangulate {
		for i := range res.Layers {
			tris, terr := triangulate.Layer(res.Layers[i].Polygons, opts.Config.Eps)
			if terr != nil {
				return res, errors.Wrap(terr, "triangulation failed")
			}
			res.Layers[i].Tris = tris
		}
		res.Stage = StageTriangulated
	}
	if opts.StopAt <= StageTriangulated {
		return res, nil
	}

	if opts.LayerDiff {
		polys := make([]csg2.PolygonSet, len(res.Layers))
		for i, l := range res.Layers {
			polys[i] = l.Polygons
		}
		if err := layerdiff.Apply(polys, opts.Config, boolean.SymmetricDifference); err != nil {
			return res, errors.Wrap(err, "layer-difference pass failed")
		}
		for i := range res.Layers {
			res.Layers[i].Polygons = polys[i]
		}
		res.Stage = StageDiffed
	}
	if opts.StopAt <= StageDiffed {
		return res, nil
	}

	res.Stage = StageEmitted
	return res, nil
}

func renderLexError(r *diag.Resolver, err *synlex.Error) error {
	d := diag.NewFromResolved(diag.LexError, err.Msg, r, err.Loc)
	return d
}

func renderParseError(r *diag.Resolver, err *syn.Error) error {
	d := diag.NewFromResolved(diag.ParseError, err.Msg, r, err.Loc)
	return d
}

func renderScadError(r *diag.Resolver, err *scad.Error) error {
	d := diag.NewFromResolved(diag.SCADError, err.Msg, r, err.Loc)
	return d
}

func renderCSG3Error(r *diag.Resolver, err *csg3.Error) error {
	d := diag.NewFromResolved(diag.GeomError, err.Msg, r, err.Loc)
	return d.WithGeomSubkind(err.Subkind)
}

// renderCSG3Warning mirrors renderCSG3Error for a config.PolicyWarn
// decision: same GeomError kind and subkind, but collected on
// Result.Warnings instead of aborting the run.
func renderCSG3Warning(r *diag.Resolver, warn *csg3.Error) *diag.Diagnostic {
	d := diag.NewFromResolved(diag.GeomError, warn.Msg, r, warn.Loc)
	return d.WithGeomSubkind(warn.Subkind)
}
