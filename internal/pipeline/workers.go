package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/csgslice/csgslice/internal/boolean"
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/schedule"
	"github.com/csgslice/csgslice/internal/slice"
)

// runLayers is the per-layer data-parallel region of spec.md §4.4/§5: a
// fixed-size output slice is allocated up front, an atomic dispenser hands
// layer indices out to a worker pool, and each worker writes only to its
// own slot -- no locking needed, and no slot is ever touched by two
// goroutines. errgroup.Group supplies the "first error latches the whole
// run, the rest cooperatively stop claiming new layers" behavior: once one
// worker's slice/evaluate call returns an error, the dispenser keeps
// handing out indices but every worker bails at its next Next() call
// because the group's context has already been canceled.
func runLayers(nodes []csg3.Node, rng schedule.Range, opts Options) ([]Layer, error) {
	root := rootOf(nodes)
	out := make([]Layer, rng.Count)

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkerCount()
	}
	if workers > rng.Count {
		workers = rng.Count
	}
	if workers < 1 {
		workers = 1
	}

	disp := schedule.NewDispenser(rng.Count)
	g, ctx := errgroup.WithContext(context.Background())

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				idx, ok := disp.Next()
				if !ok {
					return nil
				}
				z := rng.Z(idx)
				layer, err := evaluateOneLayer(root, z, opts)
				if err != nil {
					return err
				}
				layer.Index = idx
				layer.Z = z
				out[idx] = layer
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// evaluateOneLayer slices every CSG3 leaf at z, walks the resulting CSG2
// operand tree through the Boolean evaluator, and returns the flat layer.
func evaluateOneLayer(root csg3.Node, z float64, opts Options) (Layer, error) {
	op, serr := slice.Layer(root, z, opts.Config.Eps, csg2.RoleAdditive)
	if serr != nil {
		return Layer{}, serr
	}
	ps, eerr := boolean.Evaluate(op, opts.Config)
	if eerr != nil {
		return Layer{}, eerr
	}
	return Layer{Polygons: ps}, nil
}

// rootOf wraps multiple top-level siblings in an implicit union, the same
// rule csg3.Build itself applies to multiple children of one SCAD scope.
func rootOf(nodes []csg3.Node) csg3.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &csg3.Union{Children: nodes}
}

func defaultWorkerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
