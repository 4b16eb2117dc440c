package boolean

import (
	"math"
	"testing"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/geom"
)

func square(x0, y0, x1, y1 float64) csg2.PolygonSet {
	verts := []csg2.Vertex{
		{Pos: geom.Vec2{X: x0, Y: y0}},
		{Pos: geom.Vec2{X: x1, Y: y0}},
		{Pos: geom.Vec2{X: x1, Y: y1}},
		{Pos: geom.Vec2{X: x0, Y: y1}},
	}
	return csg2.PolygonSet{Verts: verts, Paths: [][]int{{0, 1, 2, 3}}}
}

func leaf(ps csg2.PolygonSet, role csg2.Role) *csg2.Leaf {
	return &csg2.Leaf{Polys: ps, Role: role}
}

func testCfg(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.NewBuilder().Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	return cfg
}

func area(ps csg2.PolygonSet) float64 {
	var total float64
	for _, path := range ps.Paths {
		n := len(path)
		var sum float64
		for i := 0; i < n; i++ {
			a := ps.Verts[path[i]].Pos
			b := ps.Verts[path[(i+1)%n]].Pos
			sum += a.X*b.Y - b.X*a.Y
		}
		total += math.Abs(sum) / 2
	}
	return total
}

func TestUnionOfIdenticalSquaresIsIdempotent(t *testing.T) {
	cfg := testCfg(t)
	a := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	b := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	result, err := Evaluate(&csg2.Union{Children: []csg2.Node{a, b}}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := area(result)
	if math.Abs(got-100) > 1e-3 {
		t.Errorf("expected union area ~100, got %v", got)
	}
}

func TestDifferenceAreaIsSubset(t *testing.T) {
	cfg := testCfg(t)
	a := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	b := leaf(square(5, 0, 15, 10), csg2.RoleSubtractive)
	result, err := Evaluate(&csg2.Difference{Children: []csg2.Node{a, b}}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := area(result)
	if math.Abs(got-50) > 1e-3 {
		t.Errorf("expected difference area ~50, got %v", got)
	}
}

func TestIntersectionCommutes(t *testing.T) {
	cfg := testCfg(t)
	a := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	b := leaf(square(5, 5, 15, 15), csg2.RoleAdditive)
	r1, err := Evaluate(&csg2.Intersection{Children: []csg2.Node{a, b}}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := Evaluate(&csg2.Intersection{Children: []csg2.Node{b, a}}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(area(r1)-area(r2)) > 1e-3 {
		t.Errorf("expected commuting intersection areas, got %v and %v", area(r1), area(r2))
	}
	if math.Abs(area(r1)-25) > 1e-3 {
		t.Errorf("expected intersection area ~25, got %v", area(r1))
	}
}

// TestDropCollinearToggle unions two squares stacked edge-to-edge, which
// introduces a collinear vertex on each side of the merged boundary where
// the touching edges split. With the optimisation on (spec.md §4.6
// default) those vertices are collapsed away; with it off they survive.
func TestDropCollinearToggle(t *testing.T) {
	a := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	b := leaf(square(0, 10, 10, 20), csg2.RoleAdditive)

	on, err := config.NewBuilder().WithOptimisations(true, true).Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	withDrop, evalErr := Evaluate(&csg2.Union{Children: []csg2.Node{a, b}}, on)
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if len(withDrop.Paths) != 1 || len(withDrop.Paths[0]) != 4 {
		t.Fatalf("expected collinear vertices dropped down to a 4-point rectangle, got %#v", withDrop.Paths)
	}

	off, err := config.NewBuilder().WithOptimisations(true, false).Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	withoutDrop, evalErr := Evaluate(&csg2.Union{Children: []csg2.Node{a, b}}, off)
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if len(withoutDrop.Paths) != 1 || len(withoutDrop.Paths[0]) <= 4 {
		t.Errorf("expected the collinear vertices to survive with DropCollinear off, got %#v", withoutDrop.Paths)
	}
}

// TestDropZeroAreaPrunesDegenerateLoop exercises dropZeroArea directly: a
// loop that doubles back on itself (out along a segment, straight back)
// enclosed zero area regardless of its perimeter, so it is the degenerate
// case the function exists to prune.
func TestDropZeroAreaPrunesDegenerateLoop(t *testing.T) {
	degenerate := loop{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0},
	}
	real := loop{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	eps := geom.Epsilons{Pt: 1e-5, Eq: 1e-6, Sqr: 1e-9}

	out := dropZeroArea([]loop{degenerate, real}, eps)
	if len(out) != 1 {
		t.Fatalf("expected only the real loop to survive, got %d loops: %#v", len(out), out)
	}
	if math.Abs(signedArea(out[0])-100) > 1e-6 {
		t.Errorf("expected the surviving loop's area to be 100, got %v", signedArea(out[0]))
	}
}

// TestSkipEmptyPathsToggle intersects a big square against a tiny one
// nested entirely inside it (away from every edge, so the arrangement
// never has to reason about touching boundaries): the intersection is
// exactly the tiny square, with a real, correctly-stitched area of 4e-10,
// below the default eps.Sqr of 1e-9. With SkipEmptyPaths on that sliver is
// pruned; with it off it survives as a path.
func TestSkipEmptyPathsToggle(t *testing.T) {
	const s = 2e-5 // area s*s = 4e-10, below the default eps.Sqr (1e-9)
	a := leaf(square(0, 0, 10, 10), csg2.RoleAdditive)
	b := leaf(square(5, 5, 5+s, 5+s), csg2.RoleAdditive)

	on, err := config.NewBuilder().WithOptimisations(true, true).Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	withSkip, evalErr := Evaluate(&csg2.Intersection{Children: []csg2.Node{a, b}}, on)
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if len(withSkip.Paths) != 0 {
		t.Errorf("expected the sub-eps.Sqr sliver to be dropped with SkipEmptyPaths on, got %#v", withSkip.Paths)
	}

	off, err := config.NewBuilder().WithOptimisations(false, true).Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	withoutSkip, evalErr := Evaluate(&csg2.Intersection{Children: []csg2.Node{a, b}}, off)
	if evalErr != nil {
		t.Fatalf("unexpected error: %v", evalErr)
	}
	if len(withoutSkip.Paths) != 1 {
		t.Fatalf("expected the tiny square to survive as a path with SkipEmptyPaths off, got %#v", withoutSkip.Paths)
	}
	if math.Abs(area(withoutSkip)-s*s) > 1e-12 {
		t.Errorf("expected the surviving path's area to be %v, got %v", s*s, area(withoutSkip))
	}
}
