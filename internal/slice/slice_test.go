package slice

import (
	"math"
	"testing"

	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/geom"
)

var testEps = geom.Epsilons{Pt: 1e-5, Eq: 1e-6, Sqr: 1e-9}

func TestSphereSliceAtEquator(t *testing.T) {
	s := &csg3.Sphere{Radius: 10, Fn: 8, Transform: geom.Identity()}
	pts, err := Sphere(s, 0, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 8 {
		t.Fatalf("expected 8 points, got %d", len(pts))
	}
	for _, p := range pts {
		r := math.Hypot(p.X, p.Y)
		if math.Abs(r-10) > 1e-6 {
			t.Errorf("expected radius 10, got %v", r)
		}
	}
}

func TestSphereSliceAtPoleIsEmpty(t *testing.T) {
	s := &csg3.Sphere{Radius: 10, Fn: 8, Transform: geom.Identity()}
	pts, err := Sphere(s, 10, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 0 {
		t.Errorf("expected empty slice at the pole, got %d points", len(pts))
	}
}

func TestCylinderSliceInterpolatesRadius(t *testing.T) {
	c := &csg3.Cylinder{H: 10, R1: 2, R2: 4, Fn: 8, Transform: geom.Identity()}
	pts, err := Cylinder(c, 5, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := math.Hypot(pts[0].X, pts[0].Y)
	if math.Abs(r-3) > 1e-6 {
		t.Errorf("expected midpoint radius 3, got %v", r)
	}
}

func TestCylinderOutsideExtentIsEmpty(t *testing.T) {
	c := &csg3.Cylinder{H: 10, R1: 2, R2: 2, Fn: 8, Transform: geom.Identity()}
	pts, err := Cylinder(c, 20, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 0 {
		t.Errorf("expected empty slice outside extent, got %d points", len(pts))
	}
}

func TestPolyhedronSliceCube(t *testing.T) {
	pts := []geom.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0},
		{X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 10}, {X: 10, Y: 10, Z: 10}, {X: 0, Y: 10, Z: 10},
	}
	faces := [][]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
	}
	p := &csg3.Polyhedron{Points: pts, Faces: faces, Transform: geom.Identity()}
	loops, err := Polyhedron(p, 5, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("expected a single loop, got %d: %#v", len(loops), loops)
	}
	if len(loops[0]) != 4 {
		t.Fatalf("expected a 4-point square loop, got %d points: %#v", len(loops[0]), loops[0])
	}
}

// TestPolyhedronSliceTwoDisjointShells builds a polyhedron out of two
// separate cubes that never touch: its cross-section has two disjoint
// boundary components, both of which must survive stitching (spec.md
// §4.5), not just the first one found.
func TestPolyhedronSliceTwoDisjointShells(t *testing.T) {
	cube := func(ox float64) ([]geom.Vec3, [][]int, int) {
		pts := []geom.Vec3{
			{X: ox, Y: 0, Z: 0}, {X: ox + 10, Y: 0, Z: 0}, {X: ox + 10, Y: 10, Z: 0}, {X: ox, Y: 10, Z: 0},
			{X: ox, Y: 0, Z: 10}, {X: ox + 10, Y: 0, Z: 10}, {X: ox + 10, Y: 10, Z: 10}, {X: ox, Y: 10, Z: 10},
		}
		faces := [][]int{
			{0, 3, 2, 1}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
		}
		return pts, faces, len(pts)
	}

	ptsA, facesA, n := cube(0)
	ptsB, facesB, _ := cube(50)
	allPts := append(append([]geom.Vec3{}, ptsA...), ptsB...)
	var allFaces [][]int
	allFaces = append(allFaces, facesA...)
	for _, f := range facesB {
		shifted := make([]int, len(f))
		for i, idx := range f {
			shifted[i] = idx + n
		}
		allFaces = append(allFaces, shifted)
	}

	p := &csg3.Polyhedron{Points: allPts, Faces: allFaces, Transform: geom.Identity()}
	loops, err := Polyhedron(p, 5, testEps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loops) != 2 {
		t.Fatalf("expected two disjoint loops, got %d: %#v", len(loops), loops)
	}
	for _, l := range loops {
		if len(l) != 4 {
			t.Errorf("expected each shell's cross-section to be a 4-point square, got %d points: %#v", len(l), l)
		}
	}
}

func TestTiltedSphereIsUnsupported(t *testing.T) {
	tilted := geom.Mat4{
		{1, 0, 0, 0},
		{0, 0, -1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}
	s := &csg3.Sphere{Radius: 10, Fn: 8, Transform: tilted}
	_, err := Sphere(s, 0, testEps)
	if err == nil {
		t.Fatal("expected an error for a sphere tilted away from world Z")
	}
}
