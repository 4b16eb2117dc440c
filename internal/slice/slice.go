// Package slice implements the per-primitive 3D->2D slicer of spec.md
// §4.5: for each CSG3 primitive and a given layer's z-plane, produce the
// layer's CSG2 polygon operand.
//
// Sphere, cylinder and extrusion slicing rely on a pullback trick instead
// of inverting each primitive's accumulated matrix: row 2 of the local-to-
// world matrix M already encodes the world plane z=z_c as a plane equation
// in local coordinates, since (M . p_local).z == z_c expands to
// M[2][*] . p_local == z_c. When that local plane is horizontal (the
// primitive's local Z axis is not tilted away from world Z -- the common
// case of translate/scale/azimuthal-rotate-about-Z pipelines), the local
// cutting height is a single division and the primitive's own rotational
// symmetry gives a closed-form cross-section. A primitive tilted away
// from world Z falls outside that closed form and is reported as an
// *Error rather than silently approximated; this package's Polyhedron
// slicer has no such restriction, since it works directly from
// transformed face vertices.
package slice

import (
	"math"

	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/geom"
)

// Error is a slicing-time failure: a primitive tilted away from world Z in
// a way the closed-form circular/polygon slicers cannot handle, or a
// polyhedron face with fewer than three vertices.
type Error struct {
	Msg string
	Loc geom.Location
}

func (e *Error) Error() string { return e.Msg }

const tiltEpsilonFactor = 1e-6

// localPlaneZ pulls the world plane z=zc back into the primitive's local
// frame, returning the local z-height of the (assumed horizontal) cutting
// plane. ok is false if the primitive's local Z axis is tilted away from
// world Z beyond the closed-form slicers' support.
func localPlaneZ(m geom.Mat4, zc float64) (localZ float64, ok bool) {
	a, b, c, d := m[2][0], m[2][1], m[2][2], m[2][3]
	if math.Abs(c) < 1e-12 {
		return 0, false
	}
	if math.Hypot(a, b) > tiltEpsilonFactor*math.Abs(c) {
		return 0, false
	}
	return (zc - d) / c, true
}

// Sphere slices a CSG3 sphere at world z=zc, returning a regular Fn-gon
// approximating the circular cross-section, or an empty set if the plane
// misses the sphere.
func Sphere(s *csg3.Sphere, zc float64, eps geom.Epsilons) ([]geom.Vec2, *Error) {
	localZ, ok := localPlaneZ(s.Transform, zc)
	if !ok {
		return nil, &Error{Msg: "sphere is tilted away from world Z; analytic slicing not supported", Loc: s.Location()}
	}
	rr := s.Radius*s.Radius - localZ*localZ
	if rr <= eps.Sqr {
		return nil, nil
	}
	r := math.Sqrt(rr)
	return ring(s.Transform, r, localZ, s.Fn), nil
}

// Cylinder slices a CSG3 cylinder/cone frustum (local z in [0,H]) at world
// z=zc, linearly interpolating the cross-section radius between R1 and R2.
func Cylinder(c *csg3.Cylinder, zc float64, eps geom.Epsilons) ([]geom.Vec2, *Error) {
	localZ, ok := localPlaneZ(c.Transform, zc)
	if !ok {
		return nil, &Error{Msg: "cylinder is tilted away from world Z; analytic slicing not supported", Loc: c.Location()}
	}
	if localZ < -eps.Pt || localZ > c.H+eps.Pt {
		return nil, nil
	}
	t := 0.0
	if c.H > 0 {
		t = localZ / c.H
	}
	r := c.R1 + (c.R2-c.R1)*t
	if r <= eps.Pt {
		return nil, nil
	}
	return ring(c.Transform, r, localZ, c.Fn), nil
}

func ring(m geom.Mat4, r, localZ float64, fn int) []geom.Vec2 {
	n := fn
	if n < 3 {
		n = 3
	}
	out := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		local := geom.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: localZ}
		w := m.Apply(local)
		out[i] = geom.Vec2{X: w.X, Y: w.Y}
	}
	return out
}

// Extrusion slices a CSG3 extrusion at world z=zc: if the plane falls
// inside [ZOffset, ZOffset+Height] the 2D profile is emitted directly (with
// twist/scale interpolated to the plane's height fraction), otherwise it is
// empty.
func Extrusion(e *csg3.Extrusion, zc float64, eps geom.Epsilons) ([][]geom.Vec2, *Error) {
	localZ, ok := localPlaneZ(e.Transform, zc)
	if !ok {
		return nil, &Error{Msg: "linear_extrude is tilted away from world Z; analytic slicing not supported", Loc: e.Location()}
	}
	h := localZ - e.ZOffset
	if h < -eps.Pt || h > e.Height+eps.Pt {
		return nil, nil
	}
	t := 0.0
	if e.Height > 0 {
		t = h / e.Height
	}
	scale := 1 + (e.Scale-1)*t
	twist := e.Twist * t * math.Pi / 180

	out := make([][]geom.Vec2, len(e.Profile))
	for pi, path := range e.Profile {
		pts := make([]geom.Vec2, len(path.Points))
		ct, st := math.Cos(twist), math.Sin(twist)
		for i, p := range path.Points {
			x, y := p.X*scale, p.Y*scale
			rx := x*ct - y*st
			ry := x*st + y*ct
			w := e.Transform.Apply(geom.Vec3{X: rx, Y: ry, Z: localZ})
			pts[i] = geom.Vec2{X: w.X, Y: w.Y}
		}
		out[pi] = pts
	}
	return out, nil
}

// Polyhedron intersects every face of a CSG3 polyhedron with the world
// plane z=zc by walking edges, then stitches the resulting segments into
// closed loops by endpoint matching within `eq` (spec.md §4.5). A
// cross-section can have more than one boundary component -- a hole, a
// torus-like shape, two disjoint shells -- so every closed loop the
// segments resolve into is returned, not just the first. Because faces are
// evaluated from already world-transformed vertices, no tilt restriction
// applies here.
func Polyhedron(p *csg3.Polyhedron, zc float64, eps geom.Epsilons) ([][]geom.Vec2, *Error) {
	world := make([]geom.Vec3, len(p.Points))
	for i, v := range p.Points {
		world[i] = p.Transform.Apply(v)
	}
	// A plane through a vertex makes faces touch it instead of crossing it
	// (and a face lying in the plane crosses it everywhere), so the plane
	// is biased slightly upward off such a vertex.
	for _, w := range world {
		if math.Abs(w.Z-zc) <= eps.Eq {
			zc += eps.Pt
			break
		}
	}

	var segs [][2]geom.Vec2
	for _, face := range p.Faces {
		if len(face) < 3 {
			return nil, &Error{Msg: "polyhedron face has fewer than 3 vertices", Loc: p.Location()}
		}
		var cross []geom.Vec2
		n := len(face)
		for i := 0; i < n; i++ {
			a := world[face[i]]
			b := world[face[(i+1)%n]]
			seg, ok := edgePlaneCrossing(a, b, zc, eps)
			if ok {
				cross = append(cross, seg)
			}
		}
		if len(cross) == 2 {
			segs = append(segs, [2]geom.Vec2{cross[0], cross[1]})
		}
		// len(cross) == 0: face entirely above/below, contributes nothing.
		// len(cross) not in {0,2}: degenerate face; skipped rather than
		// guessed at. Coplanar faces are avoided by the bias of zc above.
	}

	return stitch(segs, eps), nil
}

// edgePlaneCrossing returns the point where segment a-b crosses world
// plane z=zc, if it straddles it (one endpoint strictly above, one
// strictly below, within eq epsilon of the plane counting as on it).
func edgePlaneCrossing(a, b geom.Vec3, zc float64, eps geom.Epsilons) (geom.Vec2, bool) {
	da, db := a.Z-zc, b.Z-zc
	if math.Abs(da) <= eps.Eq {
		return geom.Vec2{X: a.X, Y: a.Y}, true
	}
	if (da > 0) == (db > 0) {
		return geom.Vec2{}, false
	}
	t := da / (da - db)
	p := geom.Lerp3(a, b, t)
	return geom.Vec2{X: p.X, Y: p.Y}, true
}

// stitch joins a bag of unordered segments into zero or more closed loops
// by matching endpoints within eq epsilon, one loop per disjoint group of
// segments (contrast internal/boolean's stitchSegments, which does the
// same thing for the already-oriented arrangement overlay there; segments
// here come from face-edge crossings, so both endpoints of an unused
// segment are tried as the next match instead of just its head).
func stitch(segs [][2]geom.Vec2, eps geom.Epsilons) [][]geom.Vec2 {
	used := make([]bool, len(segs))
	var loops [][]geom.Vec2
	for start := 0; start < len(segs); start++ {
		if used[start] {
			continue
		}
		used[start] = true
		loop := []geom.Vec2{segs[start][0], segs[start][1]}
		for {
			tail := loop[len(loop)-1]
			found := false
			for i, s := range segs {
				if used[i] {
					continue
				}
				if eps.EqualVec2(tail, s[0]) {
					loop = append(loop, s[1])
					used[i] = true
					found = true
					break
				}
				if eps.EqualVec2(tail, s[1]) {
					loop = append(loop, s[0])
					used[i] = true
					found = true
					break
				}
			}
			if !found {
				break // open chain: best-effort, leave as-is
			}
			if eps.EqualVec2(loop[len(loop)-1], loop[0]) {
				break
			}
		}
		if len(loop) > 1 && eps.EqualVec2(loop[0], loop[len(loop)-1]) {
			loop = loop[:len(loop)-1]
		}
		if len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops
}
