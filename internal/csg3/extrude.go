package csg3

import (
	"math"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/diag"
	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/scad"
)

// buildExtrusion lowers a linear_extrude and its 2D child tree to a single
// Extrusion leaf. Only union/group/translate/scale/mirror of 2D primitives
// are supported inside the profile tree: a profile built from
// difference/intersection of several loops would need a full CSG2 Boolean
// pass before extrusion, which spec.md §4.5 reserves for the post-slice
// pipeline stage, not for a single 3D leaf's local profile. Nested
// difference/intersection here is therefore a 3D-in-2D-shaped error today;
// this is a deliberate scope line, not an oversight.
func buildExtrusion(v *scad.LinearExtrude, m geom.Mat4, cfg config.Config, warn *[]*Error) (Node, *Error) {
	profile, err := buildProfile(v.Children, geom.Identity(), cfg, warn)
	if err != nil {
		return nil, err
	}
	if len(profile) == 0 {
		return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "linear_extrude has an empty profile", warn)
	}
	if v.Height <= 0 {
		return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "linear_extrude has a non-positive height", warn)
	}
	center := 0.0
	if v.Center {
		center = -v.Height / 2
	}
	return &Extrusion{
		base:      base{v.Location()},
		Profile:   profile,
		Height:    v.Height,
		ZOffset:   center,
		Twist:     v.Twist,
		Scale:     v.Scale,
		Transform: m,
	}, nil
}

func buildProfile(children []scad.Node, m2 geom.Mat4, cfg config.Config, warn *[]*Error) ([]Path2D, *Error) {
	var out []Path2D
	for _, c := range children {
		paths, err := buildProfileOne(c, m2, cfg, warn)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}

func buildProfileOne(n scad.Node, m2 geom.Mat4, cfg config.Config, warn *[]*Error) ([]Path2D, *Error) {
	switch v := n.(type) {
	case *scad.Square:
		if v.Size.X <= 0 || v.Size.Y <= 0 {
			if _, err := policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "square has a non-positive size", warn); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return []Path2D{{Points: transformLoop(squareLoop(v), m2)}}, nil

	case *scad.Circle:
		if v.Radius <= 0 {
			if _, err := policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "circle has a non-positive radius", warn); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return []Path2D{{Points: transformLoop(circleLoop(v), m2)}}, nil

	case *scad.Polygon:
		return polygonLoops(v, m2), nil

	case *scad.Union, *scad.Group:
		children := childrenOf(v)
		return buildProfile(children, m2, cfg, warn)

	case *scad.Translate:
		t2 := geom.Vec2{X: v.V.X, Y: v.V.Y}
		return buildProfile(v.Children, m2.Mul(translate2D(t2)), cfg, warn)

	case *scad.Scale:
		s2 := geom.Vec2{X: v.V.X, Y: v.V.Y}
		return buildProfile(v.Children, m2.Mul(scale2D(s2)), cfg, warn)

	case *scad.Mirror:
		return buildProfile(v.Children, m2.Mul(geom.MirrorPlane(v.V)), cfg, warn)

	case *scad.Cube, *scad.Sphere, *scad.Cylinder, *scad.Polyhedron:
		if _, err := policyViolation(cfg.Outside3DIn2D, diag.Geom3DIn2D, n.Location(), "3D primitive used inside a 2D (linear_extrude) profile", warn); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, errAt(diag.Geom3DIn2D, n.Location(), "unsupported node inside a linear_extrude profile")
	}
}

func childrenOf(n scad.Node) []scad.Node {
	switch v := n.(type) {
	case *scad.Union:
		return v.Children
	case *scad.Group:
		return v.Children
	default:
		return nil
	}
}

func transformLoop(pts []geom.Vec2, m geom.Mat4) []geom.Vec2 {
	out := make([]geom.Vec2, len(pts))
	for i, p := range pts {
		p3 := m.Apply(geom.Vec3{X: p.X, Y: p.Y})
		out[i] = geom.Vec2{X: p3.X, Y: p3.Y}
	}
	return out
}

func translate2D(v geom.Vec2) geom.Mat4 {
	return geom.Translate(geom.Vec3{X: v.X, Y: v.Y})
}

func scale2D(v geom.Vec2) geom.Mat4 {
	return geom.Scale(geom.Vec3{X: v.X, Y: v.Y, Z: 1})
}

func squareLoop(v *scad.Square) []geom.Vec2 {
	sx, sy := v.Size.X, v.Size.Y
	var ox, oy float64
	if v.Center {
		ox, oy = -sx/2, -sy/2
	}
	return []geom.Vec2{
		{X: ox, Y: oy},
		{X: ox + sx, Y: oy},
		{X: ox + sx, Y: oy + sy},
		{X: ox, Y: oy + sy},
	}
}

func circleLoop(v *scad.Circle) []geom.Vec2 {
	n := v.Fn
	if n < 3 {
		n = 3
	}
	pts := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Vec2{X: v.Radius * math.Cos(a), Y: v.Radius * math.Sin(a)}
	}
	return pts
}

func polygonLoops(v *scad.Polygon, m2 geom.Mat4) []Path2D {
	paths := v.Paths
	if paths == nil {
		loop := make([]int, len(v.Points))
		for i := range loop {
			loop[i] = i
		}
		paths = [][]int{loop}
	}
	out := make([]Path2D, 0, len(paths))
	for _, path := range paths {
		pts := make([]geom.Vec2, len(path))
		for i, idx := range path {
			pts[i] = v.Points[idx]
		}
		out = append(out, Path2D{Points: transformLoop(pts, m2)})
	}
	return out
}
