package csg3

import (
	"math"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/diag"
	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/scad"
)

// Build folds a lowered SCAD forest into the CSG3 tree, applying each
// transform node by accumulating it into the Mat4 every descendant leaf
// carries (spec.md §4.4 "transform folding": a primitive never needs to
// know it was translated, rotated and scaled in three separate calls --
// only the single composed matrix"). warnings collects every node dropped
// under a config.PolicyWarn policy decision (spec.md §4.3/§7: warnings do
// not stop the pipeline, but they are still reported, not silently eaten).
func Build(nodes []scad.Node, cfg config.Config) (out []Node, warnings []*Error, err *Error) {
	out = make([]Node, 0, len(nodes))
	for _, n := range nodes {
		node, berr := build(n, geom.Identity(), cfg, false, &warnings)
		if berr != nil {
			return nil, warnings, berr
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, warnings, nil
}

// build lowers one SCAD node under the accumulated transform m. in2D marks
// that we are inside a linear_extrude's child tree, where 2D primitives are
// expected and 3D primitives are the dimensionality violation. warn
// accumulates any config.PolicyWarn diagnostics encountered along the way.
func build(n scad.Node, m geom.Mat4, cfg config.Config, in2D bool, warn *[]*Error) (Node, *Error) {
	switch v := n.(type) {
	case *scad.Cube:
		if in2D {
			return policyViolation(cfg.Outside3DIn2D, diag.Geom3DIn2D, v.Location(), "cube used inside a 2D (linear_extrude) context", warn)
		}
		if v.Size.X <= 0 || v.Size.Y <= 0 || v.Size.Z <= 0 {
			return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "cube has a non-positive size", warn)
		}
		local := cubeToPolyhedron(v)
		return &Polyhedron{base: base{v.Location()}, Points: local.Points, Faces: local.Faces, Transform: m}, nil

	case *scad.Sphere:
		if in2D {
			return policyViolation(cfg.Outside3DIn2D, diag.Geom3DIn2D, v.Location(), "sphere used inside a 2D (linear_extrude) context", warn)
		}
		if v.Radius <= 0 {
			return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "sphere has a non-positive radius", warn)
		}
		return &Sphere{base: base{v.Location()}, Radius: v.Radius, Fn: v.Fn, Transform: m}, nil

	case *scad.Cylinder:
		if in2D {
			return policyViolation(cfg.Outside3DIn2D, diag.Geom3DIn2D, v.Location(), "cylinder used inside a 2D (linear_extrude) context", warn)
		}
		if v.H <= 0 || (v.R1 <= 0 && v.R2 <= 0) {
			return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "cylinder has a non-positive height or both radii zero", warn)
		}
		return &Cylinder{base: base{v.Location()}, H: v.H, R1: v.R1, R2: v.R2, Fn: v.Fn, Transform: m}, nil

	case *scad.Polyhedron:
		if in2D {
			return policyViolation(cfg.Outside3DIn2D, diag.Geom3DIn2D, v.Location(), "polyhedron used inside a 2D (linear_extrude) context", warn)
		}
		if len(v.Points) == 0 || len(v.Faces) == 0 {
			return policyViolation(cfg.EmptyAtSource, diag.GeomEmptyPrimitive, v.Location(), "polyhedron has no points or faces", warn)
		}
		return &Polyhedron{base: base{v.Location()}, Points: v.Points, Faces: v.Faces, Transform: m}, nil

	case *scad.Square, *scad.Circle, *scad.Polygon:
		if !in2D {
			return policyViolation(cfg.Outside2DIn3D, diag.Geom2DIn3D, n.Location(), "2D shape used directly in a 3D context (wrap it in linear_extrude)", warn)
		}
		return nil, nil // consumed directly by buildProfile (extrude.go), never reached standalone

	case *scad.Union:
		children, err := buildChildren(v.Children, m, cfg, in2D, warn)
		if err != nil {
			return nil, err
		}
		return &Union{base: base{v.Location()}, Children: children}, nil

	case *scad.Difference:
		children, err := buildChildren(v.Children, m, cfg, in2D, warn)
		if err != nil {
			return nil, err
		}
		return &Difference{base: base{v.Location()}, Children: children}, nil

	case *scad.Intersection:
		children, err := buildChildren(v.Children, m, cfg, in2D, warn)
		if err != nil {
			return nil, err
		}
		return &Intersection{base: base{v.Location()}, Children: children}, nil

	case *scad.Group:
		children, err := buildChildren(v.Children, m, cfg, in2D, warn)
		if err != nil {
			return nil, err
		}
		return &Union{base: base{v.Location()}, Children: children}, nil

	case *scad.Translate:
		m2 := m.Mul(geom.Translate(v.V))
		return buildSingleOrUnion(v.Children, m2, cfg, in2D, v.Location(), warn)

	case *scad.Rotate:
		m2 := m.Mul(v.M)
		return buildSingleOrUnion(v.Children, m2, cfg, in2D, v.Location(), warn)

	case *scad.Scale:
		if isCollapsingScale(v.V) {
			return policyViolation(cfg.CollapsedByTransform, diag.GeomCollapsedByTransform, v.Location(), "scale collapses geometry to zero along an axis", warn)
		}
		m2 := m.Mul(geom.Scale(v.V))
		return buildSingleOrUnion(v.Children, m2, cfg, in2D, v.Location(), warn)

	case *scad.Multmatrix:
		if matrixCollapses(v.M) {
			return policyViolation(cfg.CollapsedByTransform, diag.GeomCollapsedByTransform, v.Location(), "multmatrix's linear part is singular", warn)
		}
		m2 := m.Mul(v.M)
		return buildSingleOrUnion(v.Children, m2, cfg, in2D, v.Location(), warn)

	case *scad.Mirror:
		m2 := m.Mul(geom.MirrorPlane(v.V))
		return buildSingleOrUnion(v.Children, m2, cfg, in2D, v.Location(), warn)

	case *scad.LinearExtrude:
		return buildExtrusion(v, m, cfg, warn)

	default:
		return nil, errAt(diag.GeomEmptyPrimitive, n.Location(), "unhandled SCAD node in csg3 builder")
	}
}

func buildChildren(children []scad.Node, m geom.Mat4, cfg config.Config, in2D bool, warn *[]*Error) ([]Node, *Error) {
	out := make([]Node, 0, len(children))
	for _, c := range children {
		node, err := build(c, m, cfg, in2D, warn)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

// buildSingleOrUnion wraps a transform's lowered children: a single child
// is returned directly, multiple implicit children are unioned, matching
// the modelling language's "a transform applies to an implicit union of
// its children" rule.
func buildSingleOrUnion(children []scad.Node, m geom.Mat4, cfg config.Config, in2D bool, loc geom.Location, warn *[]*Error) (Node, *Error) {
	built, err := buildChildren(children, m, cfg, in2D, warn)
	if err != nil {
		return nil, err
	}
	if len(built) == 1 {
		return built[0], nil
	}
	return &Union{base: base{loc}, Children: built}, nil
}

func isCollapsingScale(v geom.Vec3) bool {
	const tiny = 1e-12
	return math.Abs(v.X) < tiny || math.Abs(v.Y) < tiny || math.Abs(v.Z) < tiny
}

// matrixCollapses reports whether the 3x3 linear part of m has a
// near-zero determinant, which would fold every point onto a plane (or
// line, or the origin).
func matrixCollapses(m geom.Mat4) bool {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return math.Abs(det) < 1e-12
}

// policyViolation applies config.Policy to a dropped-node decision: Error
// fails the whole build, Ignore drops the node silently, and Warn drops the
// node but records an *Error in *warn so the caller can still report it
// (spec.md §4.3/§7 requires all three to be visibly distinct behaviors).
func policyViolation(p config.Policy, subkind diag.GeomSubkind, loc geom.Location, msg string, warn *[]*Error) (Node, *Error) {
	switch p {
	case config.PolicyIgnore:
		return nil, nil
	case config.PolicyWarn:
		*warn = append(*warn, &Error{Subkind: subkind, Msg: msg, Loc: loc})
		return nil, nil
	default:
		return nil, errAt(subkind, loc, "%s", msg)
	}
}

// cubeToPolyhedron expands a cube primitive to the 8-point, 6-face box
// mesh that internal/slice's generic polyhedron slicer already knows how
// to cut, so cube needs no bespoke slicing path.
func cubeToPolyhedron(c *scad.Cube) struct {
	Points []geom.Vec3
	Faces  [][]int
} {
	sx, sy, sz := c.Size.X, c.Size.Y, c.Size.Z
	var ox, oy, oz float64
	if c.Center {
		ox, oy, oz = -sx/2, -sy/2, -sz/2
	}
	pts := []geom.Vec3{
		{X: ox, Y: oy, Z: oz},
		{X: ox + sx, Y: oy, Z: oz},
		{X: ox + sx, Y: oy + sy, Z: oz},
		{X: ox, Y: oy + sy, Z: oz},
		{X: ox, Y: oy, Z: oz + sz},
		{X: ox + sx, Y: oy, Z: oz + sz},
		{X: ox + sx, Y: oy + sy, Z: oz + sz},
		{X: ox, Y: oy + sy, Z: oz + sz},
	}
	faces := [][]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}
	return struct {
		Points []geom.Vec3
		Faces  [][]int
	}{pts, faces}
}
