package scad

import (
	"math"

	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/syn"
)

// knownFunctors maps every recognized functor to its positional parameter
// order (spec.md §4.2). A functor not in this set is a fatal SCADError
// unless the caller suppresses unknown-functor errors (not offered here —
// spec.md §4.2 "Unknown functors produce a fatal error unless suppressed"
// is a collaborator-level policy knob, out of the core's scope per §1).
var knownFunctors = map[string][]string{
	"cube":           {"size", "center"},
	"sphere":         {"r", "d"},
	"cylinder":       {"h", "r1", "r2", "center", "r", "d", "d1", "d2"},
	"polyhedron":     {"points", "faces"},
	"square":         {"size", "center"},
	"circle":         {"r", "d"},
	"polygon":        {"points", "paths"},
	"union":          nil,
	"difference":     nil,
	"intersection":   nil,
	"group":          nil,
	"translate":      {"v"},
	"rotate":         {"a", "v"},
	"scale":          {"v"},
	"multmatrix":     {"m"},
	"mirror":         {"v"},
	"linear_extrude": {"height", "center", "twist", "scale"},
}

// MaxFn is the builder's configured cap on round-primitive segment counts
// (spec.md §4.3); it is threaded through lowering because $fn resolution
// for spheres/circles/cylinders happens here, at constant-fold time.
type Options struct {
	MaxFn int
}

// Lower lowers a whole parsed body to a sequence of SCAD nodes.
func Lower(body []*syn.Call, opts Options) ([]Node, *Error) {
	e := defaultEnv()
	return lowerChildren(body, e, opts)
}

func lowerChildren(calls []*syn.Call, e env, opts Options) ([]Node, *Error) {
	out := make([]Node, 0, len(calls))
	for _, c := range calls {
		n, err := lowerOne(c, e, opts)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func lowerOne(call *syn.Call, e env, opts Options) (Node, *Error) {
	fn, fa, fs, rest, err := extractSpecial(call.Args)
	if err != nil {
		return nil, err
	}
	e = e.child(fn, fa, fs)

	params, known := knownFunctors[call.Functor]
	if !known {
		return nil, errAt(call.Loc, "unknown functor %q", call.Functor)
	}
	bound, err := bindArgs(call.Functor, rest, params)
	if err != nil {
		return nil, err
	}

	switch call.Functor {
	case "cube":
		return lowerCube(call, bound)
	case "sphere":
		return lowerSphere(call, bound, e, opts)
	case "cylinder":
		return lowerCylinder(call, bound, e, opts)
	case "polyhedron":
		return lowerPolyhedron(call, bound)
	case "square":
		return lowerSquare(call, bound)
	case "circle":
		return lowerCircle(call, bound, e, opts)
	case "polygon":
		return lowerPolygon(call, bound)
	case "union", "group":
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		if call.Functor == "group" {
			return &Group{base: base{call.Loc}, Children: children}, nil
		}
		return &Union{base: base{call.Loc}, Children: children}, nil
	case "difference":
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Difference{base: base{call.Loc}, Children: children}, nil
	case "intersection":
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Intersection{base: base{call.Loc}, Children: children}, nil
	case "translate":
		vArg, err := require(bound, "v", call.Loc, "translate")
		if err != nil {
			return nil, err
		}
		v, err := asVec3(vArg)
		if err != nil {
			return nil, err
		}
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Translate{base: base{call.Loc}, V: v, Children: children}, nil
	case "rotate":
		m, err := lowerRotateMatrix(bound)
		if err != nil {
			return nil, err
		}
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Rotate{base: base{call.Loc}, M: m, Children: children}, nil
	case "scale":
		vArg, err := require(bound, "v", call.Loc, "scale")
		if err != nil {
			return nil, err
		}
		v, err := asScalarOrVec3(vArg)
		if err != nil {
			return nil, err
		}
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Scale{base: base{call.Loc}, V: v, Children: children}, nil
	case "multmatrix":
		mArg, err := require(bound, "m", call.Loc, "multmatrix")
		if err != nil {
			return nil, err
		}
		m, err := asMat4(mArg)
		if err != nil {
			return nil, err
		}
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Multmatrix{base: base{call.Loc}, M: m, Children: children}, nil
	case "mirror":
		vArg, err := require(bound, "v", call.Loc, "mirror")
		if err != nil {
			return nil, err
		}
		v, err := asVec3(vArg)
		if err != nil {
			return nil, err
		}
		children, err := lowerChildren(call.Children, e, opts)
		if err != nil {
			return nil, err
		}
		return &Mirror{base: base{call.Loc}, V: v, Children: children}, nil
	case "linear_extrude":
		return lowerLinearExtrude(call, bound, e, opts)
	default:
		return nil, errAt(call.Loc, "unknown functor %q", call.Functor)
	}
}

func extractSpecial(args []syn.Arg) (fn, fa, fs *float64, rest []syn.Arg, err *Error) {
	for _, a := range args {
		switch a.Name {
		case "$fn":
			v, e := asFloat(a.Value)
			if e != nil {
				return nil, nil, nil, nil, e
			}
			fn = &v
		case "$fa":
			v, e := asFloat(a.Value)
			if e != nil {
				return nil, nil, nil, nil, e
			}
			fa = &v
		case "$fs":
			v, e := asFloat(a.Value)
			if e != nil {
				return nil, nil, nil, nil, e
			}
			fs = &v
		default:
			rest = append(rest, a)
		}
	}
	return fn, fa, fs, rest, nil
}

func lowerCube(call *syn.Call, bound map[string]syn.Node) (Node, *Error) {
	size := geom.Vec3{X: 1, Y: 1, Z: 1}
	if v, ok := bound["size"]; ok {
		s, err := asScalarOrVec3(v)
		if err != nil {
			return nil, err
		}
		size = s
	}
	center := false
	if v, ok := bound["center"]; ok {
		c, err := asBool(v)
		if err != nil {
			return nil, err
		}
		center = c
	}
	return &Cube{base: base{call.Loc}, Size: size, Center: center}, nil
}

func radiusFromRD(bound map[string]syn.Node, rName, dName string, def float64) (float64, *Error) {
	if v, ok := bound[dName]; ok {
		d, err := asFloat(v)
		if err != nil {
			return 0, err
		}
		return d / 2, nil
	}
	if v, ok := bound[rName]; ok {
		return asFloat(v)
	}
	return def, nil
}

func lowerSphere(call *syn.Call, bound map[string]syn.Node, e env, opts Options) (Node, *Error) {
	r, err := radiusFromRD(bound, "r", "d", 1)
	if err != nil {
		return nil, err
	}
	return &Sphere{base: base{call.Loc}, Radius: r, Fn: e.resolveFn(r, opts.MaxFn)}, nil
}

func lowerCylinder(call *syn.Call, bound map[string]syn.Node, e env, opts Options) (Node, *Error) {
	h := 1.0
	if v, ok := bound["h"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		h = f
	}
	var r1, r2 float64 = 1, 1
	if v, ok := bound["d1"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		r1 = f / 2
	} else if v, ok := bound["r1"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		r1 = f
	}
	r2 = r1
	if v, ok := bound["d2"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		r2 = f / 2
	} else if v, ok := bound["r2"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		r2 = f
	}
	// `r`/`d` (single-radius form) override both r1 and r2 when present.
	if rr, err := radiusFromRD(bound, "r", "d", -1); err != nil {
		return nil, err
	} else if rr >= 0 {
		r1, r2 = rr, rr
	}
	center := false
	if v, ok := bound["center"]; ok {
		c, err := asBool(v)
		if err != nil {
			return nil, err
		}
		center = c
	}
	maxR := r1
	if r2 > maxR {
		maxR = r2
	}
	return &Cylinder{base: base{call.Loc}, H: h, R1: r1, R2: r2, Center: center, Fn: e.resolveFn(maxR, opts.MaxFn)}, nil
}

func lowerPolyhedron(call *syn.Call, bound map[string]syn.Node) (Node, *Error) {
	ptsArg, err := require(bound, "points", call.Loc, "polyhedron")
	if err != nil {
		return nil, err
	}
	pts, err := asPointsVec3(ptsArg)
	if err != nil {
		return nil, err
	}
	facesArg, err := require(bound, "faces", call.Loc, "polyhedron")
	if err != nil {
		return nil, err
	}
	faces, err := asFaceList(facesArg)
	if err != nil {
		return nil, err
	}
	return &Polyhedron{base: base{call.Loc}, Points: pts, Faces: faces}, nil
}

func lowerSquare(call *syn.Call, bound map[string]syn.Node) (Node, *Error) {
	size := geom.Vec2{X: 1, Y: 1}
	if v, ok := bound["size"]; ok {
		s, err := asScalarOrVec2(v)
		if err != nil {
			return nil, err
		}
		size = s
	}
	center := false
	if v, ok := bound["center"]; ok {
		c, err := asBool(v)
		if err != nil {
			return nil, err
		}
		center = c
	}
	return &Square{base: base{call.Loc}, Size: size, Center: center}, nil
}

func lowerCircle(call *syn.Call, bound map[string]syn.Node, e env, opts Options) (Node, *Error) {
	r, err := radiusFromRD(bound, "r", "d", 1)
	if err != nil {
		return nil, err
	}
	return &Circle{base: base{call.Loc}, Radius: r, Fn: e.resolveFn(r, opts.MaxFn)}, nil
}

func lowerPolygon(call *syn.Call, bound map[string]syn.Node) (Node, *Error) {
	ptsArg, err := require(bound, "points", call.Loc, "polygon")
	if err != nil {
		return nil, err
	}
	pts, err := asPointsVec2(ptsArg)
	if err != nil {
		return nil, err
	}
	var paths [][]int
	if v, ok := bound["paths"]; ok {
		p, err := asPaths(v)
		if err != nil {
			return nil, err
		}
		paths = p
	}
	return &Polygon{base: base{call.Loc}, Points: pts, Paths: paths}, nil
}

func lowerRotateMatrix(bound map[string]syn.Node) (geom.Mat4, *Error) {
	aNode, hasA := bound["a"]
	vNode, hasV := bound["v"]
	if hasA && hasV {
		angle, err := asFloat(aNode)
		if err != nil {
			return geom.Mat4{}, err
		}
		axis, err := asVec3(vNode)
		if err != nil {
			return geom.Mat4{}, err
		}
		return axisAngle(axis, angle*math.Pi/180), nil
	}
	if hasA {
		if _, isArr := aNode.(*syn.ArrayLit); isArr {
			deg, err := asVec3(aNode)
			if err != nil {
				return geom.Mat4{}, err
			}
			return geom.RotateDeg(deg), nil
		}
		angle, err := asFloat(aNode)
		if err != nil {
			return geom.Mat4{}, err
		}
		return geom.RotateDeg(geom.Vec3{Z: angle}), nil
	}
	return geom.Identity(), nil
}

// axisAngle builds a rotation matrix from an arbitrary axis and an angle
// in radians (Rodrigues' formula), used by rotate(a=deg, v=axis).
func axisAngle(axis geom.Vec3, rad float64) geom.Mat4 {
	l := axis.Len()
	if l == 0 {
		return geom.Identity()
	}
	x, y, z := axis.X/l, axis.Y/l, axis.Z/l
	c, s := math.Cos(rad), math.Sin(rad)
	t := 1 - c
	m := geom.Identity()
	m[0][0], m[0][1], m[0][2] = t*x*x+c, t*x*y-s*z, t*x*z+s*y
	m[1][0], m[1][1], m[1][2] = t*x*y+s*z, t*y*y+c, t*y*z-s*x
	m[2][0], m[2][1], m[2][2] = t*x*z-s*y, t*y*z+s*x, t*z*z+c
	return m
}

func lowerLinearExtrude(call *syn.Call, bound map[string]syn.Node, e env, opts Options) (Node, *Error) {
	height := 100.0
	if v, ok := bound["height"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		height = f
	}
	center := false
	if v, ok := bound["center"]; ok {
		c, err := asBool(v)
		if err != nil {
			return nil, err
		}
		center = c
	}
	twist := 0.0
	if v, ok := bound["twist"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		twist = f
	}
	scale := 1.0
	if v, ok := bound["scale"]; ok {
		f, err := asFloat(v)
		if err != nil {
			return nil, err
		}
		scale = f
	}
	children, err := lowerChildren(call.Children, e, opts)
	if err != nil {
		return nil, err
	}
	return &LinearExtrude{base: base{call.Loc}, Height: height, Center: center, Twist: twist, Scale: scale, Children: children}, nil
}
