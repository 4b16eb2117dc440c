package scad

import (
	"fmt"

	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/syn"
)

// Error is a lowering-time failure (spec.md §4.2 / §7 SCADError): unknown
// functor, bad argument shape/type, missing required argument, unknown
// keyword.
type Error struct {
	Msg string
	Loc geom.Location
}

func (e *Error) Error() string { return e.Msg }

func errAt(loc geom.Location, format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Loc: loc}
}

// bindArgs binds a call's positional-then-keyword argument list to a known
// parameter order, the way spec.md §4.2 describes: "bind positional and
// keyword arguments to named parameters ... keyword args override
// positional, unknown keywords are an error."
func bindArgs(functor string, args []syn.Arg, params []string) (map[string]syn.Node, *Error) {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p] = true
	}

	bound := make(map[string]syn.Node, len(args))
	pos := 0
	for _, a := range args {
		if a.Name == "" {
			if pos >= len(params) {
				return nil, errAt(a.Loc, "%s: too many positional arguments", functor)
			}
			if _, byKeyword := bound[params[pos]]; !byKeyword {
				bound[params[pos]] = a.Value
			}
			pos++
			continue
		}
		if !known[a.Name] {
			return nil, errAt(a.Loc, "%s: unknown argument %q", functor, a.Name)
		}
		bound[a.Name] = a.Value
	}
	return bound, nil
}

func require(bound map[string]syn.Node, name string, loc geom.Location, functor string) (syn.Node, *Error) {
	v, ok := bound[name]
	if !ok {
		return nil, errAt(loc, "%s: missing required argument %q", functor, name)
	}
	return v, nil
}

// --- constant-fold / coercion helpers (spec.md §4.2 "coerce and
// constant-fold argument values to their expected semantic type") ---

func asFloat(n syn.Node) (float64, *Error) {
	switch v := n.(type) {
	case *syn.IntLit:
		return float64(v.Val), nil
	case *syn.FloatLit:
		return v.Val, nil
	default:
		return 0, errAt(n.Location(), "expected a number")
	}
}

func asBool(n syn.Node) (bool, *Error) {
	switch v := n.(type) {
	case *syn.IdentLit:
		switch v.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	case *syn.IntLit:
		return v.Val != 0, nil
	}
	return false, errAt(n.Location(), "expected a boolean")
}

func asInt(n syn.Node) (int, *Error) {
	f, err := asFloat(n)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func asVec2(n syn.Node) (geom.Vec2, *Error) {
	arr, ok := n.(*syn.ArrayLit)
	if !ok || len(arr.Elems) != 2 {
		return geom.Vec2{}, errAt(n.Location(), "expected a 2-vector")
	}
	x, err := asFloat(arr.Elems[0])
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := asFloat(arr.Elems[1])
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.Vec2{X: x, Y: y}, nil
}

func asVec3(n syn.Node) (geom.Vec3, *Error) {
	arr, ok := n.(*syn.ArrayLit)
	if !ok || len(arr.Elems) != 3 {
		return geom.Vec3{}, errAt(n.Location(), "expected a 3-vector")
	}
	x, err := asFloat(arr.Elems[0])
	if err != nil {
		return geom.Vec3{}, err
	}
	y, err := asFloat(arr.Elems[1])
	if err != nil {
		return geom.Vec3{}, err
	}
	z, err := asFloat(arr.Elems[2])
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.Vec3{X: x, Y: y, Z: z}, nil
}

// asScalarOrVec3 coerces size-like arguments that may be given as a single
// scalar (uniform on all three axes) or an explicit 3-vector.
func asScalarOrVec3(n syn.Node) (geom.Vec3, *Error) {
	if _, ok := n.(*syn.ArrayLit); ok {
		return asVec3(n)
	}
	f, err := asFloat(n)
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.Vec3{X: f, Y: f, Z: f}, nil
}

func asScalarOrVec2(n syn.Node) (geom.Vec2, *Error) {
	if _, ok := n.(*syn.ArrayLit); ok {
		return asVec2(n)
	}
	f, err := asFloat(n)
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.Vec2{X: f, Y: f}, nil
}

func asMat4(n syn.Node) (geom.Mat4, *Error) {
	rows, ok := n.(*syn.ArrayLit)
	if !ok || (len(rows.Elems) != 4 && len(rows.Elems) != 3) {
		return geom.Mat4{}, errAt(n.Location(), "expected a 3x4 or 4x4 matrix")
	}
	m := geom.Identity()
	for i, rowN := range rows.Elems {
		row, ok := rowN.(*syn.ArrayLit)
		if !ok || len(row.Elems) != 4 {
			return geom.Mat4{}, errAt(n.Location(), "expected each matrix row to have 4 elements")
		}
		for j, e := range row.Elems {
			f, err := asFloat(e)
			if err != nil {
				return geom.Mat4{}, err
			}
			m[i][j] = f
		}
	}
	return m, nil
}

func asPointsVec3(n syn.Node) ([]geom.Vec3, *Error) {
	arr, ok := n.(*syn.ArrayLit)
	if !ok {
		return nil, errAt(n.Location(), "expected a point array")
	}
	pts := make([]geom.Vec3, len(arr.Elems))
	for i, e := range arr.Elems {
		v, err := asVec3(e)
		if err != nil {
			return nil, err
		}
		pts[i] = v
	}
	return pts, nil
}

func asPointsVec2(n syn.Node) ([]geom.Vec2, *Error) {
	arr, ok := n.(*syn.ArrayLit)
	if !ok {
		return nil, errAt(n.Location(), "expected a point array")
	}
	pts := make([]geom.Vec2, len(arr.Elems))
	for i, e := range arr.Elems {
		v, err := asVec2(e)
		if err != nil {
			return nil, err
		}
		pts[i] = v
	}
	return pts, nil
}

func asFaceList(n syn.Node) ([][]int, *Error) {
	arr, ok := n.(*syn.ArrayLit)
	if !ok {
		return nil, errAt(n.Location(), "expected a face-index array")
	}
	faces := make([][]int, len(arr.Elems))
	for i, e := range arr.Elems {
		idxArr, ok := e.(*syn.ArrayLit)
		if !ok {
			return nil, errAt(e.Location(), "expected a face index list")
		}
		face := make([]int, len(idxArr.Elems))
		for j, ie := range idxArr.Elems {
			v, err := asInt(ie)
			if err != nil {
				return nil, err
			}
			face[j] = v
		}
		faces[i] = face
	}
	return faces, nil
}

func asPaths(n syn.Node) ([][]int, *Error) {
	return asFaceList(n)
}
