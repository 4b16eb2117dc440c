package slice

import (
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/geom"
)

// Layer walks a CSG3 tree and materialises the CSG2 operand tree for the
// single layer at world z=zc, dispatching each primitive leaf to the
// matching slicer and wrapping the result into an indexed PolygonSet with
// one path per loop the slicer returned.
func Layer(n csg3.Node, zc float64, eps geom.Epsilons, role csg2.Role) (csg2.Node, *Error) {
	switch v := n.(type) {
	case *csg3.Sphere:
		pts, err := Sphere(v, zc, eps)
		if err != nil {
			return nil, err
		}
		return leaf(v.Location(), pts, role), nil

	case *csg3.Cylinder:
		pts, err := Cylinder(v, zc, eps)
		if err != nil {
			return nil, err
		}
		return leaf(v.Location(), pts, role), nil

	case *csg3.Polyhedron:
		loops, err := Polyhedron(v, zc, eps)
		if err != nil {
			return nil, err
		}
		return leafMulti(v.Location(), loops, role), nil

	case *csg3.Extrusion:
		loops, err := Extrusion(v, zc, eps)
		if err != nil {
			return nil, err
		}
		return leafMulti(v.Location(), loops, role), nil

	case *csg3.Union:
		children, err := layerChildren(v.Children, zc, eps, role)
		if err != nil {
			return nil, err
		}
		return &csg2.Union{Children: children}, nil

	case *csg3.Intersection:
		children, err := layerChildren(v.Children, zc, eps, role)
		if err != nil {
			return nil, err
		}
		return &csg2.Intersection{Children: children}, nil

	case *csg3.Difference:
		var children []csg2.Node
		for i, c := range v.Children {
			r := csg2.RoleSubtractive
			if i == 0 {
				r = role
			}
			node, err := Layer(c, zc, eps, r)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}
		return &csg2.Difference{Children: children}, nil

	default:
		return nil, &Error{Msg: "unhandled CSG3 node in layer slicer"}
	}
}

func layerChildren(children []csg3.Node, zc float64, eps geom.Epsilons, role csg2.Role) ([]csg2.Node, *Error) {
	out := make([]csg2.Node, 0, len(children))
	for _, c := range children {
		node, err := Layer(c, zc, eps, role)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func leaf(loc geom.Location, pts []geom.Vec2, role csg2.Role) *csg2.Leaf {
	if len(pts) == 0 {
		return &csg2.Leaf{Polys: csg2.PolygonSet{}, Role: role}
	}
	verts := make([]csg2.Vertex, len(pts))
	path := make([]int, len(pts))
	for i, p := range pts {
		verts[i] = csg2.Vertex{Pos: p, Loc: loc}
		path[i] = i
	}
	return &csg2.Leaf{Polys: csg2.PolygonSet{Verts: verts, Paths: [][]int{path}}, Role: role}
}

func leafMulti(loc geom.Location, loops [][]geom.Vec2, role csg2.Role) *csg2.Leaf {
	var verts []csg2.Vertex
	var paths [][]int
	for _, loop := range loops {
		if len(loop) == 0 {
			continue
		}
		path := make([]int, len(loop))
		for i, p := range loop {
			path[i] = len(verts)
			verts = append(verts, csg2.Vertex{Pos: p, Loc: loc})
		}
		paths = append(paths, path)
	}
	return &csg2.Leaf{Polys: csg2.PolygonSet{Verts: verts, Paths: paths}, Role: role}
}
