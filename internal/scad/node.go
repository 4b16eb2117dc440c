// Package scad lowers a SYN tree into the typed call tree of spec.md §3/
// §4.2: functor names resolved to a fixed tag set, arguments bound to
// named parameters with keyword-override-positional semantics, and
// $fn/$fa/$fs resolved against the lexically scoped environment at
// lowering time. Node is a closed sum type; csg3 switches on concrete Go
// type to fold it into the 3D solid tree.
package scad

import "github.com/csgslice/csgslice/internal/geom"

// Node is any SCAD tree node.
type Node interface {
	Location() geom.Location
}

type base struct {
	Loc geom.Location
}

func (b base) Location() geom.Location { return b.Loc }

// --- 3D primitives ---

type Cube struct {
	base
	Size   geom.Vec3
	Center bool
}

type Sphere struct {
	base
	Radius float64
	Fn     int
}

type Cylinder struct {
	base
	H      float64
	R1, R2 float64
	Center bool
	Fn     int
}

type Polyhedron struct {
	base
	Points []geom.Vec3
	Faces  [][]int
}

// --- 2D primitives (legal only inside a linear_extrude profile; anywhere
// else internal/csg3's Outside2DIn3D policy applies) ---

type Square struct {
	base
	Size   geom.Vec2
	Center bool
}

type Circle struct {
	base
	Radius float64
	Fn     int
}

type Polygon struct {
	base
	Points []geom.Vec2
	Paths  [][]int // nil => single path 0..len(Points)-1
}

// --- operators (combinators) ---

type Union struct {
	base
	Children []Node
}

type Difference struct {
	base
	Children []Node
}

type Intersection struct {
	base
	Children []Node
}

type Group struct {
	base
	Children []Node
}

// --- transforms ---

type Translate struct {
	base
	V        geom.Vec3
	Children []Node
}

type Rotate struct {
	base
	M        geom.Mat4 // pre-resolved rotation, Euler or axis-angle
	Children []Node
}

type Scale struct {
	base
	V        geom.Vec3
	Children []Node
}

type Multmatrix struct {
	base
	M        geom.Mat4
	Children []Node
}

type Mirror struct {
	base
	V        geom.Vec3
	Children []Node
}

type LinearExtrude struct {
	base
	Height float64
	Center bool
	Twist  float64 // degrees, total rotation applied over the full height
	Scale  float64 // top cross-section scale factor relative to the base
	Children []Node // must lower to a single 2D profile (possibly a union of 2D children)
}
