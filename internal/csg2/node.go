// Package csg2 holds the per-layer polygon-operand tree of spec.md §4.5:
// isomorphic to CSG3's combinator shape, but each leaf carries a materialised
// PolygonSet for the layer currently being processed rather than a 3D
// primitive.
package csg2

import "github.com/csgslice/csgslice/internal/geom"

// Vertex is one point of a polygon set, carrying the source location of
// the geometry that produced it (for diagnostics on later Boolean or
// triangulation failures).
type Vertex struct {
	Pos geom.Vec2
	Loc geom.Location
}

// PolygonSet is a vertex array plus a set of closed paths (index lists
// into Verts). Outer rings are wound CCW, holes CW.
type PolygonSet struct {
	Verts []Vertex
	Paths [][]int
}

// Role distinguishes whether a leaf's polygon set contributes positively
// (it is an operand of a union/intersection, or the minuend of a
// difference) or negatively (a subtrahend) -- inherited from its position
// in the CSG tree per spec.md §4.5.
type Role int

const (
	RoleAdditive Role = iota
	RoleSubtractive
)

// Node is any CSG2 tree node: a materialised-leaf polygon operand or a
// Boolean combinator over children.
type Node interface {
	Location() geom.Location
}

type base struct {
	Loc geom.Location
}

func (b base) Location() geom.Location { return b.Loc }

// Leaf is one primitive's polygon set for the current layer.
type Leaf struct {
	base
	Polys PolygonSet
	Role  Role
}

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
