// Package csg3 builds the 3D solid tree of spec.md §4.4 by folding SCAD
// transforms into each primitive's accumulated matrix, so downstream
// slicing never has to walk a transform stack: every leaf already carries
// the single Mat4 that maps its local coordinates into world space.
package csg3

import (
	"github.com/csgslice/csgslice/internal/geom"
)

// Node is any CSG3 tree node: a transformed primitive leaf or a Boolean
// combinator over children.
type Node interface {
	Location() geom.Location
}

type base struct {
	Loc geom.Location
}

func (b base) Location() geom.Location { return b.Loc }

// Sphere is a unit-local sphere of the given radius, to be sliced
// analytically against the world cutting plane pulled back into local
// space via Transform's row 2 (see internal/slice).
type Sphere struct {
	base
	Radius    float64
	Fn        int
	Transform geom.Mat4
}

// Cylinder is a local-frame cone frustum from z=0 (radius R1) to z=H
// (radius R2), axis along local +Z.
type Cylinder struct {
	base
	H, R1, R2 float64
	Fn        int
	Transform geom.Mat4
}

// Polyhedron is an explicit local-frame triangle/polygon mesh.
type Polyhedron struct {
	base
	Points    []geom.Vec3
	Faces     [][]int
	Transform geom.Mat4
}

// Path2D is one closed polygon loop of a 2D profile. No reorientation is
// applied: square and circle loops are wound CCW, polygon paths keep the
// point order of their source, and a mirror reverses the winding of the
// loops under it.
type Path2D struct {
	Points []geom.Vec2
}

// Extrusion sweeps a flat 2D profile (possibly multiple loops: an outer
// boundary plus holes) from local z=ZOffset to z=ZOffset+Height, optionally
// twisting and scaling the cross-section linearly over that span. ZOffset
// is -Height/2 for center=true, 0 otherwise (OpenSCAD's linear_extrude
// centers the extrusion on the local z=0 plane instead of starting there).
type Extrusion struct {
	base
	Profile   []Path2D
	Height    float64
	ZOffset   float64
	Twist     float64 // degrees, total twist applied over [0, Height]
	Scale     float64 // cross-section scale factor at z=Height
	Transform geom.Mat4
}

// --- combinators ---

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
