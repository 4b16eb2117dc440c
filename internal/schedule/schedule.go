// Package schedule computes the stack of horizontal cutting planes for a
// CSG3 tree (spec.md §4.4) and hands out layer indices to the worker pool
// via an atomic dispenser -- the seam where the per-layer data-parallel
// region (§5) begins.
package schedule

import (
	"math"
	"sync/atomic"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/geom"
)

// Range is the (z_min, z_step, count) triple describing the layer stack.
type Range struct {
	ZMin  float64
	ZStep float64
	Count int
}

// Z returns the z-plane for layer i.
func (r Range) Z(i int) float64 {
	return r.ZMin + float64(i)*r.ZStep
}

// BBox is an axis-aligned world-space bounding box.
type BBox struct {
	Min, Max geom.Vec3
}

func emptyBBox() BBox {
	inf := math.Inf(1)
	return BBox{Min: geom.Vec3{X: inf, Y: inf, Z: inf}, Max: geom.Vec3{X: -inf, Y: -inf, Z: -inf}}
}

func (b BBox) extend(p geom.Vec3) BBox {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
	return b
}

// BoundingBox walks the CSG3 tree and computes its world-space bounding box.
// countSubtracted controls whether geometry under a Difference's
// subtrahends (children after the first) contributes to the box -- spec.md
// §4.4's "two modes: counting subtracted geometry, or ignoring it".
func BoundingBox(nodes []csg3.Node, countSubtracted bool) BBox {
	b := emptyBBox()
	for _, n := range nodes {
		b = boundNode(n, countSubtracted, b)
	}
	return b
}

func boundNode(n csg3.Node, countSubtracted bool, b BBox) BBox {
	switch v := n.(type) {
	case *csg3.Sphere:
		return boundSphere(v, b)
	case *csg3.Cylinder:
		return boundCylinder(v, b)
	case *csg3.Polyhedron:
		return boundPolyhedron(v, b)
	case *csg3.Extrusion:
		return boundExtrusion(v, b)
	case *csg3.Union:
		for _, c := range v.Children {
			b = boundNode(c, countSubtracted, b)
		}
		return b
	case *csg3.Intersection:
		for _, c := range v.Children {
			b = boundNode(c, countSubtracted, b)
		}
		return b
	case *csg3.Difference:
		if len(v.Children) > 0 {
			b = boundNode(v.Children[0], countSubtracted, b)
		}
		if countSubtracted {
			for _, c := range v.Children[1:] {
				b = boundNode(c, countSubtracted, b)
			}
		}
		return b
	default:
		return b
	}
}

func boundSphere(s *csg3.Sphere, b BBox) BBox {
	r := s.Radius
	corners := []geom.Vec3{
		{X: -r, Y: -r, Z: -r}, {X: r, Y: -r, Z: -r},
		{X: -r, Y: r, Z: -r}, {X: r, Y: r, Z: -r},
		{X: -r, Y: -r, Z: r}, {X: r, Y: -r, Z: r},
		{X: -r, Y: r, Z: r}, {X: r, Y: r, Z: r},
	}
	for _, c := range corners {
		b = b.extend(s.Transform.Apply(c))
	}
	return b
}

func boundCylinder(c *csg3.Cylinder, b BBox) BBox {
	maxR := c.R1
	if c.R2 > maxR {
		maxR = c.R2
	}
	corners := []geom.Vec3{
		{X: -maxR, Y: -maxR, Z: 0}, {X: maxR, Y: -maxR, Z: 0},
		{X: -maxR, Y: maxR, Z: 0}, {X: maxR, Y: maxR, Z: 0},
		{X: -maxR, Y: -maxR, Z: c.H}, {X: maxR, Y: -maxR, Z: c.H},
		{X: -maxR, Y: maxR, Z: c.H}, {X: maxR, Y: maxR, Z: c.H},
	}
	for _, p := range corners {
		b = b.extend(c.Transform.Apply(p))
	}
	return b
}

func boundPolyhedron(p *csg3.Polyhedron, b BBox) BBox {
	for _, v := range p.Points {
		b = b.extend(p.Transform.Apply(v))
	}
	return b
}

func boundExtrusion(e *csg3.Extrusion, b BBox) BBox {
	for _, path := range e.Profile {
		for _, p := range path.Points {
			b = b.extend(e.Transform.Apply(geom.Vec3{X: p.X, Y: p.Y, Z: e.ZOffset}))
			b = b.extend(e.Transform.Apply(geom.Vec3{X: p.X, Y: p.Y, Z: e.ZOffset + e.Height}))
		}
	}
	return b
}

// Compute derives the layer Range from a bounding box and configuration,
// honouring user overrides first (spec.md §4.4). z_min/z_max overrides
// replace the bounding box's own extent, not the first sampled plane: the
// first layer always sits at effectiveMin+z_step/2, centred one half-step
// above the (possibly overridden) lower bound, exactly as spec.md §8
// scenario 1 requires (z_step=5, z_min=0, z_max=10 over a 10-unit cube
// yields layers at {2.5, 7.5}, not {0, 5, 10}).
func Compute(b BBox, cfg config.Config) Range {
	zStep := cfg.Range.ZStep
	if !cfg.Range.HasZStep || zStep <= 0 {
		zStep = 1
	}

	effMin := b.Min.Z
	if cfg.Range.HasZMin {
		effMin = cfg.Range.ZMin
	}
	effMax := b.Max.Z
	if cfg.Range.HasZMax {
		effMax = cfg.Range.ZMax
	}

	zMin := effMin + zStep/2

	count := 1
	if effMax > zMin {
		count = int(math.Floor((effMax-zMin)/zStep)) + 1
	}
	if count < 1 {
		count = 1
	}

	return Range{ZMin: zMin, ZStep: zStep, Count: count}
}

// Dispenser is the atomic "next layer index" seam of spec.md §5: each
// worker calls Next in a loop until it returns ok=false.
type Dispenser struct {
	next  atomic.Int64
	count int
}

func NewDispenser(count int) *Dispenser {
	return &Dispenser{count: count}
}

// Next returns the next unclaimed layer index, or ok=false once all
// Count layers have been dispensed.
func (d *Dispenser) Next() (idx int, ok bool) {
	i := d.next.Add(1) - 1
	if int(i) >= d.count {
		return 0, false
	}
	return int(i), true
}
