// Package triangulate decomposes each flat layer polygon (outer ring plus
// holes) into non-degenerate triangles (spec.md §4.7), using ear-clipping
// with hole-bridging: each hole is connected to the outer ring by the
// nearest vertex pair (chosen by distance alone, without a visibility
// test), turning the polygon-with-holes into a
// single simple polygon an ear-clip can consume directly.
package triangulate

import (
	"math"

	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/geom"
)

// Triangle is three indices into the layer's vertex array.
type Triangle [3]int

// Error reports that ear clipping exceeded its iteration guard. A polygon
// whose remaining vertices are all reflex or collinear is not an error:
// clipping stops there and returns the triangles found so far.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Layer triangulates every path group of a flat PolygonSet. Paths are
// first classified by signed area (positive/CCW = outer, negative/CW =
// hole) and holes are bridged into their enclosing outer ring.
func Layer(ps csg2.PolygonSet, eps geom.Epsilons) ([]Triangle, *Error) {
	type ring = struct {
		path []int
		area float64
	}
	var outers, holes []ring
	for _, path := range ps.Paths {
		a := signedArea(ps.Verts, path)
		if a >= 0 {
			outers = append(outers, ring{path, a})
		} else {
			holes = append(holes, ring{path, a})
		}
	}

	var tris []Triangle
	for _, o := range outers {
		merged := o.path
		for _, h := range holesInside(ps.Verts, o.path, holes) {
			merged = bridgeHole(ps.Verts, merged, h.path)
		}
		t, err := earClip(ps.Verts, merged, eps)
		if err != nil {
			return nil, err
		}
		tris = append(tris, t...)
	}
	return tris, nil
}

func signedArea(verts []csg2.Vertex, path []int) float64 {
	var sum float64
	n := len(path)
	for i := 0; i < n; i++ {
		a := verts[path[i]].Pos
		b := verts[path[(i+1)%n]].Pos
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func holesInside(verts []csg2.Vertex, outer []int, holes []struct {
	path []int
	area float64
}) []struct {
	path []int
	area float64
} {
	var out []struct {
		path []int
		area float64
	}
	for _, h := range holes {
		if len(h.path) == 0 {
			continue
		}
		if pointInRing(verts[h.path[0]].Pos, verts, outer) {
			out = append(out, h)
		}
	}
	return out
}

func pointInRing(p geom.Vec2, verts []csg2.Vertex, path []int) bool {
	inside := false
	n := len(path)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := verts[path[i]].Pos
		b := verts[path[j]].Pos
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// bridgeHole splices a hole ring into the outer ring at the pair of
// vertices (one on each ring) with the shortest connecting distance, the
// standard hole-bridging technique for reducing polygon-with-holes to a
// single simple boundary for ear-clipping.
func bridgeHole(verts []csg2.Vertex, outer, hole []int) []int {
	bestO, bestH := 0, 0
	bestD := math.Inf(1)
	for i, oi := range outer {
		for j, hj := range hole {
			d := verts[oi].Pos.Sub(verts[hj].Pos).Len()
			if d < bestD {
				bestD, bestO, bestH = d, i, j
			}
		}
	}
	var out []int
	out = append(out, outer[:bestO+1]...)
	rotatedHole := append(append([]int{}, hole[bestH:]...), hole[:bestH+1]...)
	out = append(out, rotatedHole...)
	out = append(out, outer[bestO:]...)
	return out
}

// earClip triangulates a simple polygon (no holes) by repeatedly removing
// a convex vertex whose ear triangle contains no other remaining vertex.
func earClip(verts []csg2.Vertex, path []int, eps geom.Epsilons) ([]Triangle, *Error) {
	idx := append([]int{}, path...)
	var tris []Triangle
	guard := 0
	for len(idx) > 3 {
		guard++
		if guard > len(path)*len(path)+16 {
			return nil, &Error{Msg: "ear clipping failed to converge"}
		}
		n := len(idx)
		clipped := false
		for i := 0; i < n; i++ {
			ip, ic, in := idx[(i-1+n)%n], idx[i], idx[(i+1)%n]
			a, b, c := verts[ip].Pos, verts[ic].Pos, verts[in].Pos
			cross := b.Sub(a).Cross(c.Sub(b))
			if cross <= eps.Sqr {
				continue // reflex or degenerate
			}
			earOK := true
			for _, other := range idx {
				if other == ip || other == ic || other == in {
					continue
				}
				if pointInTriangle(verts[other].Pos, a, b, c) {
					earOK = false
					break
				}
			}
			if !earOK {
				continue
			}
			area := cross / 2
			if area > eps.Sqr {
				tris = append(tris, Triangle{ip, ic, in})
			}
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break // remaining vertices are degenerate/collinear; stop gracefully
		}
	}
	if len(idx) == 3 {
		a, b, c := verts[idx[0]].Pos, verts[idx[1]].Pos, verts[idx[2]].Pos
		if math.Abs(b.Sub(a).Cross(c.Sub(b))/2) > eps.Sqr {
			tris = append(tris, Triangle{idx[0], idx[1], idx[2]})
		}
	}
	return tris, nil
}

func pointInTriangle(p, a, b, c geom.Vec2) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(p1, p2, p3 geom.Vec2) float64 {
	return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
}
