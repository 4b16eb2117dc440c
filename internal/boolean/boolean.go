// Package boolean implements the per-layer CSG2 Boolean evaluator of
// spec.md §4.6: it reduces a layer's combinator tree of polygon operands
// to one flat, simple polygon set.
//
// Algorithm (the spec frames this component as a contract, not a
// prescription): operands are combined pairwise -- union/intersection
// fold their children left to right, difference subtracts the union of
// its subtrahends from its minuend -- rather than resolved in one
// simultaneous sweep over `max_simultaneous` operands at once. Each pairwise
// step builds the planar arrangement of both operands' boundary edges
// (every edge split at its intersections with the other operand's edges),
// classifies every resulting sub-edge by an even-odd point-membership test
// of the two operands on either side of it, keeps the sub-edges whose two
// sides disagree on result-membership, and stitches those into closed
// loops. This reduces staging to repeated 2-operand composition, which is
// a deliberate simplification of the cap-based simultaneous-sweep
// contract: correctness is preserved (union and intersection are
// associative). The evaluator does not read config.Config.MaxSimultaneous:
// every step takes exactly two operands, and no batching or staging by
// that setting takes place. Documented as a scope line, not an oversight.
package boolean

import (
	"math"
	"sort"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/geom"
)

// Error is a BooleanError (spec.md §7): the evaluator could not robustly
// resolve an intersection within the configured epsilons.
type Error struct {
	Msg string
	Loc geom.Location
}

func (e *Error) Error() string { return e.Msg }

type op int

const (
	opUnion op = iota
	opIntersection
	opDifference
)

// loop is one closed ring in working representation: points only, no
// implicit closing edge stored.
type loop []geom.Vec2

// operand is one side's even-odd region: the union of all its loops'
// interiors under the even-odd rule, which is exactly what a PolygonSet
// with (CCW outer, CW hole) loops already represents.
type operand struct {
	loops []loop
}

// Evaluate reduces a CSG2 tree to one flat PolygonSet for the layer.
func Evaluate(n csg2.Node, cfg config.Config) (csg2.PolygonSet, *Error) {
	op, err := evalNode(n, cfg)
	if err != nil {
		return csg2.PolygonSet{}, err
	}
	return toPolygonSet(op, cfg), nil
}

// SymmetricDifference computes (a \ b) union (b \ a) between two already-
// flat polygon sets, for internal/layerdiff's adjacent-layer XOR pass.
func SymmetricDifference(a, b csg2.PolygonSet, cfg config.Config) (csg2.PolygonSet, error) {
	oa, ob := fromPolygonSet(a), fromPolygonSet(b)
	aMinusB, err := combine(opDifference, oa, ob, cfg)
	if err != nil {
		return csg2.PolygonSet{}, err
	}
	bMinusA, err := combine(opDifference, ob, oa, cfg)
	if err != nil {
		return csg2.PolygonSet{}, err
	}
	u, err := combine(opUnion, aMinusB, bMinusA, cfg)
	if err != nil {
		return csg2.PolygonSet{}, err
	}
	return toPolygonSet(u, cfg), nil
}

func evalNode(n csg2.Node, cfg config.Config) (operand, *Error) {
	switch v := n.(type) {
	case *csg2.Leaf:
		return fromPolygonSet(v.Polys), nil

	case *csg2.Union:
		return foldChildren(v.Children, opUnion, cfg)

	case *csg2.Intersection:
		return foldChildren(v.Children, opIntersection, cfg)

	case *csg2.Difference:
		if len(v.Children) == 0 {
			return operand{}, nil
		}
		acc, err := evalNode(v.Children[0], cfg)
		if err != nil {
			return operand{}, err
		}
		if len(v.Children) > 1 {
			sub, err := foldChildren(v.Children[1:], opUnion, cfg)
			if err != nil {
				return operand{}, err
			}
			acc, err = combine(opDifference, acc, sub, cfg)
			if err != nil {
				return operand{}, err
			}
		}
		return acc, nil

	default:
		return operand{}, &Error{Msg: "unhandled CSG2 node in boolean evaluator"}
	}
}

func foldChildren(children []csg2.Node, o op, cfg config.Config) (operand, *Error) {
	if len(children) == 0 {
		return operand{}, nil
	}
	acc, err := evalNode(children[0], cfg)
	if err != nil {
		return operand{}, err
	}
	for _, c := range children[1:] {
		next, err := evalNode(c, cfg)
		if err != nil {
			return operand{}, err
		}
		acc, err = combine(o, acc, next, cfg)
		if err != nil {
			return operand{}, err
		}
	}
	return acc, nil
}

func fromPolygonSet(ps csg2.PolygonSet) operand {
	var out operand
	for _, path := range ps.Paths {
		if len(path) < 3 {
			continue
		}
		l := make(loop, len(path))
		for i, idx := range path {
			l[i] = ps.Verts[idx].Pos
		}
		out.loops = append(out.loops, l)
	}
	return out
}

// combine composes two operands under op, via planar-arrangement overlay.
func combine(o op, a, b operand, cfg config.Config) (operand, *Error) {
	eps := cfg.Eps
	if len(a.loops) == 0 && len(b.loops) == 0 {
		return operand{}, nil
	}

	predicate := func(inA, inB bool) bool {
		switch o {
		case opUnion:
			return inA || inB
		case opIntersection:
			return inA && inB
		default: // opDifference: a \ b
			return inA && !inB
		}
	}

	var resultSegs [][2]geom.Vec2
	// add keeps one copy of a directed sub-edge: coincident edges of equal
	// orientation from both operands contribute a single boundary segment.
	add := func(s, e geom.Vec2) {
		for _, r := range resultSegs {
			if eps.EqualVec2(r[0], s) && eps.EqualVec2(r[1], e) {
				return
			}
		}
		resultSegs = append(resultSegs, [2]geom.Vec2{s, e})
	}

	collect := func(owner operand) {
		for _, l := range owner.loops {
			n := len(l)
			for i := 0; i < n; i++ {
				p, q := l[i], l[(i+1)%n]
				pts := splitEdge(p, q, a, b, eps)
				for i := 0; i < len(pts)-1; i++ {
					s, e := pts[i], pts[i+1]
					mid := s.Add(e).Scale(0.5)
					nrm := normal(s, e)
					left := mid.Add(nrm.Scale(eps.Pt * 4))
					right := mid.Sub(nrm.Scale(eps.Pt * 4))

					leftIn := predicate(pointInLoops(left, a.loops), pointInLoops(left, b.loops))
					rightIn := predicate(pointInLoops(right, a.loops), pointInLoops(right, b.loops))
					if leftIn == rightIn {
						continue
					}
					if leftIn {
						add(s, e)
					} else {
						add(e, s)
					}
				}
			}
		}
	}

	collect(a)
	collect(b)

	loops := stitchSegments(resultSegs, eps)
	if cfg.SkipEmptyPaths {
		loops = dropZeroArea(loops, eps)
	}
	return operand{loops: loops}, nil
}

func normal(p, q geom.Vec2) geom.Vec2 {
	d := q.Sub(p)
	l := d.Len()
	if l == 0 {
		return geom.Vec2{}
	}
	return geom.Vec2{X: -d.Y / l, Y: d.X / l}
}

// splitEdge returns the ordered list of points along edge p-q (inclusive
// of endpoints) split at every intersection with any edge of a or b.
func splitEdge(p, q geom.Vec2, a, b operand, eps geom.Epsilons) []geom.Vec2 {
	ts := []float64{0, 1}
	addCrossings := func(o operand) {
		for _, l := range o.loops {
			n := len(l)
			for i := 0; i < n; i++ {
				r, s := l[i], l[(i+1)%n]
				if t, ok := segIntersectParam(p, q, r, s, eps); ok {
					ts = append(ts, t)
				}
			}
		}
	}
	addCrossings(a)
	addCrossings(b)
	sort.Float64s(ts)

	var out []geom.Vec2
	var last float64 = -1
	for _, t := range ts {
		if t < -eps.Eq || t > 1+eps.Eq {
			continue
		}
		if t-last < 1e-9 {
			last = t
			continue
		}
		last = t
		out = append(out, geom.Lerp2(p, q, clamp01(t)))
	}
	if len(out) < 2 {
		return []geom.Vec2{p, q}
	}
	return out
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// segIntersectParam returns the parameter t along p-q where it crosses
// segment r-s, if they properly intersect (including touching endpoints).
func segIntersectParam(p, q, r, s geom.Vec2, eps geom.Epsilons) (float64, bool) {
	d1 := q.Sub(p)
	d2 := s.Sub(r)
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-15 {
		return 0, false
	}
	t := r.Sub(p).Cross(d2) / denom
	u := r.Sub(p).Cross(d1) / denom
	if t < -eps.Eq || t > 1+eps.Eq || u < -eps.Eq || u > 1+eps.Eq {
		return 0, false
	}
	return t, true
}

// pointInLoops tests even-odd membership of p across all loops (so holes
// subtract from their enclosing outer ring automatically).
func pointInLoops(p geom.Vec2, loops []loop) bool {
	inside := false
	for _, l := range loops {
		if rayCross(p, l) {
			inside = !inside
		}
	}
	return inside
}

func rayCross(p geom.Vec2, l loop) bool {
	inside := false
	n := len(l)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := l[i], l[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// stitchSegments joins a bag of directed segments into closed loops by
// matching each segment's head to the next segment's tail within eq
// epsilon.
func stitchSegments(segs [][2]geom.Vec2, eps geom.Epsilons) []loop {
	used := make([]bool, len(segs))
	var loops []loop
	for start := 0; start < len(segs); start++ {
		if used[start] {
			continue
		}
		used[start] = true
		l := loop{segs[start][0]}
		tail := segs[start][1]
		for {
			if eps.EqualVec2(tail, l[0]) {
				break
			}
			found := -1
			for i, s := range segs {
				if used[i] {
					continue
				}
				if eps.EqualVec2(tail, s[0]) {
					found = i
					break
				}
			}
			if found < 0 {
				break
			}
			used[found] = true
			l = append(l, tail)
			tail = segs[found][1]
		}
		if len(l) >= 3 {
			loops = append(loops, l)
		}
	}
	return loops
}

func signedArea(l loop) float64 {
	var sum float64
	n := len(l)
	for i := 0; i < n; i++ {
		a, b := l[i], l[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func dropZeroArea(loops []loop, eps geom.Epsilons) []loop {
	var out []loop
	for _, l := range loops {
		if math.Abs(signedArea(l)) > eps.Sqr {
			out = append(out, l)
		}
	}
	return out
}

// toPolygonSet snaps vertices to the pt grid, fuses near-duplicates within
// eq, and keeps each loop's winding as it comes in.
func toPolygonSet(o operand, cfg config.Config) csg2.PolygonSet {
	eps := cfg.Eps
	var ps csg2.PolygonSet
	for _, l := range o.loops {
		// No reorientation here. Loops from combine have the result's
		// interior on their left (outer CCW, hole CW); the loops of a lone
		// leaf keep the winding its slicer produced.
		path := make([]int, 0, len(l))
		for _, p := range l {
			sp := eps.SnapVec2(p)
			idx := findOrAddVertex(&ps, sp, eps)
			path = append(path, idx)
		}
		if cfg.DropCollinear {
			path = dropCollinear(ps.Verts, path, eps)
		}
		if len(path) >= 3 {
			ps.Paths = append(ps.Paths, path)
		}
	}
	return ps
}

func findOrAddVertex(ps *csg2.PolygonSet, p geom.Vec2, eps geom.Epsilons) int {
	for i := len(ps.Verts) - 1; i >= 0; i-- {
		if eps.EqualVec2(ps.Verts[i].Pos, p) {
			return i
		}
	}
	ps.Verts = append(ps.Verts, csg2.Vertex{Pos: p})
	return len(ps.Verts) - 1
}

func dropCollinear(verts []csg2.Vertex, path []int, eps geom.Epsilons) []int {
	if len(path) < 3 {
		return path
	}
	var out []int
	n := len(path)
	for i := 0; i < n; i++ {
		prev := verts[path[(i-1+n)%n]].Pos
		cur := verts[path[i]].Pos
		next := verts[path[(i+1)%n]].Pos
		cross := cur.Sub(prev).Cross(next.Sub(cur))
		if math.Abs(cross) > eps.Sqr {
			out = append(out, path[i])
		}
	}
	if len(out) < 3 {
		return path
	}
	return out
}
