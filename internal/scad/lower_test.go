package scad

import (
	"testing"

	"math"

	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/syn"
	"github.com/csgslice/csgslice/internal/synlex"
)

func lowerSource(t *testing.T, src string, opts Options) []Node {
	t.Helper()
	sc := synlex.NewScanner(src)
	toks, lexErr := sc.ScanTokens()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	body, perr := syn.NewParser(toks).Parse()
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	nodes, err := Lower(body, opts)
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}
	return nodes
}

func TestLowerCubeDefaults(t *testing.T) {
	nodes := lowerSource(t, `cube();`, Options{})
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	c, ok := nodes[0].(*Cube)
	if !ok {
		t.Fatalf("expected *Cube, got %#v", nodes[0])
	}
	if c.Size.X != 1 || c.Size.Y != 1 || c.Size.Z != 1 || c.Center {
		t.Errorf("unexpected cube defaults: %#v", c)
	}
}

func TestLowerSphereFnInheritance(t *testing.T) {
	nodes := lowerSource(t, `translate([0,0,0], $fn=6) sphere(r=10);`, Options{})
	tr, ok := nodes[0].(*Translate)
	if !ok {
		t.Fatalf("expected *Translate, got %#v", nodes[0])
	}
	sp, ok := tr.Children[0].(*Sphere)
	if !ok {
		t.Fatalf("expected *Sphere, got %#v", tr.Children[0])
	}
	if sp.Fn != 6 {
		t.Errorf("expected resolved $fn=6, got %d", sp.Fn)
	}
}

func TestLowerChildFnZeroInheritsParent(t *testing.T) {
	// spec.md §9: a child's own $fn=0 means "unset", so it should inherit
	// the parent scope's $fn rather than falling back to $fa/$fs.
	nodes := lowerSource(t, `union($fn=20) { sphere(r=10, $fn=0); }`, Options{})
	u, ok := nodes[0].(*Union)
	if !ok {
		t.Fatalf("expected *Union, got %#v", nodes[0])
	}
	sp, ok := u.Children[0].(*Sphere)
	if !ok {
		t.Fatalf("expected *Sphere, got %#v", u.Children[0])
	}
	if sp.Fn != 20 {
		t.Errorf("expected inherited $fn=20, got %d", sp.Fn)
	}
}

func TestLowerMaxFnCap(t *testing.T) {
	nodes := lowerSource(t, `sphere(r=10, $fn=500);`, Options{MaxFn: 32})
	sp := nodes[0].(*Sphere)
	if sp.Fn != 32 {
		t.Errorf("expected $fn capped to 32, got %d", sp.Fn)
	}
}

func TestLowerUnknownFunctorIsFatal(t *testing.T) {
	sc := synlex.NewScanner(`frobnicate(1);`)
	toks, _ := sc.ScanTokens()
	body, _ := syn.NewParser(toks).Parse()
	_, err := Lower(body, Options{})
	if err == nil {
		t.Fatal("expected a fatal error for an unknown functor")
	}
}

func TestLowerUnknownKeywordArgIsFatal(t *testing.T) {
	sc := synlex.NewScanner(`cube(bogus=1);`)
	toks, _ := sc.ScanTokens()
	body, _ := syn.NewParser(toks).Parse()
	_, err := Lower(body, Options{})
	if err == nil {
		t.Fatal("expected a fatal error for an unknown keyword argument")
	}
}

func TestLowerRotateEuler(t *testing.T) {
	nodes := lowerSource(t, `rotate([0,0,90]) cube(1);`, Options{})
	r, ok := nodes[0].(*Rotate)
	if !ok {
		t.Fatalf("expected *Rotate, got %#v", nodes[0])
	}
	p := r.M.Apply(geom.Vec3{X: 1})
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-1) > 1e-9 {
		t.Errorf("expected a 90deg Z rotation of (1,0,0) to land near (0,1,0), got %#v", p)
	}
}

func TestLowerRotateAxisAngle(t *testing.T) {
	nodes := lowerSource(t, `rotate(a=90, v=[0,0,1]) cube(1);`, Options{})
	if _, ok := nodes[0].(*Rotate); !ok {
		t.Fatalf("expected *Rotate, got %#v", nodes[0])
	}
}

func TestLowerDifferenceChildren(t *testing.T) {
	nodes := lowerSource(t, `difference() { cube(10); sphere(r=5); }`, Options{})
	d, ok := nodes[0].(*Difference)
	if !ok {
		t.Fatalf("expected *Difference, got %#v", nodes[0])
	}
	if len(d.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(d.Children))
	}
}

func TestPrintRoundTrip(t *testing.T) {
	nodes := lowerSource(t, `union() { cube(10); translate([5,0,0]) sphere(r=5,$fn=8); }`, Options{})
	out := NewPrinter().Print(nodes)
	if out == "" {
		t.Fatal("expected non-empty printed output")
	}
	again := NewPrinter().Print(lowerSource(t, out, Options{}))
	if again != out {
		t.Errorf("print -> lower -> print is not a fixed point:\nfirst:\n%s\nsecond:\n%s", out, again)
	}
}
