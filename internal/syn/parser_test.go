package syn

import (
	"testing"

	"github.com/csgslice/csgslice/internal/synlex"
)

func parseSource(t *testing.T, src string) []*Call {
	t.Helper()
	sc := synlex.NewScanner(src)
	toks, lexErr := sc.ScanTokens()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	body, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return body
}

func TestParseCube(t *testing.T) {
	body := parseSource(t, `cube(10);`)
	if len(body) != 1 {
		t.Fatalf("expected 1 call, got %d", len(body))
	}
	if body[0].Functor != "cube" {
		t.Errorf("expected functor cube, got %q", body[0].Functor)
	}
	if len(body[0].Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(body[0].Args))
	}
	lit, ok := body[0].Args[0].Value.(*IntLit)
	if !ok || lit.Val != 10 {
		t.Errorf("expected int literal 10, got %#v", body[0].Args[0].Value)
	}
}

func TestParseDifferenceWithTranslate(t *testing.T) {
	body := parseSource(t, `difference(){ cube(10); translate([5,0,0]) cube(10); }`)
	if len(body) != 1 || body[0].Functor != "difference" {
		t.Fatalf("unexpected top level: %#v", body)
	}
	children := body[0].Children
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	translate := children[1]
	if translate.Functor != "translate" {
		t.Fatalf("expected translate, got %q", translate.Functor)
	}
	if len(translate.Children) != 1 || translate.Children[0].Functor != "cube" {
		t.Fatalf("expected translate's implicit child to be cube, got %#v", translate.Children)
	}
}

func TestParseModifiersAndKeywordArgs(t *testing.T) {
	body := parseSource(t, `#sphere(r=10, $fn=8);`)
	call := body[0]
	if call.Functor != "sphere" {
		t.Fatalf("unexpected functor %q", call.Functor)
	}
	if len(call.Mods) != 1 || call.Mods[0] != ModHighlight {
		t.Fatalf("expected a single '#' modifier, got %#v", call.Mods)
	}
	if call.Args[0].Name != "r" || call.Args[1].Name != "$fn" {
		t.Fatalf("unexpected args %#v", call.Args)
	}
}

func TestParseRangeAndArray(t *testing.T) {
	body := parseSource(t, `polygon(points=[[0,0],[1,0],[1,1]], paths=[0:2]);`)
	arr, ok := body[0].Args[0].Value.(*ArrayLit)
	if !ok || len(arr.Elems) != 3 {
		t.Fatalf("expected 3-element array, got %#v", body[0].Args[0].Value)
	}
	rng, ok := body[0].Args[1].Value.(*RangeLit)
	if !ok || rng.Step != nil {
		t.Fatalf("expected a two-element range, got %#v", body[0].Args[1].Value)
	}
}

func TestAbuttedTokensIsLexError(t *testing.T) {
	sc := synlex.NewScanner(`cube(9.9foo);`)
	_, err := sc.ScanTokens()
	if err == nil {
		t.Fatal("expected a lex error for abutted tokens")
	}
	if err.Kind != "abutted-tokens" {
		t.Errorf("expected abutted-tokens kind, got %s", err.Kind)
	}
}

func TestRoundTripPrintReparse(t *testing.T) {
	src := `union() {
    cube(10);
    translate([5, 0, 0]) {
        sphere(r = 10, $fn = 8);
    }
}`
	first := parseSource(t, src)
	printed := NewPrinter().Print(first)
	second := parseSource(t, printed)
	if !equalBodies(first, second) {
		t.Fatalf("round trip mismatch:\nfirst=%#v\nsecond=%#v", first, second)
	}
}

func equalBodies(a, b []*Call) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalCalls(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalCalls(a, b *Call) bool {
	if a.Functor != b.Functor || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i].Name != b.Args[i].Name || !equalValues(a.Args[i].Value, b.Args[i].Value) {
			return false
		}
	}
	return equalBodies(a.Children, b.Children)
}

func equalValues(a, b Node) bool {
	switch av := a.(type) {
	case *IntLit:
		bv, ok := b.(*IntLit)
		return ok && av.Val == bv.Val
	case *FloatLit:
		bv, ok := b.(*FloatLit)
		return ok && av.Val == bv.Val
	case *StringLit:
		bv, ok := b.(*StringLit)
		return ok && av.Val == bv.Val
	case *IdentLit:
		bv, ok := b.(*IdentLit)
		return ok && av.Name == bv.Name
	case *ArrayLit:
		bv, ok := b.(*ArrayLit)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !equalValues(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *RangeLit:
		bv, ok := b.(*RangeLit)
		if !ok {
			return false
		}
		stepEq := (av.Step == nil) == (bv.Step == nil)
		if av.Step != nil && bv.Step != nil {
			stepEq = equalValues(av.Step, bv.Step)
		}
		return stepEq && equalValues(av.From, bv.From) && equalValues(av.To, bv.To)
	default:
		return false
	}
}
