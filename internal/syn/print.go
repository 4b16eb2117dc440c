package syn

import (
	"fmt"
	"strconv"
	"strings"
)

// Printer renders a SYN tree back to source text. It exists to satisfy the
// round-trip law of spec.md §8 ("parsing then pretty-printing SYN then
// reparsing yields a SYN tree structurally equal to the first"), and is
// grounded on the teacher's internal/formatter.Formatter: an indent-
// tracking strings.Builder walked recursively over a tree of tagged nodes.
type Printer struct {
	indent int
	out    strings.Builder
}

// NewPrinter returns a ready-to-use Printer.
func NewPrinter() *Printer { return &Printer{} }

// Print renders a whole body (top-level call list).
func (p *Printer) Print(body []*Call) string {
	p.out.Reset()
	p.indent = 0
	p.printBody(body)
	return p.out.String()
}

func (p *Printer) printBody(body []*Call) {
	for _, c := range body {
		p.writeIndent()
		p.printCall(c)
	}
}

func (p *Printer) printCall(c *Call) {
	for _, m := range c.Mods {
		p.out.WriteByte(byte(m))
	}
	if c.Functor == "" {
		p.printBlock(c.Children)
		return
	}
	p.out.WriteString(c.Functor)
	p.out.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			p.out.WriteString(", ")
		}
		if a.Name != "" {
			p.out.WriteString(a.Name)
			p.out.WriteString(" = ")
		}
		p.printValue(a.Value)
	}
	p.out.WriteByte(')')
	if len(c.Children) == 0 {
		p.out.WriteString(";\n")
		return
	}
	// A bare `tail := call` child (no source braces) round-trips just as
	// well wrapped in explicit braces, which is what this printer always
	// emits regardless of how the child list was originally spelled.
	p.out.WriteString(" ")
	p.printBlock(c.Children)
}

func (p *Printer) printBlock(body []*Call) {
	p.out.WriteString("{\n")
	p.indent++
	p.printBody(body)
	p.indent--
	p.writeIndent()
	p.out.WriteString("}\n")
}

func (p *Printer) printValue(n Node) {
	switch v := n.(type) {
	case *IntLit:
		p.out.WriteString(strconv.FormatInt(v.Val, 10))
	case *FloatLit:
		p.out.WriteString(strconv.FormatFloat(v.Val, 'g', -1, 64))
	case *StringLit:
		p.out.WriteString(strconv.Quote(v.Val))
	case *IdentLit:
		p.out.WriteString(v.Name)
	case *RangeLit:
		p.out.WriteByte('[')
		p.printValue(v.From)
		p.out.WriteByte(':')
		if v.Step != nil {
			p.printValue(v.Step)
			p.out.WriteByte(':')
		}
		p.printValue(v.To)
		p.out.WriteByte(']')
	case *ArrayLit:
		p.out.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				p.out.WriteString(", ")
			}
			p.printValue(e)
		}
		p.out.WriteByte(']')
	default:
		panic(fmt.Sprintf("syn: unhandled value node %T", n))
	}
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.out.WriteString("    ")
	}
}
