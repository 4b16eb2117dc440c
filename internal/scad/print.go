package scad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/csgslice/csgslice/internal/geom"
)

// Printer renders a SCAD tree back to the modelling-language surface syntax,
// used by the SCAD round-trip law (parse -> lower -> print -> lex -> parse
// -> lower again should be a fixed point) and by debug dumps.
type Printer struct {
	indent int
	out    strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

func (p *Printer) Print(body []Node) string {
	p.indent = 0
	p.out.Reset()
	p.printBody(body)
	return p.out.String()
}

func (p *Printer) printBody(body []Node) {
	for _, n := range body {
		p.printNode(n)
	}
}

func (p *Printer) writeIndent() {
	p.out.WriteString(strings.Repeat("  ", p.indent))
}

func (p *Printer) printNode(n Node) {
	p.writeIndent()
	switch v := n.(type) {
	case *Cube:
		fmt.Fprintf(&p.out, "cube(size=[%s,%s,%s], center=%v);\n", f(v.Size.X), f(v.Size.Y), f(v.Size.Z), v.Center)
	case *Sphere:
		fmt.Fprintf(&p.out, "sphere(r=%s, $fn=%d);\n", f(v.Radius), v.Fn)
	case *Cylinder:
		fmt.Fprintf(&p.out, "cylinder(h=%s, r1=%s, r2=%s, center=%v, $fn=%d);\n", f(v.H), f(v.R1), f(v.R2), v.Center, v.Fn)
	case *Polyhedron:
		fmt.Fprintf(&p.out, "polyhedron(points=%s, faces=%s);\n", printPointsVec3(v.Points), printFaces(v.Faces))
	case *Square:
		fmt.Fprintf(&p.out, "square(size=[%s,%s], center=%v);\n", f(v.Size.X), f(v.Size.Y), v.Center)
	case *Circle:
		fmt.Fprintf(&p.out, "circle(r=%s, $fn=%d);\n", f(v.Radius), v.Fn)
	case *Polygon:
		if v.Paths == nil {
			fmt.Fprintf(&p.out, "polygon(points=%s);\n", printPointsVec2(v.Points))
		} else {
			fmt.Fprintf(&p.out, "polygon(points=%s, paths=%s);\n", printPointsVec2(v.Points), printFaces(v.Paths))
		}
	case *Union:
		p.printBlock("union()", v.Children)
	case *Difference:
		p.printBlock("difference()", v.Children)
	case *Intersection:
		p.printBlock("intersection()", v.Children)
	case *Group:
		p.printBlock("group()", v.Children)
	case *Translate:
		p.printBlock(fmt.Sprintf("translate(v=[%s,%s,%s])", f(v.V.X), f(v.V.Y), f(v.V.Z)), v.Children)
	case *Rotate:
		p.printBlock(fmt.Sprintf("multmatrix(m=%s)", printMat4(v.M)), v.Children)
	case *Scale:
		p.printBlock(fmt.Sprintf("scale(v=[%s,%s,%s])", f(v.V.X), f(v.V.Y), f(v.V.Z)), v.Children)
	case *Multmatrix:
		p.printBlock(fmt.Sprintf("multmatrix(m=%s)", printMat4(v.M)), v.Children)
	case *Mirror:
		p.printBlock(fmt.Sprintf("mirror(v=[%s,%s,%s])", f(v.V.X), f(v.V.Y), f(v.V.Z)), v.Children)
	case *LinearExtrude:
		p.printBlock(fmt.Sprintf("linear_extrude(height=%s, center=%v, twist=%s, scale=%s)", f(v.Height), v.Center, f(v.Twist), f(v.Scale)), v.Children)
	default:
		p.out.WriteString("/* unknown node */\n")
	}
}

func (p *Printer) printBlock(head string, children []Node) {
	if len(children) == 0 {
		fmt.Fprintf(&p.out, "%s { }\n", head)
		return
	}
	fmt.Fprintf(&p.out, "%s {\n", head)
	p.indent++
	p.printBody(children)
	p.indent--
	p.writeIndent()
	p.out.WriteString("}\n")
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func printPointsVec3(pts []geom.Vec3) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range pts {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "[%s,%s,%s]", f(p.X), f(p.Y), f(p.Z))
	}
	sb.WriteString("]")
	return sb.String()
}

func printPointsVec2(pts []geom.Vec2) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range pts {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "[%s,%s]", f(p.X), f(p.Y))
	}
	sb.WriteString("]")
	return sb.String()
}

func printFaces(faces [][]int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, face := range faces {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("[")
		for j, idx := range face {
			if j > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, "%d", idx)
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func printMat4(m geom.Mat4) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 4; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("[")
		for j := 0; j < 4; j++ {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(f(m[i][j]))
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}
