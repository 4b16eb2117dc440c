// Package syn builds the untyped SYN tree of spec.md §3/§4.1: a call-with-
// args tree over literal and range/array values, each node carrying a
// source location into the preserved buffer. Node is a closed sum type
// (Call, IntLit, FloatLit, StringLit, IdentLit, RangeLit, ArrayLit); callers
// switch on concrete type rather than a discriminant field, the idiomatic
// Go rendering of the tagged-union strategy in DESIGN.md.
package syn

import "github.com/csgslice/csgslice/internal/geom"

// Node is any SYN tree node — a call or a value.
type Node interface {
	Location() geom.Location
}

// Modifier is one of the four prefix modifier flags (spec.md §4.1, §6).
type Modifier byte

const (
	ModNone       Modifier = 0
	ModDisable    Modifier = '*'
	ModBackground Modifier = '%'
	ModRoot       Modifier = '!'
	ModHighlight  Modifier = '#'
)

// Arg is one call argument: positional (Name == "") or keyword.
type Arg struct {
	Name  string
	Value Node
	Loc   geom.Location
}

// Call is a functor invocation with an ordered-and-keyword argument list
// and a child body. A bare `{ ... }` group (no functor name) is
// represented with Functor == "".
type Call struct {
	Functor  string
	Mods     []Modifier
	Args     []Arg
	Children []*Call
	Loc      geom.Location
}

func (c *Call) Location() geom.Location { return c.Loc }

// IntLit is an integer literal.
type IntLit struct {
	Val int64
	Loc geom.Location
}

func (n *IntLit) Location() geom.Location { return n.Loc }

// FloatLit is a floating-point literal.
type FloatLit struct {
	Val float64
	Loc geom.Location
}

func (n *FloatLit) Location() geom.Location { return n.Loc }

// StringLit is a double-quoted, backslash-escape-decoded string literal.
type StringLit struct {
	Val string
	Loc geom.Location
}

func (n *StringLit) Location() geom.Location { return n.Loc }

// IdentLit is an identifier reference used as a value (a variable read, or
// a bare true/false/undef-style keyword — SCAD lowering resolves it).
type IdentLit struct {
	Name string
	Loc  geom.Location
}

func (n *IdentLit) Location() geom.Location { return n.Loc }

// RangeLit is `[a:b]` or `[a:b:c]`; Step is nil for the two-element form.
type RangeLit struct {
	From, Step, To Node
	Loc            geom.Location
}

func (n *RangeLit) Location() geom.Location { return n.Loc }

// ArrayLit is `[v, v, ...]`, including the empty array `[]`.
type ArrayLit struct {
	Elems []Node
	Loc   geom.Location
}

func (n *ArrayLit) Location() geom.Location { return n.Loc }
