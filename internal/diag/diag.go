// Package diag implements the located-error model of spec.md §7: every
// error carries one or two source locations resolved against the preserved
// source buffer, and renders as an `Error: <message>` line followed by the
// primary location's source line and a caret line under its column; no
// excerpt text precedes the message line. It generalizes the teacher's
// internal/errors.SentraError (tagged error kind + SourceLocation + source
// excerpt) from a single-location scripting-language error to the
// two-location model the CSG pipeline's geometric errors need.
package diag

import (
	"fmt"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/csgslice/csgslice/internal/geom"
)

// Kind is one of the error kinds of spec.md §7.
type Kind string

const (
	LexError      Kind = "LexError"
	ParseError    Kind = "ParseError"
	SCADError     Kind = "SCADError"
	GeomError     Kind = "GeomError"
	BooleanError  Kind = "BooleanError"
	IOError       Kind = "IOError"
)

// GeomSubkind further tags a GeomError per §7 so that policy (§6) can
// downgrade individual subkinds to warn or silence them.
type GeomSubkind string

const (
	GeomEmptyPrimitive   GeomSubkind = "empty-primitive"
	GeomCollapsedByTransform GeomSubkind = "collapsed-by-transform"
	Geom2DIn3D           GeomSubkind = "2d-in-3d"
	Geom3DIn2D           GeomSubkind = "3d-in-2d"
	GeomDegenerateFace   GeomSubkind = "degenerate-polyhedron-face"
	GeomNonPlanarFace    GeomSubkind = "non-planar-polyhedron-face"
)

// ResolvedLocation is a Location resolved to (file, line, column) against
// the preserved source buffer; the lexer's working buffer is a byte-for-
// byte copy of it, so the same line and column hold there too.
type ResolvedLocation struct {
	File   string
	Line   int // 1-based
	Column int // byte offset within the line, preserved-buffer coordinates
}

// Diagnostic is the located error type every pipeline pass produces.
type Diagnostic struct {
	Kind       Kind
	Subkind    GeomSubkind // only meaningful when Kind == GeomError
	Message    string
	Primary    ResolvedLocation
	Secondary  *ResolvedLocation
	Pre        string // source excerpt before the caret
	Post       string // source excerpt from the caret onward
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", d.Message)
	fmt.Fprintf(&sb, "%s\n", d.Pre)
	fmt.Fprintf(&sb, "%s", d.Post)
	return sb.String()
}

// New builds a Diagnostic from a resolved primary location and the source
// line it falls on; pre/post are split at Column.
func New(kind Kind, message string, loc ResolvedLocation, sourceLine string) *Diagnostic {
	col := loc.Column
	if col < 0 {
		col = 0
	}
	if col > len(sourceLine) {
		col = len(sourceLine)
	}
	return &Diagnostic{
		Kind:    kind,
		Message: message,
		Primary: loc,
		Pre:     sourceLine[:col],
		Post:    sourceLine[col:],
	}
}

// WithSecondary attaches a second location (e.g. the conflicting edge in a
// BooleanError).
func (d *Diagnostic) WithSecondary(loc ResolvedLocation) *Diagnostic {
	d.Secondary = &loc
	return d
}

// WithGeomSubkind tags a GeomError with its §7 subkind.
func (d *Diagnostic) WithGeomSubkind(sub GeomSubkind) *Diagnostic {
	d.Subkind = sub
	return d
}

// Render writes d to sb as three lines: `Error: msg`, the whole source line
// (Pre followed by Post), and a caret under the primary column. When fd
// is a terminal (github.com/mattn/go-isatty), the message and caret line are
// ANSI-colored; this is the only place in the pipeline that branches on
// terminal-ness, confined to this rendering function so no geometric code
// depends on it (see SPEC_FULL.md §2.1).
func Render(sb *strings.Builder, d *Diagnostic, fd uintptr) {
	colorize := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	caret := strings.Repeat(" ", len(d.Pre)) + "^"
	if colorize {
		fmt.Fprintf(sb, "\x1b[31mError: %s\x1b[0m\n", d.Message)
		fmt.Fprintf(sb, "%s%s\n", d.Pre, d.Post)
		fmt.Fprintf(sb, "\x1b[33m%s\x1b[0m\n", caret)
	} else {
		fmt.Fprintf(sb, "Error: %s\n", d.Message)
		fmt.Fprintf(sb, "%s%s\n", d.Pre, d.Post)
		fmt.Fprintf(sb, "%s\n", caret)
	}
}

// Resolver resolves geom.Location values against the preserved source
// buffer. It is constructed once per pipeline run from the untouched copy
// kept alongside the destructively-lexed working buffer (spec.md §9
// "Destructive lexing into the source buffer").
type Resolver struct {
	file     string
	preserved string
	lineStart []int // byte offset of the first byte of each line, 0-based index = line-1
}

// NewResolver builds a Resolver over the preserved source buffer.
func NewResolver(file, preserved string) *Resolver {
	r := &Resolver{file: file, preserved: preserved}
	r.lineStart = append(r.lineStart, 0)
	for i, b := range []byte(preserved) {
		if b == '\n' {
			r.lineStart = append(r.lineStart, i+1)
		}
	}
	return r
}

// Resolve turns a Location into a (file, line, column) triple and the
// source line's text.
func (r *Resolver) Resolve(loc geom.Location) (ResolvedLocation, string) {
	if !loc.Valid() {
		return ResolvedLocation{File: r.file}, ""
	}
	line := r.lineFor(loc.Offset)
	start := r.lineStart[line-1]
	end := len(r.preserved)
	if line < len(r.lineStart) {
		end = r.lineStart[line] - 1 // exclude the newline
		if end < start {
			end = start
		}
	}
	col := loc.Offset - start
	if col < 0 {
		col = 0
	}
	text := r.preserved[start:min(end, len(r.preserved))]
	return ResolvedLocation{File: r.file, Line: line, Column: col}, text
}

func (r *Resolver) lineFor(offset int) int {
	// binary search over lineStart
	lo, hi := 0, len(r.lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.lineStart[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// NewFromResolved builds a Diagnostic directly from a Resolver and a
// Location, the common path every pass uses.
func NewFromResolved(kind Kind, message string, r *Resolver, loc geom.Location) *Diagnostic {
	rl, line := r.Resolve(loc)
	return New(kind, message, rl, line)
}
