package geom

// Location is an opaque handle into the preserved source buffer: a byte
// offset, never a pointer or a parent-node reference. Every
// IR node downstream of the lexer carries one of these instead of its own
// copy of line/column/file, which are resolved lazily by internal/diag
// only when a diagnostic actually needs to be rendered.
type Location struct {
	Offset int
	valid  bool
}

// NoLocation is the zero value, for a node that has no corresponding
// source text; Valid reports false for it.
var NoLocation = Location{}

// NewLocation wraps a byte offset into the preserved source buffer.
func NewLocation(offset int) Location {
	return Location{Offset: offset, valid: true}
}

// Valid reports whether this location points into real source text.
func (l Location) Valid() bool { return l.valid }
