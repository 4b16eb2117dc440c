package csg3

import (
	"fmt"

	"github.com/csgslice/csgslice/internal/diag"
	"github.com/csgslice/csgslice/internal/geom"
)

// Error is a GeomError (spec.md §7): an empty primitive, a transform that
// collapses geometry, or a dimensionality mismatch (2D used in 3D context
// or vice versa). Subkind distinguishes which.
type Error struct {
	Subkind diag.GeomSubkind
	Msg     string
	Loc     geom.Location
}

func (e *Error) Error() string { return e.Msg }

func errAt(subkind diag.GeomSubkind, loc geom.Location, format string, args ...interface{}) *Error {
	return &Error{Subkind: subkind, Msg: fmt.Sprintf(format, args...), Loc: loc}
}
