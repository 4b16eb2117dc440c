// Package layerdiff implements the optional layer-difference pass of
// spec.md §4.8, used only by the WebGL output to suppress faces that are
// coincident between adjacent layers: for each layer i from the top down
// to 1, its polygon set is replaced by the symmetric difference with
// layer i-1. Layer 0 is left unchanged.
package layerdiff

import (
	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg2"
)

// Error surfaces a boolean-evaluation failure encountered while computing
// a symmetric difference between two adjacent layers.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Apply replaces layers[1:] in place with their symmetric difference
// against the layer below, leaving layers[0] untouched. symDiff is
// supplied by the caller (internal/boolean, via a thin adapter) so this
// package stays free of a direct dependency on the Boolean evaluator's
// CSG2 tree-walking machinery -- it only needs "XOR two flat polygon
// sets".
func Apply(layers []csg2.PolygonSet, cfg config.Config, symDiff func(a, b csg2.PolygonSet, cfg config.Config) (csg2.PolygonSet, error)) error {
	for i := len(layers) - 1; i >= 1; i-- {
		d, err := symDiff(layers[i], layers[i-1], cfg)
		if err != nil {
			return &Error{Msg: err.Error()}
		}
		layers[i] = d
	}
	return nil
}
