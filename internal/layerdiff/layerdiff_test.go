package layerdiff

import (
	"testing"

	"github.com/csgslice/csgslice/internal/boolean"
	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg2"
	"github.com/csgslice/csgslice/internal/geom"
)

func square(x0, y0, x1, y1 float64) csg2.PolygonSet {
	verts := []csg2.Vertex{
		{Pos: geom.Vec2{X: x0, Y: y0}},
		{Pos: geom.Vec2{X: x1, Y: y0}},
		{Pos: geom.Vec2{X: x1, Y: y1}},
		{Pos: geom.Vec2{X: x0, Y: y1}},
	}
	return csg2.PolygonSet{Verts: verts, Paths: [][]int{{0, 1, 2, 3}}}
}

func TestApplyLeavesBottomLayerUnchanged(t *testing.T) {
	cfg, err := config.NewBuilder().Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	layers := []csg2.PolygonSet{square(0, 0, 10, 10), square(0, 0, 10, 10)}
	if err := Apply(layers, cfg, boolean.SymmetricDifference); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers[0].Paths) != 1 {
		t.Errorf("expected layer 0 untouched, got %#v", layers[0])
	}
	if len(layers[1].Paths) != 0 {
		t.Errorf("expected identical adjacent layers to XOR to empty, got %#v", layers[1])
	}
}
