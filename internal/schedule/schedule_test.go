package schedule

import (
	"sync"
	"testing"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/csg3"
	"github.com/csgslice/csgslice/internal/geom"
)

func TestComputeBoundaryScenario1(t *testing.T) {
	// cube(10); with z_step=5, z_min=0, z_max=10 -> layers at z in {2.5, 7.5}
	b := BBox{Min: geom.Vec3{}, Max: geom.Vec3{X: 10, Y: 10, Z: 10}}
	cfg, _ := config.NewBuilder().
		WithRange(config.RangeOverride{ZMin: 0, HasZMin: true, ZMax: 10, HasZMax: true, ZStep: 5, HasZStep: true}).
		Build()
	r := Compute(b, cfg)
	if r.Count != 2 {
		t.Fatalf("expected 2 layers, got %d", r.Count)
	}
	if r.Z(0) != 2.5 || r.Z(1) != 7.5 {
		t.Errorf("unexpected z values: %v %v", r.Z(0), r.Z(1))
	}
}

func TestComputeBoundaryScenario2(t *testing.T) {
	// difference(){ cube(10); translate([5,0,0]) cube(10); } with z_step=5, z_min=2.5
	b := BBox{Min: geom.Vec3{}, Max: geom.Vec3{X: 10, Y: 10, Z: 10}}
	cfg, _ := config.NewBuilder().
		WithRange(config.RangeOverride{ZMin: 2.5, HasZMin: true, ZStep: 5, HasZStep: true}).
		Build()
	r := Compute(b, cfg)
	if r.Count != 2 {
		t.Fatalf("expected 2 layers, got %d", r.Count)
	}
}

func TestComputeDefaultCenteredSampling(t *testing.T) {
	// no overrides: z_step defaults to 1, first plane centred half a step
	// above the bounding box's own minimum.
	b := BBox{Min: geom.Vec3{Z: 0}, Max: geom.Vec3{Z: 3}}
	cfg, _ := config.NewBuilder().Build()
	r := Compute(b, cfg)
	if r.ZStep != 1 {
		t.Fatalf("expected default z_step=1, got %v", r.ZStep)
	}
	if r.Z(0) != 0.5 {
		t.Errorf("expected first plane at 0.5, got %v", r.Z(0))
	}
}

func TestBoundingBoxSphere(t *testing.T) {
	sp := &csg3.Sphere{Radius: 10, Fn: 8, Transform: geom.Identity()}
	b := BoundingBox([]csg3.Node{sp}, true)
	if b.Min.Z != -10 || b.Max.Z != 10 {
		t.Errorf("unexpected sphere bbox z range: %v..%v", b.Min.Z, b.Max.Z)
	}
}

func TestBoundingBoxDifferenceIgnoresSubtracted(t *testing.T) {
	a := &csg3.Sphere{Radius: 5, Transform: geom.Identity()}
	bgeom := &csg3.Sphere{Radius: 50, Transform: geom.Translate(geom.Vec3{X: 100})}
	d := &csg3.Difference{Children: []csg3.Node{a, bgeom}}
	bb := BoundingBox([]csg3.Node{d}, false)
	if bb.Max.X > 6 {
		t.Errorf("expected bbox to ignore subtracted geometry, got max.X=%v", bb.Max.X)
	}
}

func TestDispenserConcurrentExhaustion(t *testing.T) {
	const count = 100
	d := NewDispenser(count)
	seen := make([]int32, count)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i, ok := d.Next()
				if !ok {
					return
				}
				seen[i]++
			}
		}()
	}
	wg.Wait()
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("layer %d dispensed %d times, want 1", i, c)
		}
	}
}
