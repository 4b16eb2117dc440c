package pipeline

import (
	"testing"

	"github.com/csgslice/csgslice/internal/config"
)

// defaultOpts builds Options with default configuration, stopping at the
// final stage. The spec.md §8 boundary scenarios themselves live as
// testdata/*.txtar fixtures and run through TestBoundaryScenariosFromTxtar;
// this file covers pipeline behaviour that isn't one of those scenarios.
func defaultOpts(t *testing.T) Options {
	t.Helper()
	cfg, err := config.NewBuilder().Build()
	if err != nil {
		t.Fatalf("config error: %v", err)
	}
	return Options{Config: cfg, StopAt: StageEmitted}
}

func TestStopAtEarlyExit(t *testing.T) {
	opts := defaultOpts(t)
	opts.StopAt = StageCSG3Built
	res, err := Run("stopat.scad", "cube(10);", opts)
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if res.Stage != StageCSG3Built {
		t.Fatalf("expected stage CSG3_BUILT, got %v", res.Stage)
	}
	if res.Layers != nil {
		t.Errorf("expected no layers to have been computed past the requested stop stage")
	}
}

func TestDumpDoesNotPanic(t *testing.T) {
	res, err := Run("dump.scad", "cube(10);", defaultOpts(t))
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if out := Dump(res); out == "" {
		t.Errorf("expected non-empty dump output")
	}
}
