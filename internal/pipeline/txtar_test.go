package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/diag"
)

// txtarFile looks up a named file's content within an unpacked archive, or
// reports ok=false if it is absent.
func txtarFile(a *txtar.Archive, name string) (string, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return string(f.Data), true
		}
	}
	return "", false
}

// parseKV reads "key=value" lines, one per line, blank lines ignored.
func parseKV(s string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}

func rangeOverrideFromConfigTxt(s string) config.RangeOverride {
	kv := parseKV(s)
	var r config.RangeOverride
	if v, ok := kv["z_min"]; ok {
		r.ZMin, _ = strconv.ParseFloat(v, 64)
		r.HasZMin = true
	}
	if v, ok := kv["z_max"]; ok {
		r.ZMax, _ = strconv.ParseFloat(v, 64)
		r.HasZMax = true
	}
	if v, ok := kv["z_step"]; ok {
		r.ZStep, _ = strconv.ParseFloat(v, 64)
		r.HasZStep = true
	}
	return r
}

func kindFromName(name string) diag.Kind {
	switch name {
	case "LexError":
		return diag.LexError
	case "ParseError":
		return diag.ParseError
	case "SCADError":
		return diag.SCADError
	case "GeomError":
		return diag.GeomError
	case "BooleanError":
		return diag.BooleanError
	case "IOError":
		return diag.IOError
	default:
		return diag.Kind("")
	}
}

// TestBoundaryScenariosFromTxtar runs every spec.md §8 boundary scenario
// packed as a testdata/*.txtar archive (input.scad, an optional config.txt
// override, and either per-layer layer-N.txt expectations or an error.txt
// expectation) through the pipeline.
func TestBoundaryScenariosFromTxtar(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(archives) == 0 {
		t.Fatalf("no txtar fixtures found under testdata/")
	}

	for _, path := range archives {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			a, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}

			input, ok := txtarFile(a, "input.scad")
			if !ok {
				t.Fatalf("%s: missing input.scad", path)
			}

			var cfg config.Config
			if cfgTxt, ok := txtarFile(a, "config.txt"); ok {
				cfg, err = config.NewBuilder().WithRange(rangeOverrideFromConfigTxt(cfgTxt)).Build()
			} else {
				cfg, err = config.NewBuilder().Build()
			}
			if err != nil {
				t.Fatalf("%s: config error: %v", path, err)
			}

			res, runErr := Run(filepath.Base(path), input, Options{Config: cfg, StopAt: StageEmitted})

			if errTxt, wantErr := txtarFile(a, "error.txt"); wantErr {
				if runErr == nil {
					t.Fatalf("%s: expected an error, got none", path)
				}
				d, ok := runErr.(*diag.Diagnostic)
				if !ok {
					t.Fatalf("%s: expected a *diag.Diagnostic, got %T", path, runErr)
				}
				kv := parseKV(errTxt)
				if wantKind, ok := kv["kind"]; ok {
					if d.Kind != kindFromName(wantKind) {
						t.Errorf("%s: expected kind %s, got %v", path, wantKind, d.Kind)
					}
				}
				if wantStage, ok := kv["stage"]; ok {
					if res.Stage.String() != wantStage {
						t.Errorf("%s: expected the run to stop at %s, got %v", path, wantStage, res.Stage)
					}
				}
				return
			}

			if runErr != nil {
				t.Fatalf("%s: unexpected run error: %v", path, runErr)
			}

			var wantLayers []string
			for i := 0; ; i++ {
				txt, ok := txtarFile(a, fmt.Sprintf("layer-%d.txt", i))
				if !ok {
					break
				}
				wantLayers = append(wantLayers, txt)
			}
			if len(wantLayers) == 0 {
				t.Fatalf("%s: archive has neither error.txt nor any layer-N.txt", path)
			}
			if len(res.Layers) != len(wantLayers) {
				t.Fatalf("%s: expected %d layers, got %d", path, len(wantLayers), len(res.Layers))
			}
			for i, txt := range wantLayers {
				kv := parseKV(txt)
				l := res.Layers[i]
				if wantPaths, ok := kv["paths"]; ok {
					n, _ := strconv.Atoi(wantPaths)
					if len(l.Polygons.Paths) != n {
						t.Errorf("%s: layer %d: expected %d paths, got %d", path, i, n, len(l.Polygons.Paths))
					}
				}
				if wantVerts, ok := kv["verts"]; ok {
					n, _ := strconv.Atoi(wantVerts)
					if len(l.Polygons.Verts) != n {
						t.Errorf("%s: layer %d: expected %d verts, got %d", path, i, n, len(l.Polygons.Verts))
					}
				}
			}
		})
	}
}
