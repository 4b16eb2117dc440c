// Command csgslice runs the slicing pipeline over one SCAD-like source
// file and writes the resulting layers as JSON. Flag parsing is
// deliberately minimal: a hand-rolled loop over os.Args that only gets a
// file from disk into internal/pipeline.Run with a few switches.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/csgslice/csgslice/internal/config"
	"github.com/csgslice/csgslice/internal/diag"
	"github.com/csgslice/csgslice/internal/pipeline"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	var dumpStage, filename string
	var triangulate, layerDiff bool
	for _, a := range args {
		switch {
		case a == "--triangulate":
			triangulate = true
		case a == "--layer-diff":
			layerDiff = true
		case strings.HasPrefix(a, "--dump="):
			dumpStage = strings.TrimPrefix(a, "--dump=")
		case a == "--help" || a == "-h":
			showUsage()
			return
		case !strings.HasPrefix(a, "-"):
			filename = a
		}
	}
	if filename == "" {
		log.Fatal("no input file given")
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("could not read file: %v", err)
	}

	cfg, err := config.NewBuilder().Build()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	opts := pipeline.Options{
		Config:      cfg,
		StopAt:      pipeline.StageEmitted,
		Triangulate: triangulate,
		LayerDiff:   layerDiff,
	}
	if stage, ok := parseStage(dumpStage); ok {
		opts.StopAt = stage
	}

	res, runErr := pipeline.Run(filename, string(source), opts)
	if runErr != nil {
		if d, ok := runErr.(*diag.Diagnostic); ok {
			fmt.Fprint(os.Stderr, d.Error())
			os.Exit(1)
		}
		log.Fatalf("pipeline error: %v", runErr)
	}

	if dumpStage != "" {
		fmt.Print(pipeline.Dump(res))
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Layers); err != nil {
		log.Fatalf("could not encode layers: %v", err)
	}
}

func parseStage(name string) (pipeline.Stage, bool) {
	switch name {
	case "parsed":
		return pipeline.StageParsed, true
	case "scadded":
		return pipeline.StageScadded, true
	case "csg3":
		return pipeline.StageCSG3Built, true
	case "evaluated":
		return pipeline.StageEvaluated, true
	case "triangulated":
		return pipeline.StageTriangulated, true
	case "diffed":
		return pipeline.StageDiffed, true
	default:
		return 0, false
	}
}

func showUsage() {
	fmt.Println("usage: csgslice [--triangulate] [--layer-diff] [--dump=stage] <file>")
}
