package pipeline

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/kr/text"
)

// Dump renders a Result's IR at its current stage using kr/pretty's
// struct-field-aware formatter, the same tool the teacher reaches for when
// logging intermediate interpreter state. It backs the CLI's `--dump=<stage>`
// debugging output, not for the final WebGL/JSON emission path.
func Dump(res *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s at stage %s\n", res.RunID, res.Stage)

	switch {
	case res.Stage >= StageEvaluated && len(res.Layers) > 0:
		fmt.Fprintf(&sb, "%d layers (z range %v)\n", len(res.Layers), res.Range)
		for _, l := range res.Layers {
			fmt.Fprintf(&sb, "layer %d z=%g:\n", l.Index, l.Z)
			sb.WriteString(text.Indent(pretty.Sprint(l.Polygons), "    "))
			sb.WriteString("\n")
		}
	case res.Stage >= StageCSG3Built:
		sb.WriteString(text.Indent(pretty.Sprint(res.CSG3), "    "))
		sb.WriteString("\n")
	case res.Stage >= StageScadded:
		sb.WriteString(text.Indent(pretty.Sprint(res.Scad), "    "))
		sb.WriteString("\n")
	default:
		sb.WriteString(text.Indent(pretty.Sprint(res.Syn), "    "))
		sb.WriteString("\n")
	}
	return sb.String()
}
