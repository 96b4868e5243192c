package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT renders the stage machine in Graphviz DOT format. The resulting DOT
// string can be rendered with [RenderSVG] or [RenderPNG].
//
// Stages that abort the run on failure keep the default solid style; stages
// that degrade and continue are dashed with grey fill. The terminal stage is
// highlighted green.
func ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph seoflow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [shape=ellipse];\n", StageIdle)
	for _, s := range StageOrder {
		fmt.Fprintf(&buf, "  %q [%s];\n", s, strings.Join(fmtStageAttrs(s), ", "))
	}

	buf.WriteString("\n")
	prev := StageIdle
	for _, s := range StageOrder {
		fmt.Fprintf(&buf, "  %q -> %q;\n", prev, s)
		prev = s
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtStageAttrs(s Stage) []string {
	attrs := []string{fmt.Sprintf("label=%q", string(s))}
	switch {
	case s == StageReadyForReview:
		attrs = append(attrs, "fillcolor=palegreen")
	case !hardFailStages[s]:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
