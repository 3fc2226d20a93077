package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kdeps/pkg/dag"
	"github.com/matzehuels/kdeps/pkg/deps"
	"github.com/matzehuels/kdeps/pkg/observability"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes row numbers and metadata in node labels.
	// When false, only the coordinate is shown.
	Detailed bool
	// HideSkipped leaves out excluded and pruned nodes together with
	// every edge that touches them.
	HideSkipped bool
}

// ToDOT converts a resolved graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are styled by their status: excluded and pruned nodes are dashed,
// nodes whose metadata or artifact failed are red. Edges that were not
// followed are dashed and labelled with the reason.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	hidden := make(map[string]bool)
	for _, n := range g.Nodes() {
		if opts.HideSkipped && skipped(*n) {
			hidden[n.ID] = true
			continue
		}
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if hidden[e.From] || hidden[e.To] {
			continue
		}
		if attrs := fmtEdgeAttrs(e); len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func skipped(n dag.Node) bool {
	s := n.Meta[deps.MetaStatus]
	return s == deps.StatusExcluded || s == deps.StatusPruned
}

func fmtLabel(n dag.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{fmt.Sprintf("row: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		switch k {
		case "group", "artifact", "version":
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}

	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Meta[deps.MetaStatus] {
	case deps.StatusExcluded, deps.StatusPruned:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case deps.StatusMetadataFailed, deps.StatusInvalidMetadata:
		attrs = append(attrs, "color=red", "fillcolor=mistyrose")
	default:
		if n.Meta[deps.MetaDownload] == observability.OutcomeFailed {
			attrs = append(attrs, "color=red")
		}
	}
	return attrs
}

func fmtEdgeAttrs(e dag.Edge) []string {
	var attrs []string
	if rule, ok := e.Meta[deps.MetaExcluded]; ok {
		attrs = append(attrs, "style=dashed", "color=grey", fmt.Sprintf("label=%q", fmt.Sprintf("excl %v", rule)))
	} else if e.Meta[deps.MetaPruned] == true {
		attrs = append(attrs, "style=dotted", "color=grey")
	}
	if e.Meta[deps.MetaOptional] == true {
		attrs = append(attrs, "arrowhead=odiamond")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
