// Package nodelink renders resolved dependency graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res.Graph, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
//   - Detailed: node labels include the discovery row and node metadata
//   - HideSkipped: excluded and pruned nodes are left out
//
// # Styling
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes, so seeds sit at the top. Excluded and pruned coordinates are
// dashed grey, failed ones red. Edges that were cut by an exclusion rule
// carry the rule as a label.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
