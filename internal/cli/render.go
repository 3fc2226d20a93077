package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kdeps/pkg/dag"
	"github.com/matzehuels/kdeps/pkg/deps"
	"github.com/matzehuels/kdeps/pkg/io"
	"github.com/matzehuels/kdeps/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	dot         string // DOT output path
	svg         string // SVG output path
	detailed    bool   // show metadata in node labels
	hideSkipped bool   // leave out excluded and pruned nodes
}

// renderCommand creates the render command, which draws a graph saved
// earlier with --graph.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a saved dependency graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := io.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if opts.dot == "" && opts.svg == "" {
				base := args[0][:len(args[0])-len(filepath.Ext(args[0]))]
				opts.svg = base + ".svg"
			}
			loggerFromContext(cmd.Context()).Debug("rendering", "nodes", g.NodeCount(), "edges", g.EdgeCount())
			nl := nodelink.Options{Detailed: opts.detailed, HideSkipped: opts.hideSkipped}
			return renderGraph(g, nl, opts.dot, opts.svg)
		},
	}

	cmd.Flags().StringVar(&opts.dot, "dot", "", "DOT output file")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "SVG output file (default: <graph>.svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node metadata in labels")
	cmd.Flags().BoolVar(&opts.hideSkipped, "hide-skipped", false, "omit excluded and pruned coordinates")

	return cmd
}

// writeOutputs writes the optional artifacts of a fetch run.
func writeOutputs(res *deps.Result, graphPath, dotPath, svgPath string) error {
	if graphPath != "" {
		if err := io.ExportJSON(res.Graph, graphPath); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
		printFile(graphPath)
	}
	return renderGraph(res.Graph, nodelink.Options{}, dotPath, svgPath)
}

func renderGraph(g *dag.DAG, opts nodelink.Options, dotPath, svgPath string) error {
	if dotPath == "" && svgPath == "" {
		return nil
	}
	dot := nodelink.ToDOT(g, opts)
	if dotPath != "" {
		if err := writeFile(dotPath, []byte(dot)); err != nil {
			return err
		}
		printFile(dotPath)
	}
	if svgPath != "" {
		svg, err := nodelink.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := writeFile(svgPath, svg); err != nil {
			return err
		}
		printFile(svgPath)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
