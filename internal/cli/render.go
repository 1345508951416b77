package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panels/pkg/render"
	"github.com/matzehuels/panels/pkg/workspace"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// previewCommand draws a saved workspace in the terminal or as SVG.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		opts   render.PreviewOptions
		svg    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "preview <id|name>",
		Short: "Draw a workspace as boxes in the terminal",
		Long: `Draw a saved workspace as text boxes, back to front, with each box
labelled by its panel id. With --svg the panels are written as an SVG
drawing with the workspace grid instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspaces(cmd.Context(), func(m *workspace.Manager) error {
				cfg, err := findWorkspace(m, args[0])
				if err != nil {
					return err
				}
				if !svg {
					_, err := io.WriteString(cmd.OutOrStdout(), render.Preview(cfg.Panels, opts))
					return err
				}
				data := render.SVG(cfg.Panels, render.WithGrid(cfg.Grid), render.WithLabels())
				return writeOutput(cmd.OutOrStdout(), output, data)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Cols, "cols", render.DefaultPreviewCols, "preview width in cells")
	cmd.Flags().IntVar(&opts.Rows, "rows", render.DefaultPreviewRows, "preview height in cells")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "layout pixels per cell (0 fits the layout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "write an SVG drawing instead of text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for --svg (default stdout)")

	return cmd
}

// graphCommand exports the adjacency graph of a saved workspace.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format    string
		output    string
		detailed  bool
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "graph <id|name>",
		Short: "Export the panel adjacency graph",
		Long: `Export which panels touch or overlap as a Graphviz graph. Nodes are
pinned at their panel centers. Formats: dot (default), svg, pdf, png.
PDF and PNG need rsvg-convert from librsvg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case formatDOT, formatSVG, formatPDF, formatPNG:
			default:
				return fmt.Errorf("unknown format %q (want dot, svg, pdf or png)", format)
			}
			ctx := cmd.Context()
			return c.withWorkspaces(ctx, func(m *workspace.Manager) error {
				cfg, err := findWorkspace(m, args[0])
				if err != nil {
					return err
				}
				prog := newProgress(loggerFromContext(ctx))
				dot := render.AdjacencyDOT(cfg.Panels, render.DOTOptions{Tolerance: tolerance, Detailed: detailed})
				data, err := graphBytes(ctx, dot, format)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Rendered %s graph of %s", format, cfg.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add geometry to node labels")
	cmd.Flags().Float64Var(&tolerance, "tolerance", render.DefaultTolerance, "adjacency tolerance in pixels")

	return cmd
}

func graphBytes(ctx context.Context, dot, format string) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatPDF:
		return render.ToPDF(svg)
	case formatPNG:
		return render.ToPNG(svg, 2)
	}
	return svg, nil
}

// writeOutput writes data to path, or to w when path is "" or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(w, path)
	return nil
}
