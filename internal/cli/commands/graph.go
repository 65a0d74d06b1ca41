package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/pkg/graph"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

// plotWidth is the width of the marker column in text output.
const plotWidth = 32

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var src programSource

	cmd := &cobra.Command{
		Use:   "graph [words...]",
		Short: "Sample an RPN program across a range of x",
		Long: `Evaluate a program once per column with the graph variable bound to
evenly spaced values between --x-min and --x-max.

Points where the result is NaN or infinite are undefined and break the
curve into segments. In dot mode every defined point stands alone.

Defaults come from the graph section of rpncalc.yaml.`,
		Example: `  # Plot y = x × x from -3 to 3
  rpncalc graph x x '*' --x-min -3 --x-max 3 --columns 7

  # Sample a saved program as JSON
  rpncalc graph --name wave -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			p, _, err := src.resolve(cmd.Context(), cmdCtx, args)
			if err != nil {
				return err
			}
			bindings, err := src.bindings()
			if err != nil {
				return err
			}

			gc := cmdCtx.Cfg.Graph
			sampler := &graph.Sampler{
				Domain:    graph.Domain{Min: gc.XMin, Max: gc.XMax},
				Columns:   gc.Columns,
				Variable:  gc.Variable,
				DotMode:   gc.DotMode,
				Bindings:  bindings,
				Undefined: cmdCtx.Cfg.Undefined,
				Logger:    cmdCtx.Logger,
			}
			points, err := sampler.Sample(cmd.Context(), p)
			if err != nil {
				return err
			}
			return renderGraph(cmdCtx, sampler, p, points)
		},
	}

	src.register(cmd, true)
	cmd.Flags().Float64("x-min", 0, "Lower bound of the domain")
	cmd.Flags().Float64("x-max", 0, "Upper bound of the domain")
	cmd.Flags().Int("columns", 0, "Number of samples")
	cmd.Flags().String("variable", "", "Variable bound to x")
	cmd.Flags().Bool("dot-mode", false, "Treat every point as its own segment")
	return cmd
}

func renderGraph(c *CommandContext, s *graph.Sampler, p program.Program, points []graph.Point) error {
	r := c.Renderer
	title := graph.Title(p)
	segments := graph.Segments(points, s.DotMode)

	if r.EffectiveMode() == output.ModeJSON {
		out := output.GraphOutput{
			Title:    title,
			Variable: s.Variable,
			XMin:     s.Domain.Min,
			XMax:     s.Domain.Max,
			Points:   make([]output.GraphPoint, len(points)),
			Segments: len(segments),
		}
		for i, pt := range points {
			out.Points[i] = output.GraphPoint{X: pt.X, Y: output.JSONValue(pt.Y), Defined: pt.Defined}
		}
		return r.JSON(out)
	}

	r.Header(2, title)
	lo, hi, ok := graph.Range(points)
	withPlot := r.EffectiveMode() == output.ModeText && ok

	header := []string{s.Variable, "y"}
	if withPlot {
		header = append(header, "plot")
	}
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		row := []string{c.FormatValue(pt.X), c.FormatValue(pt.Y)}
		if withPlot {
			row = append(row, plotMarker(pt, lo, hi))
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)

	if ok {
		r.Muted(fmt.Sprintf("%d points, %d segments, y in [%s, %s]",
			len(points), len(segments), c.FormatValue(lo), c.FormatValue(hi)))
	} else {
		r.Muted(fmt.Sprintf("%d points, no defined values", len(points)))
	}
	return nil
}

// plotMarker places a marker for pt within [lo, hi] on a fixed-width line.
func plotMarker(pt graph.Point, lo, hi float64) string {
	if !pt.Defined {
		return ""
	}
	pos := 0
	if hi > lo {
		pos = int(math.Round((pt.Y - lo) / (hi - lo) * (plotWidth - 1)))
	}
	return strings.Repeat(" ", pos) + "●"
}
