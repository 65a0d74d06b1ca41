package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/format"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var src programSource
	var record bool

	cmd := &cobra.Command{
		Use:   "eval [words...]",
		Short: "Evaluate an RPN program",
		Long: `Evaluate an RPN program and print its infix description and value.

Words are numbers, variable names or operator symbols. Operators may be
written with their ASCII aliases (* / - sqrt pi). Unbound variables take
the value selected by --undefined (zero or nan).

Output adapts to environment:
  - Terminal: Styled text
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Evaluate 3 + 4 × 2
  rpncalc eval 3 4 2 '*' +

  # Bind a variable
  rpncalc eval x x '*' 1 + --set x=3

  # Evaluate a saved program and record the result
  rpncalc eval --name area --set r=2 --record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			p, saved, err := src.resolve(cmd.Context(), cmdCtx, args)
			if err != nil {
				return err
			}
			bindings, err := src.bindings()
			if err != nil {
				return err
			}

			value := eval.Run(p, bindings, cmdCtx.EvalOptions()...)
			cmdCtx.Logger.Debug("evaluated program", "program", p.String(), "value", value)

			if record {
				store, cleanup, err := cmdCtx.OpenStore()
				if err != nil {
					return err
				}
				defer cleanup()
				var programID string
				if saved != nil {
					programID = saved.ID
				}
				if _, err := store.RecordEvaluation(cmd.Context(), programID, p, value); err != nil {
					return err
				}
			}

			return renderEval(cmdCtx, p, bindings, value)
		},
	}

	src.register(cmd, true)
	cmd.Flags().BoolVar(&record, "record", false, "Record the result in the evaluation history")
	return cmd
}

func renderEval(c *CommandContext, p program.Program, bindings eval.Bindings, value float64) error {
	r := c.Renderer
	desc := format.Describe(p)
	display := c.FormatValue(value)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := output.EvalOutput{
			Program:     p.String(),
			Description: desc,
			Value:       output.JSONValue(value),
			Display:     display,
			Variables:   program.SortedVariables(p),
		}
		if len(bindings) > 0 {
			out.Bindings = bindings
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Println(output.FormatKeyValue("Program", "`"+p.String()+"`"))
		r.Println(output.FormatKeyValue("Expression", "`"+desc+"`"))
		r.Println(output.FormatKeyValue("Value", display))
	default:
		s := r.Styles()
		if desc != "" {
			r.Println(s.Trace.Render(desc + " ="))
		}
		r.Println(s.Value.Render(display))
	}
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var src programSource

	cmd := &cobra.Command{
		Use:   "describe [words...]",
		Short: "Print the infix form of an RPN program",
		Long: `Print the conventional infix form of an RPN program without evaluating it.

Missing operands print as ?. Each complete expression left on the stack is
printed, bottom first.`,
		Example: `  rpncalc describe 3 5 4 + '*'
  rpncalc describe 3 4 + 5
  rpncalc describe --file program.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			p, _, err := src.resolve(cmd.Context(), cmdCtx, args)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			exprs := format.Expressions(p)
			switch r.EffectiveMode() {
			case output.ModeJSON:
				if exprs == nil {
					exprs = []string{}
				}
				return r.JSON(output.DescribeOutput{
					Program:     p.String(),
					Description: format.Describe(p),
					Expressions: exprs,
				})
			case output.ModeMarkdown:
				for _, e := range exprs {
					r.Println("- `" + e + "`")
				}
			default:
				r.Println(format.Describe(p))
			}
			return nil
		},
	}

	src.register(cmd, false)
	return cmd
}

// NewVarsCommand creates the vars command.
func NewVarsCommand() *cobra.Command {
	var src programSource

	cmd := &cobra.Command{
		Use:   "vars [words...]",
		Short: "List the variables an RPN program uses",
		Example: `  rpncalc vars x y + x '*'
  rpncalc vars --name area`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			p, _, err := src.resolve(cmd.Context(), cmdCtx, args)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			vars := program.SortedVariables(p)
			switch r.EffectiveMode() {
			case output.ModeJSON:
				if vars == nil {
					vars = []string{}
				}
				return r.JSON(output.VarsOutput{Program: p.String(), Variables: vars})
			case output.ModeMarkdown:
				for _, v := range vars {
					r.Println("- " + v)
				}
			default:
				if len(vars) == 0 {
					r.Muted("no variables")
					return nil
				}
				r.Println(strings.Join(vars, " "))
			}
			return nil
		},
	}

	src.register(cmd, false)
	return cmd
}

// describeWithValue formats "description = value" for single-line output.
func describeWithValue(c *CommandContext, p program.Program, value float64) string {
	desc := format.Describe(p)
	if desc == "" {
		return c.FormatValue(value)
	}
	return fmt.Sprintf("%s = %s", desc, c.FormatValue(value))
}
