package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/internal/state"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

// NewSaveCommand creates the save command.
func NewSaveCommand() *cobra.Command {
	var src programSource

	cmd := &cobra.Command{
		Use:   "save <name> [words...]",
		Short: "Save an RPN program under a name",
		Long: `Save an RPN program in the state database. Saving under an existing
name replaces the stored program.`,
		Example: `  rpncalc save area r r '*' pi '*'
  rpncalc save wave --file wave.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !parser.IsIdentifier(name) {
				return fmt.Errorf("invalid program name %q", name)
			}
			if src.name != "" {
				return fmt.Errorf("--name cannot be used with save")
			}

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			p, _, err := src.resolve(cmd.Context(), cmdCtx, args[1:])
			if err != nil {
				return err
			}

			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			saved, err := store.SaveProgram(cmd.Context(), name, p)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(programInfo(saved))
			}
			r.Success(fmt.Sprintf("saved %s: %s", saved.Name, saved.Description))
			return nil
		},
	}

	src.register(cmd, false)
	_ = cmd.Flags().MarkHidden("name")
	return cmd
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var binds []string
	var writePath string

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Show and evaluate a saved program",
		Long: `Load a saved program, print its source and description, and evaluate it.

With --write the program is exported to a YAML or JSON file (chosen by
extension) that eval --file and watch can read.`,
		Example: `  rpncalc load area --set r=2
  rpncalc load area --write area.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			bindings, err := parseBindings(binds)
			if err != nil {
				return err
			}

			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			saved, err := store.GetProgram(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if writePath != "" {
				if err := program.WriteFile(writePath, saved.Program); err != nil {
					return err
				}
			}

			value := eval.Run(saved.Program, bindings, cmdCtx.EvalOptions()...)
			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return renderEval(cmdCtx, saved.Program, bindings, value)
			}
			r.Header(2, saved.Name)
			if r.EffectiveMode() == output.ModeMarkdown {
				r.Println(output.FormatKeyValue("Hash", "`"+saved.Hash+"`"))
			}
			if err := renderEval(cmdCtx, saved.Program, bindings, value); err != nil {
				return err
			}
			if writePath != "" {
				r.Success("wrote " + writePath)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&binds, "set", nil, "Bind a variable (name=value, repeatable)")
	cmd.Flags().StringVarP(&writePath, "write", "w", "", "Export the program to a YAML or JSON file")
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved programs",
		Long: `List all saved programs with their source and description.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  rpncalc list
  rpncalc list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			programs, err := store.ListPrograms(cmd.Context())
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				infos := make([]output.ProgramInfo, 0, len(programs))
				for _, sp := range programs {
					infos = append(infos, programInfo(sp))
				}
				return r.JSON(infos)
			}

			if len(programs) == 0 {
				r.Muted("no saved programs")
				return nil
			}
			r.Header(1, fmt.Sprintf("Programs (%d total)", len(programs)))
			rows := make([][]string, 0, len(programs))
			for _, sp := range programs {
				rows = append(rows, []string{sp.Name, sp.Source, sp.Description, sp.UpdatedAt.Local().Format(time.DateTime)})
			}
			r.Table([]string{"name", "program", "expression", "updated"}, rows)
			return nil
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved program",
		Long:    `Delete a saved program. Its evaluation history is kept.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.DeleteProgram(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, state.ErrNotFound) {
					return fmt.Errorf("no saved program named %q", args[0])
				}
				return err
			}
			cmdCtx.Renderer.Success("deleted " + args[0])
			return nil
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded evaluations",
		Long: `Show evaluations recorded with eval --record or from the REPL, newest first.`,
		Example: `  rpncalc history
  rpncalc history --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			evals, err := store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				infos := make([]output.EvaluationInfo, 0, len(evals))
				for _, e := range evals {
					infos = append(infos, output.EvaluationInfo{
						ID:          e.ID,
						ProgramID:   e.ProgramID,
						Source:      e.Source,
						Description: e.Description,
						Value:       output.JSONValue(e.Value),
						Display:     cmdCtx.FormatValue(e.Value),
						EvaluatedAt: e.EvaluatedAt,
					})
				}
				return r.JSON(infos)
			}

			if len(evals) == 0 {
				r.Muted("no recorded evaluations")
				return nil
			}
			rows := make([][]string, 0, len(evals))
			for i, e := range evals {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					e.Description,
					cmdCtx.FormatValue(e.Value),
					e.EvaluatedAt.Local().Format(time.DateTime),
				})
			}
			r.Table([]string{"#", "expression", "value", "evaluated"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries (0 for all)")
	return cmd
}

func programInfo(sp *state.SavedProgram) output.ProgramInfo {
	return output.ProgramInfo{
		ID:          sp.ID,
		Name:        sp.Name,
		Source:      sp.Source,
		Description: sp.Description,
		Hash:        sp.Hash,
		UpdatedAt:   sp.UpdatedAt,
	}
}
