package commands

import (
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/spf13/cobra"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List available operators",
		Long: `List the builtin operators and the user operators loaded from the
macros directory, with their aliases.

User operators come from Starlark files (macros/*.star). Each exported
function with up to two parameters becomes an operator, callable by its
name or as namespace.name.`,
		Example: `  rpncalc ops
  rpncalc ops -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			reg := cmdCtx.Registry
			defs := reg.List()
			infos := make([]output.OperatorInfo, 0, len(defs))
			for _, d := range defs {
				infos = append(infos, operatorInfo(reg, d))
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(infos)
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				symbol := info.Symbol
				if r.EffectiveMode() == output.ModeText {
					symbol = r.Styles().Operator.Render(symbol)
				}
				prec := ""
				if info.Precedence != 0 {
					prec = strconv.Itoa(info.Precedence)
				}
				rows = append(rows, []string{symbol, info.Arity, info.Style, prec, strings.Join(info.Aliases, " "), info.Doc})
			}
			r.Table([]string{"symbol", "arity", "style", "precedence", "aliases", "doc"}, rows)
			return nil
		},
	}
}

func operatorInfo(reg *operator.Registry, d *operator.Def) output.OperatorInfo {
	info := output.OperatorInfo{
		Symbol:  d.Symbol,
		Arity:   d.Arity.String(),
		Style:   "infix",
		Aliases: reg.AliasesOf(d.Symbol),
		Doc:     d.Doc,
	}
	slices.Sort(info.Aliases)
	if d.Style == operator.StylePrefix {
		info.Style = "prefix"
	}
	if !d.IsAtom() {
		info.Precedence = d.Precedence
	}
	return info
}
