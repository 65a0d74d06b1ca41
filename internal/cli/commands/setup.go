package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli/config"
	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/internal/macro"
	"github.com/leapstack-labs/rpncalc/internal/state"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *operator.Registry
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with the operator registry
// (built-ins plus user macros) and a renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	reg := operator.Default()
	n, err := macro.LoadInto(reg, cfg.MacrosDir, logger)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		logger.Debug("loaded user operators", "count", n, "dir", cfg.MacrosDir)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Registry: reg,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// OpenStore opens and migrates the state database. Returns the store and a
// cleanup function that must be called (typically via defer).
func (c *CommandContext) OpenStore() (state.Store, func(), error) {
	store := state.NewSQLiteStore(c.Registry, c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// EvalOptions returns evaluator options from the configuration.
func (c *CommandContext) EvalOptions() []eval.Option {
	return []eval.Option{eval.WithUndefined(c.Cfg.Undefined)}
}

// FormatValue formats v with the configured precision.
func (c *CommandContext) FormatValue(v float64) string {
	return output.FormatValue(v, c.Cfg.Precision)
}

// getConfig returns the current configuration, or the defaults when the
// command runs outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// programSource selects where a command reads its program from: RPN words
// given as arguments, a program file, or a saved program.
type programSource struct {
	file  string
	name  string
	binds []string
}

func (s *programSource) register(cmd *cobra.Command, withBindings bool) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Read the program from a YAML or JSON file")
	cmd.Flags().StringVarP(&s.name, "name", "n", "", "Use a saved program")
	cmd.MarkFlagsMutuallyExclusive("file", "name")
	if withBindings {
		cmd.Flags().StringArrayVar(&s.binds, "set", nil, "Bind a variable (name=value, repeatable)")
	}
}

// resolve returns the selected program. The saved program is nil unless
// --name was given.
func (s *programSource) resolve(ctx context.Context, c *CommandContext, args []string) (program.Program, *state.SavedProgram, error) {
	switch {
	case s.name != "":
		if len(args) > 0 {
			return program.Program{}, nil, fmt.Errorf("--name cannot be combined with program arguments")
		}
		store, cleanup, err := c.OpenStore()
		if err != nil {
			return program.Program{}, nil, err
		}
		defer cleanup()
		saved, err := store.GetProgram(ctx, s.name)
		if err != nil {
			return program.Program{}, nil, err
		}
		return saved.Program, saved, nil

	case s.file != "":
		if len(args) > 0 {
			return program.Program{}, nil, fmt.Errorf("--file cannot be combined with program arguments")
		}
		p, err := program.ReadFile(s.file, c.Registry)
		return p, nil, err

	case len(args) > 0:
		p, err := parser.Parse(strings.Join(args, " "), c.Registry)
		return p, nil, err
	}
	return program.Program{}, nil, fmt.Errorf("no program given (pass RPN words, --file or --name)")
}

func (s *programSource) bindings() (eval.Bindings, error) {
	return parseBindings(s.binds)
}

// parseBindings parses name=value pairs.
func parseBindings(pairs []string) (eval.Bindings, error) {
	b := make(eval.Bindings, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || !parser.IsIdentifier(name) {
			return nil, fmt.Errorf("invalid binding %q (want name=value)", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		b[name] = v
	}
	return b, nil
}
