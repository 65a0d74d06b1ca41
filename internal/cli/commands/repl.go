package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/rpncalc/internal/cli/output"
	"github.com/leapstack-labs/rpncalc/internal/state"
	"github.com/leapstack-labs/rpncalc/pkg/calc"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

const replPrompt = "rpn> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive calculator session",
		Long: `Start an interactive session. Each line holds RPN words that are pushed
or performed in order; after every line the session prints the infix
description and the current value.

Type .help for the session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runREPL(cmd, cmdCtx)
		},
	}
}

func runREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()
	session := newREPLSession(cmdCtx)
	defer session.close()

	var historyFile string
	if cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "rpncalc interactive session")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if quit := session.handleLine(ctx, line); quit {
			break
		}
	}
	return nil
}

// replSession holds the state of one interactive session. The state
// database is opened on first use.
type replSession struct {
	cmdCtx     *CommandContext
	brain      *calc.Brain
	bindings   eval.Bindings
	r          *output.Renderer
	store      state.Store
	closeStore func()
}

func newREPLSession(c *CommandContext) *replSession {
	return &replSession{
		cmdCtx: c,
		brain: calc.New(
			calc.WithRegistry(c.Registry),
			calc.WithLogger(c.Logger),
			calc.WithUndefined(c.Cfg.Undefined),
		),
		bindings: make(eval.Bindings),
		r:        c.Renderer,
	}
}

func (s *replSession) close() {
	if s.closeStore != nil {
		s.closeStore()
	}
}

func (s *replSession) openStore() (state.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	store, cleanup, err := s.cmdCtx.OpenStore()
	if err != nil {
		return nil, err
	}
	s.store, s.closeStore = store, cleanup
	return store, nil
}

// handleLine processes one input line and reports whether the session
// should end.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") && !isNumberWord(line) {
		return s.handleDotCommand(ctx, line)
	}

	if _, err := s.brain.EnterLine(line); err != nil {
		s.r.Error(err.Error())
	}
	s.printTrace()
	return false
}

// isNumberWord reports whether line starts with a number such as ".5".
func isNumberWord(line string) bool {
	first, _, _ := strings.Cut(line, " ")
	_, err := strconv.ParseFloat(first, 64)
	return err == nil
}

func (s *replSession) printTrace() {
	st := s.r.Styles()
	value := s.cmdCtx.FormatValue(s.brain.Value(s.bindings))
	if desc := s.brain.Description(); desc != "" {
		s.r.Println(st.Trace.Render(desc+" =") + " " + st.Value.Render(value))
		return
	}
	s.r.Println(st.Value.Render(value))
}

func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".undo":
		if !s.brain.RemoveTopItemFromProgramStack() {
			s.r.Warning("nothing to undo")
			return false
		}
		s.printTrace()

	case ".clear":
		s.brain.ClearProgram()
		clear(s.bindings)
		s.printTrace()

	case ".vars":
		s.printVars()

	case ".set":
		if err := s.set(args); err != nil {
			s.r.Error(err.Error())
			return false
		}
		s.printTrace()

	case ".save":
		if len(args) != 1 {
			s.r.Error("usage: .save <name>")
			return false
		}
		if err := s.save(ctx, args[0]); err != nil {
			s.r.Error(err.Error())
		}

	case ".load":
		if len(args) != 1 {
			s.r.Error("usage: .load <name>")
			return false
		}
		if err := s.load(ctx, args[0]); err != nil {
			s.r.Error(err.Error())
			return false
		}
		s.printTrace()

	case ".record":
		if err := s.record(ctx); err != nil {
			s.r.Error(err.Error())
		}

	default:
		s.r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

// set binds a variable: ".set x 3" or ".set x=3".
func (s *replSession) set(args []string) error {
	var pair string
	switch len(args) {
	case 1:
		pair = args[0]
	case 2:
		pair = args[0] + "=" + args[1]
	default:
		return errors.New("usage: .set <name> <value>")
	}
	b, err := parseBindings([]string{pair})
	if err != nil {
		return err
	}
	for k, v := range b {
		s.bindings[k] = v
	}
	return nil
}

func (s *replSession) printVars() {
	vars := program.SortedVariables(s.brain.Program())
	if len(vars) == 0 {
		s.r.Muted("no variables")
		return
	}
	for _, name := range vars {
		value, ok := s.bindings[name]
		if !ok {
			s.r.Println(name + " unbound")
			continue
		}
		s.r.Println(name + " = " + s.cmdCtx.FormatValue(value))
	}
}

func (s *replSession) save(ctx context.Context, name string) error {
	if !parser.IsIdentifier(name) {
		return fmt.Errorf("invalid program name %q", name)
	}
	store, err := s.openStore()
	if err != nil {
		return err
	}
	saved, err := store.SaveProgram(ctx, name, s.brain.Program())
	if err != nil {
		return err
	}
	s.r.Success("saved " + saved.Name)
	return nil
}

func (s *replSession) load(ctx context.Context, name string) error {
	store, err := s.openStore()
	if err != nil {
		return err
	}
	saved, err := store.GetProgram(ctx, name)
	if err != nil {
		return err
	}
	s.brain.Restore(saved.Program)
	return nil
}

func (s *replSession) record(ctx context.Context) error {
	store, err := s.openStore()
	if err != nil {
		return err
	}
	p := s.brain.Program()
	value := s.brain.Value(s.bindings)
	if _, err := store.RecordEvaluation(ctx, "", p, value); err != nil {
		return err
	}
	s.r.Success("recorded " + describeWithValue(s.cmdCtx, p, value))
	return nil
}

// completer offers the session commands and every operator symbol and alias.
func (s *replSession) completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".undo"),
		readline.PcItem(".clear"),
		readline.PcItem(".vars"),
		readline.PcItem(".set"),
		readline.PcItem(".save"),
		readline.PcItem(".load"),
		readline.PcItem(".record"),
		readline.PcItem(".quit"),
	}
	reg := s.cmdCtx.Registry
	for _, d := range reg.List() {
		items = append(items, readline.PcItem(d.Symbol))
		for _, alias := range reg.AliasesOf(d.Symbol) {
			items = append(items, readline.PcItem(alias))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .undo             Remove the last entry
  .clear            Clear the program and all bindings
  .vars             Show the variables the program uses
  .set <name> <v>   Bind a variable
  .save <name>      Save the program
  .load <name>      Replace the program with a saved one
  .record           Record the current value in the history
  .quit / .exit     Exit the session

Tips:
  - Enter numbers, variable names and operators separated by spaces
  - Operators accept ASCII aliases: * / - sqrt pi
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}
