package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var binds []string
	var record bool

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-evaluate a program file whenever it changes",
		Long: `Watch a YAML or JSON program file and print its description and value
each time it is written. Runs until interrupted.`,
		Example: `  rpncalc load area --write area.yaml
  rpncalc watch area.yaml --set r=2`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := &programWatcher{cmdCtx: cmdCtx, path: args[0], bindings: bindings}
			if record {
				store, cleanup, err := cmdCtx.OpenStore()
				if err != nil {
					return err
				}
				defer cleanup()
				w.record = func(ctx context.Context, p program.Program, value float64) error {
					_, err := store.RecordEvaluation(ctx, "", p, value)
					return err
				}
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringArrayVar(&binds, "set", nil, "Bind a variable (name=value, repeatable)")
	cmd.Flags().BoolVar(&record, "record", false, "Record every evaluation in the history")
	return cmd
}

// programWatcher evaluates a program file on every change.
type programWatcher struct {
	cmdCtx   *CommandContext
	path     string
	bindings eval.Bindings
	record   func(ctx context.Context, p program.Program, value float64) error

	// ready, if set, is closed once the watch is established.
	ready chan struct{}
}

// Run evaluates the file once, then again after each change, until ctx
// is canceled.
func (w *programWatcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("cannot watch %s: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.cmdCtx.Logger.Debug("watching program file", "path", abs)

	w.evaluate(ctx)
	if w.ready != nil {
		close(w.ready)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.cmdCtx.Logger.Debug("program file changed", "op", event.Op.String())
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			w.evaluate(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.cmdCtx.Renderer.Warning(fmt.Sprintf("watch error: %v", err))
		}
	}
}

// evaluate reads and evaluates the file. Errors are reported and the
// watch continues.
func (w *programWatcher) evaluate(ctx context.Context) {
	r := w.cmdCtx.Renderer
	p, err := program.ReadFile(w.path, w.cmdCtx.Registry)
	if err != nil {
		r.Error(err.Error())
		return
	}
	value := eval.Run(p, w.bindings, w.cmdCtx.EvalOptions()...)
	r.Println(describeWithValue(w.cmdCtx, p, value))

	if w.record != nil {
		if err := w.record(ctx, p, value); err != nil {
			r.Warning(fmt.Sprintf("failed to record evaluation: %v", err))
		}
	}
}
