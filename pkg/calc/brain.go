// Package calc provides the calculator session: a Brain records operand
// and operator entries into a program and reports the display value after
// every operation.
//
// The package-level functions DescribeProgram, RunProgram and
// VariablesUsedInProgram work on any program snapshot without a session,
// which is how graphing callers evaluate one program at many x values.
package calc

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/format"
	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/leapstack-labs/rpncalc/pkg/token"
)

// ErrUnknownOperator is returned by PerformOperation for symbols the
// registry does not know.
var ErrUnknownOperator = operator.ErrUnknownOperator

// Brain is one calculator session. It is not safe for concurrent use;
// the owner serializes access.
type Brain struct {
	store     *program.Store
	registry  *operator.Registry
	evaluator *eval.Evaluator
	logger    *slog.Logger
}

// Option configures a Brain.
type Option func(*Brain)

// WithRegistry sets the operator registry used to resolve symbols.
func WithRegistry(r *operator.Registry) Option {
	return func(b *Brain) {
		b.registry = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Brain) {
		b.logger = l
	}
}

// WithUndefined sets the policy for variables without a binding.
func WithUndefined(p eval.UndefinedPolicy) Option {
	return func(b *Brain) {
		b.evaluator = eval.New(eval.WithUndefined(p))
	}
}

// New creates a Brain with an empty program.
func New(opts ...Option) *Brain {
	b := &Brain{
		store: program.NewStore(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = operator.Default()
	}
	if b.evaluator == nil {
		b.evaluator = eval.New()
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	return b
}

// Registry returns the registry the session resolves symbols with.
func (b *Brain) Registry() *operator.Registry {
	return b.registry
}

// PushOperand appends a numeric literal.
func (b *Brain) PushOperand(v float64) {
	b.store.Append(token.Number(v))
	b.logger.Debug("pushed operand", "value", v, "length", b.store.Len())
}

// PushVariable appends a reference to a named variable.
func (b *Brain) PushVariable(name string) {
	b.store.Append(token.Variable(name))
	b.logger.Debug("pushed variable", "name", name, "length", b.store.Len())
}

// PerformOperation appends the operator named by symbol (aliases are
// accepted) and returns the resulting display value. Unknown symbols
// leave the program unchanged.
func (b *Brain) PerformOperation(symbol string) (float64, error) {
	def, ok := b.registry.Lookup(symbol)
	if !ok {
		return b.Value(nil), fmt.Errorf("%w: %s", ErrUnknownOperator, symbol)
	}
	b.store.Append(token.Op(def))
	v := b.Value(nil)
	b.logger.Debug("performed operation", "symbol", def.Symbol, "result", v)
	return v, nil
}

// Enter parses one word and pushes or performs it: numbers become
// operands, operator symbols are performed and identifiers become
// variable references. It returns the display value afterwards.
func (b *Brain) Enter(word string) (float64, error) {
	tok, err := parser.ParseWord(word, b.registry)
	if err != nil {
		return b.Value(nil), err
	}
	b.store.Append(tok)
	return b.Value(nil), nil
}

// EnterLine parses a line of words and appends them in order. A line
// with any rejected word appends nothing.
func (b *Brain) EnterLine(line string) (float64, error) {
	p, err := parser.Parse(line, b.registry)
	if err != nil {
		return b.Value(nil), err
	}
	b.store.Replace(b.store.Snapshot().Append(p.Tokens()...))
	b.logger.Debug("entered line", "words", p.Len(), "length", b.store.Len())
	return b.Value(nil), nil
}

// ClearProgram empties the program.
func (b *Brain) ClearProgram() {
	b.store.Clear()
	b.logger.Debug("cleared program")
}

// RemoveTopItemFromProgramStack undoes the most recent entry. It reports
// false if there was nothing to undo.
func (b *Brain) RemoveTopItemFromProgramStack() bool {
	removed := b.store.RemoveLast()
	b.logger.Debug("removed top item", "removed", removed, "length", b.store.Len())
	return removed
}

// Program returns a snapshot of the current program.
func (b *Brain) Program() program.Program {
	return b.store.Snapshot()
}

// Restore replaces the current program with p.
func (b *Brain) Restore(p program.Program) {
	b.store.Replace(p)
	b.logger.Debug("restored program", "length", p.Len())
}

// Value evaluates the current program with the given bindings.
func (b *Brain) Value(bindings eval.Bindings) float64 {
	return b.evaluator.Run(b.store.Snapshot(), bindings)
}

// Description renders the current program.
func (b *Brain) Description() string {
	return format.Describe(b.store.Snapshot())
}

// DescribeProgram renders p as infix text.
func DescribeProgram(p program.Program) string {
	return format.Describe(p)
}

// RunProgram evaluates p with optional bindings.
func RunProgram(p program.Program, bindings eval.Bindings, opts ...eval.Option) float64 {
	return eval.Run(p, bindings, opts...)
}

// VariablesUsedInProgram returns the distinct variable names in p.
func VariablesUsedInProgram(p program.Program) map[string]struct{} {
	return program.VariablesUsed(p)
}
