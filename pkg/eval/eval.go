// Package eval replays calculator programs as an RPN stack machine.
//
// Evaluation is total: it never fails and never panics. Programs that are
// incomplete (an operator with too few operands) contribute 0 for that
// operator, unbound variables resolve through an UndefinedPolicy, and
// invalid arithmetic (division by zero, negative roots) yields NaN.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/leapstack-labs/rpncalc/pkg/token"
)

// Bindings supplies variable values at evaluation time.
type Bindings map[string]float64

// UndefinedPolicy decides the value of a variable with no binding.
type UndefinedPolicy int

const (
	// UndefinedZero evaluates unbound variables as 0.
	UndefinedZero UndefinedPolicy = iota
	// UndefinedNaN evaluates unbound variables as NaN.
	UndefinedNaN
)

// String returns the configuration name of the policy.
func (u UndefinedPolicy) String() string {
	switch u {
	case UndefinedZero:
		return "zero"
	case UndefinedNaN:
		return "nan"
	default:
		return fmt.Sprintf("UndefinedPolicy(%d)", int(u))
	}
}

// ParseUndefinedPolicy parses "zero" or "nan" (case-insensitive).
func ParseUndefinedPolicy(s string) (UndefinedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero", "0", "":
		return UndefinedZero, nil
	case "nan":
		return UndefinedNaN, nil
	default:
		return UndefinedZero, fmt.Errorf("invalid undefined-variable policy %q (want zero or nan)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UndefinedPolicy) UnmarshalText(text []byte) error {
	p, err := ParseUndefinedPolicy(string(text))
	if err != nil {
		return err
	}
	*u = p
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (u UndefinedPolicy) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u UndefinedPolicy) value() float64 {
	if u == UndefinedNaN {
		return math.NaN()
	}
	return 0
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithUndefined sets the policy for unbound variables.
func WithUndefined(p UndefinedPolicy) Option {
	return func(e *Evaluator) {
		e.undefined = p
	}
}

// Evaluator runs programs and keeps its operand stack between runs, so
// evaluating one program at many variable values allocates nothing.
// An Evaluator is not safe for concurrent use; use one per goroutine.
type Evaluator struct {
	undefined UndefinedPolicy
	stack     []float64
}

// New returns an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates p with the given bindings and returns the value of the
// last expression, or 0 if nothing is left on the stack.
func (e *Evaluator) Run(p program.Program, bindings Bindings) float64 {
	e.stack = e.stack[:0]

	for i := 0; i < p.Len(); i++ {
		t := p.At(i)
		switch t.Kind() {
		case token.KindNumber:
			v, _ := t.Value()
			e.push(v)

		case token.KindVariable:
			name, _ := t.Name()
			if v, ok := bindings[name]; ok {
				e.push(v)
			} else {
				e.push(e.undefined.value())
			}

		case token.KindOperator:
			def, _ := t.Operator()
			e.apply(def)
		}
	}

	if len(e.stack) == 0 {
		return 0
	}
	return e.stack[len(e.stack)-1]
}

func (e *Evaluator) apply(def *operator.Def) {
	switch def.Arity {
	case operator.Constant:
		e.push(def.Value)

	case operator.Unary:
		a, ok := e.pop()
		if !ok {
			e.push(0)
			return
		}
		e.push(def.Unary(a))

	case operator.Binary:
		if len(e.stack) < 2 {
			// Consume whatever partial operand is there; the operator
			// contributes 0 until it has both.
			e.stack = e.stack[:0]
			e.push(0)
			return
		}
		b, _ := e.pop()
		a, _ := e.pop()
		e.push(def.Binary(a, b))
	}
}

func (e *Evaluator) push(v float64) {
	e.stack = append(e.stack, v)
}

func (e *Evaluator) pop() (float64, bool) {
	if len(e.stack) == 0 {
		return 0, false
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, true
}

// Run evaluates p with a fresh Evaluator. It is safe for concurrent use.
func Run(p program.Program, bindings Bindings, opts ...Option) float64 {
	return New(opts...).Run(p, bindings)
}

// RunSimple evaluates p without variable bindings.
func RunSimple(p program.Program) float64 {
	return Run(p, nil)
}
