// Package operator defines the operators a calculator program can contain.
//
// Every operator is described by a Def: its symbol, arity, precedence,
// rendering style and numeric function. The builtin operators form a
// table (see Standard); user operators are added to a Registry at runtime.
package operator

import (
	"errors"
	"fmt"
	"math"
)

// Arity is the number of operands an operator consumes.
type Arity int

const (
	// Constant operators push a value and consume nothing (π).
	Constant Arity = 0
	// Unary operators consume one operand (√, sin).
	Unary Arity = 1
	// Binary operators consume two operands (+, ×).
	Binary Arity = 2
)

// String returns the string representation of Arity.
func (a Arity) String() string {
	switch a {
	case Constant:
		return "constant"
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

// Precedence levels used when rendering programs as infix text.
// Higher binds tighter.
const (
	PrecedenceNone     = 0
	PrecedenceAddition = 5 // +, −
	PrecedenceMultiply = 6 // ×, ÷

	// PrecedenceAtom is used for literals, variables, constants and
	// function-style operators. Atoms are never parenthesized.
	PrecedenceAtom = math.MaxInt
)

// Style controls how an operator is rendered.
type Style int

const (
	// StyleInfix renders binary operators between their operands: a + b.
	StyleInfix Style = iota
	// StylePrefix renders operators as function calls: sin(a), hypot(a, b).
	StylePrefix
)

// Def describes an operator. A Def must not be modified once it has been
// registered; programs share the registered pointer.
type Def struct {
	Symbol     string
	Arity      Arity
	Precedence int
	Style      Style

	Value  float64                    // result of a Constant operator
	Unary  func(a float64) float64    // function of a Unary operator
	Binary func(a, b float64) float64 // function of a Binary operator

	Doc string
}

// Errors returned by Validate and the Registry.
var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrDuplicate       = errors.New("operator already registered")
	ErrInvalid         = errors.New("invalid operator definition")
)

// Validate checks that the definition is internally consistent.
func (d *Def) Validate() error {
	if d.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalid)
	}
	switch d.Arity {
	case Constant:
	case Unary:
		if d.Unary == nil {
			return fmt.Errorf("%w: %s is unary but has no function", ErrInvalid, d.Symbol)
		}
	case Binary:
		if d.Binary == nil {
			return fmt.Errorf("%w: %s is binary but has no function", ErrInvalid, d.Symbol)
		}
		if d.Style == StyleInfix && d.Precedence == PrecedenceAtom {
			return fmt.Errorf("%w: infix operator %s needs a binary precedence", ErrInvalid, d.Symbol)
		}
	default:
		return fmt.Errorf("%w: %s has arity %d", ErrInvalid, d.Symbol, int(d.Arity))
	}
	return nil
}

// IsAtom reports whether the operator's rendered form needs no
// parentheses, i.e. constants and function-style operators.
func (d *Def) IsAtom() bool {
	return d.Arity != Binary || d.Style == StylePrefix
}
