// Package token defines the entries a calculator program is made of.
//
// A Token is a closed sum type with exactly three shapes: a numeric
// literal, a variable reference, or an operator. Tokens are values and
// cannot be changed once created.
package token

import (
	"fmt"
	"math"
	"strconv"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
)

// Kind discriminates the three token shapes.
type Kind int32

const (
	KindNumber   Kind = iota // numeric literal: 3, 2.5
	KindVariable             // variable reference: x
	KindOperator             // operator: +, sin, π
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", k)
}

var kindNames = map[Kind]string{
	KindNumber:   "NUMBER",
	KindVariable: "VARIABLE",
	KindOperator: "OPERATOR",
}

// Token is one program entry. The zero value is the number 0.
type Token struct {
	kind  Kind
	value float64
	name  string
	op    *operator.Def
}

// Number returns a numeric literal token.
func Number(v float64) Token {
	return Token{kind: KindNumber, value: v}
}

// Variable returns a variable reference token.
func Variable(name string) Token {
	return Token{kind: KindVariable, name: name}
}

// Op returns an operator token for a registered definition.
func Op(def *operator.Def) Token {
	if def == nil {
		panic("token: nil operator definition")
	}
	return Token{kind: KindOperator, op: def}
}

// Kind returns the token's shape.
func (t Token) Kind() Kind { return t.kind }

// Value returns the literal value of a number token.
func (t Token) Value() (float64, bool) {
	return t.value, t.kind == KindNumber
}

// Name returns the name of a variable token.
func (t Token) Name() (string, bool) {
	return t.name, t.kind == KindVariable
}

// Operator returns the definition of an operator token.
func (t Token) Operator() (*operator.Def, bool) {
	return t.op, t.kind == KindOperator
}

// String returns the text a user would type to enter the token.
func (t Token) String() string {
	switch t.kind {
	case KindNumber:
		return FormatNumber(t.value)
	case KindVariable:
		return t.name
	case KindOperator:
		return t.op.Symbol
	default:
		return t.kind.String()
	}
}

// Equal reports whether two tokens denote the same entry. Operators are
// equal when their symbols and arities match, so programs decoded against
// different registries still compare equal.
func (t Token) Equal(o Token) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindNumber:
		return t.value == o.value || (math.IsNaN(t.value) && math.IsNaN(o.value))
	case KindVariable:
		return t.name == o.name
	case KindOperator:
		return t.op == o.op || (t.op.Symbol == o.op.Symbol && t.op.Arity == o.op.Arity)
	}
	return false
}

// FormatNumber renders a literal the shortest way that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
