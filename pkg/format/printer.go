package format

import (
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/leapstack-labs/rpncalc/pkg/token"
)

// Placeholder stands in for an operand the program has not supplied yet.
const Placeholder = "?"

// ExpressionSeparator joins independent top-level expressions.
const ExpressionSeparator = ", "

// item is a rendered sub-expression and the precedence of its outermost
// operator.
type item struct {
	text string
	prec int
}

// Printer replays a program over a stack of rendered sub-expressions.
type Printer struct {
	stack []item
	buf   strings.Builder
}

func newPrinter() *Printer {
	return &Printer{}
}

// replay renders every token of p onto the stack.
func (p *Printer) replay(prog program.Program) {
	p.stack = p.stack[:0]
	for i := 0; i < prog.Len(); i++ {
		t := prog.At(i)
		switch t.Kind() {
		case token.KindNumber, token.KindVariable:
			p.push(t.String(), operator.PrecedenceAtom)
		case token.KindOperator:
			def, _ := t.Operator()
			p.formatOperator(def)
		}
	}
}

func (p *Printer) formatOperator(def *operator.Def) {
	switch def.Arity {
	case operator.Constant:
		p.push(def.Symbol, operator.PrecedenceAtom)

	case operator.Unary:
		arg := p.pop()
		p.push(p.call(def.Symbol, arg.text), operator.PrecedenceAtom)

	case operator.Binary:
		left, right := p.popPair()
		if def.Style == operator.StylePrefix {
			p.push(p.call(def.Symbol, left.text, right.text), operator.PrecedenceAtom)
			return
		}
		p.push(p.infix(def, left, right), def.Precedence)
	}
}

// infix joins two operands around def's symbol. Equal precedence is
// parenthesized on the right only, matching left-associative arithmetic.
func (p *Printer) infix(def *operator.Def, left, right item) string {
	p.buf.Reset()
	p.operand(left, left.prec < def.Precedence)
	p.buf.WriteString(" ")
	p.buf.WriteString(def.Symbol)
	p.buf.WriteString(" ")
	p.operand(right, right.prec <= def.Precedence)
	return p.buf.String()
}

func (p *Printer) operand(it item, paren bool) {
	if paren {
		p.buf.WriteString("(")
		p.buf.WriteString(it.text)
		p.buf.WriteString(")")
		return
	}
	p.buf.WriteString(it.text)
}

// call renders a function-style application; arguments are always
// parenthesized, so the result behaves as an atom.
func (p *Printer) call(name string, args ...string) string {
	p.buf.Reset()
	p.buf.WriteString(name)
	p.buf.WriteString("(")
	p.buf.WriteString(strings.Join(args, ", "))
	p.buf.WriteString(")")
	return p.buf.String()
}

func (p *Printer) push(text string, prec int) {
	p.stack = append(p.stack, item{text: text, prec: prec})
}

// pop returns the top item, or the placeholder atom on underflow.
func (p *Printer) pop() item {
	if len(p.stack) == 0 {
		return item{text: Placeholder, prec: operator.PrecedenceAtom}
	}
	it := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return it
}

// popPair pops the operands of a binary operator, right first. Missing
// operands come out as placeholders, so a lone operand is the right one.
func (p *Printer) popPair() (left, right item) {
	right = p.pop()
	left = p.pop()
	return left, right
}

// expressions returns the rendered top-level expressions, oldest first.
func (p *Printer) expressions() []string {
	out := make([]string, len(p.stack))
	for i, it := range p.stack {
		out[i] = it.text
	}
	return out
}
