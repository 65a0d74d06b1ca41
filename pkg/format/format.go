// Package format renders calculator programs as human-readable infix text.
//
// Rendering is the string counterpart of evaluation: the program is
// replayed over a stack, but sub-expressions are rendered with the
// parentheses their operator precedence requires. Incomplete programs
// render a placeholder ("?") for every missing operand, so describing
// never fails.
package format

import (
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/program"
)

// Describe renders every independent expression of p, oldest first,
// joined by ", ". The last one is the expression whose value the
// evaluator reports. The empty program renders as "".
func Describe(p program.Program) string {
	return strings.Join(Expressions(p), ExpressionSeparator)
}

// Expressions returns the rendered top-level expressions of p, oldest first.
func Expressions(p program.Program) []string {
	pr := newPrinter()
	pr.replay(p)
	return pr.expressions()
}

// DescribeLast renders only the trailing expression of p.
func DescribeLast(p program.Program) string {
	exprs := Expressions(p)
	if len(exprs) == 0 {
		return ""
	}
	return exprs[len(exprs)-1]
}
