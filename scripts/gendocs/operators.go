package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
)

// generateOperatorDocs writes the builtin operator reference.
func generateOperatorDocs(outDir string) error {
	log.Printf("Generating operator docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reg := operator.Default()
	w := NewMarkdownWriter()
	w.Frontmatter("Operators", "Builtin operators of rpncalc")
	w.GeneratedMarker()

	w.Header(1, "Operators")
	w.Paragraph(`Operators are entered after their operands. Binary operators take the
second-to-last value as their left operand. Missing operands evaluate to 0
and print as ?.`)

	groups := []struct {
		title string
		arity operator.Arity
	}{
		{"Binary operators", operator.Binary},
		{"Functions", operator.Unary},
		{"Constants", operator.Constant},
	}
	for _, g := range groups {
		var rows [][]string
		for _, d := range reg.List() {
			if d.Arity != g.arity {
				continue
			}
			aliases := reg.AliasesOf(d.Symbol)
			slices.Sort(aliases)
			for i, a := range aliases {
				aliases[i] = InlineCode(a)
			}
			rows = append(rows, []string{InlineCode(d.Symbol), example(d), strings.Join(aliases, " "), cleanDescription(d.Doc)})
		}
		w.Header(2, g.title)
		w.Table([]string{"Symbol", "Example", "Aliases", "Description"}, rows)
	}

	w.Header(2, "User operators")
	w.Paragraph(`Every exported Starlark function in macros/*.star with up to two
parameters becomes an operator named after the function, and also as
namespace.name where the namespace is the file name. Functions without
parameters are evaluated once at load time and become constants.`)
	w.CodeBlock("python", `# macros/geo.star
def hypot(a, b):
    """Length of the hypotenuse."""
    return math.sqrt(a * a + b * b)`)

	filename := filepath.Join(outDir, "operators.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated operators.md")
	return nil
}

// example shows the RPN input and infix rendering of d.
func example(d *operator.Def) string {
	switch {
	case d.Arity == operator.Constant:
		return InlineCode(d.Symbol)
	case d.Arity == operator.Unary:
		return fmt.Sprintf("%s → %s", InlineCode("a "+d.Symbol), InlineCode(d.Symbol+"(a)"))
	case d.Style == operator.StylePrefix:
		return fmt.Sprintf("%s → %s", InlineCode("a b "+d.Symbol), InlineCode(d.Symbol+"(a, b)"))
	default:
		return fmt.Sprintf("%s → %s", InlineCode("a b "+d.Symbol), InlineCode("a "+d.Symbol+" b"))
	}
}
