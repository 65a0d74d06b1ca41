package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli"
	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	operatorsPage = "/reference/operators"
	configPage    = "/reference/configuration"
)

// commandGroups orders the index by what a command works on. Commands not
// listed end up under "Other".
var commandGroups = []struct {
	title string
	names []string
}{
	{"Evaluating programs", []string{"eval", "describe", "vars", "graph"}},
	{"Interactive use", []string{"repl", "watch"}},
	{"Saved programs and history", []string{"save", "load", "list", "delete", "history"}},
	{"Reference", []string{"ops", "version", "completion"}},
}

// generateCLIDocs writes an index page plus one page per command of the
// rpncalc command tree.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	keys := configKeysByFlag()

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), cliIndex(root, keys), 0600); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range documentedCommands(root) {
		page := commandPage(cmd, keys)
		if err := os.WriteFile(filepath.Join(outDir, cmd.Name()+".md"), page, 0600); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func documentedCommands(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// configKeysByFlag maps a flag name to the configuration key it overrides.
func configKeysByFlag() map[string]ConfigField {
	keys := make(map[string]ConfigField)
	for _, f := range configFields() {
		keys[strings.TrimPrefix(f.Flag, "--")] = f
	}
	return keys
}

func cliIndex(root *cobra.Command, keys map[string]ConfigField) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for rpncalc")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("rpncalc evaluates, describes and graphs RPN programs, and keeps named programs and an evaluation history in a local state database.")
	w.CodeBlock("bash", `go install github.com/leapstack-labs/rpncalc/cmd/rpncalc@latest
rpncalc eval 3 4 2 '*' +`)

	byName := make(map[string]*cobra.Command)
	for _, cmd := range documentedCommands(root) {
		byName[cmd.Name()] = cmd
	}
	for _, g := range commandGroups {
		rows := commandRows(byName, g.names)
		if len(rows) == 0 {
			continue
		}
		w.Header(2, g.title)
		w.Table([]string{"Command", "Description"}, rows)
	}
	if len(byName) > 0 {
		rest := make([]string, 0, len(byName))
		for name := range byName {
			rest = append(rest, name)
		}
		slices.Sort(rest)
		w.Header(2, "Other")
		w.Table([]string{"Command", "Description"}, commandRows(byName, rest))
	}

	w.Header(2, "Program Words")
	w.Paragraph(fmt.Sprintf(
		"A program is a list of words: numbers, variable names and operator symbols. The builtin operators are %s. See the [operator reference](%s) for aliases and user operators.",
		strings.Join(operatorSymbols(), " "), operatorsPage))

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags(), keys)

	w.Header(2, "Environment Variables")
	var envRows [][]string
	for _, f := range configFields() {
		envRows = append(envRows, []string{InlineCode(f.EnvVar()), InlineCode(f.Key), cleanDescription(f.Description)})
	}
	w.Table([]string{"Variable", "Key", "Description"}, envRows)
	w.Paragraph(fmt.Sprintf("Flags take precedence over environment variables, which take precedence over [rpncalc.yaml](%s).", configPage))

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Invalid program, flag or configuration, or a storage error"},
	})
	return w.Bytes()
}

// commandRows removes each listed command from byName and returns its row.
func commandRows(byName map[string]*cobra.Command, names []string) [][]string {
	var rows [][]string
	for _, name := range names {
		cmd, ok := byName[name]
		if !ok {
			continue
		}
		delete(byName, name)
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(name), name)
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	return rows
}

func operatorSymbols() []string {
	defs := operator.Default().List()
	symbols := make([]string, 0, len(defs))
	for _, d := range defs {
		symbols = append(symbols, InlineCode(d.Symbol))
	}
	return symbols
}

func commandPage(cmd *cobra.Command, keys map[string]ConfigField) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Paragraph("Aliases: " + strings.Join(aliases, ", "))
	}

	if input := programInputs(cmd); len(input) > 0 {
		w.Header(2, "Program Input")
		w.BulletList(input)
	}

	if cmd.HasSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if !sub.Hidden {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags(), keys)
	}
	if cmd.HasInheritedFlags() {
		var names []string
		cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
			if !f.Hidden {
				names = append(names, InlineCode("--"+f.Name))
			}
		})
		w.Paragraph(fmt.Sprintf("Also accepts the [global options](/cli#global-options): %s.", strings.Join(names, ", ")))
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}
	return w.Bytes()
}

// programInputs lists the ways cmd accepts a program, judged by its
// positional words and program source flags.
func programInputs(cmd *cobra.Command) []string {
	flags := cmd.LocalFlags()
	var input []string
	if strings.Contains(cmd.Use, "[words...]") {
		input = append(input, fmt.Sprintf("RPN words as arguments; quote shell-special symbols such as %s. See the [operator reference](%s).",
			InlineCode("'*'"), operatorsPage))
	}
	if flags.Lookup("file") != nil {
		input = append(input, InlineCode("--file")+" reads a YAML or JSON program document, chosen by extension.")
	}
	if f := flags.Lookup("name"); f != nil && !f.Hidden {
		input = append(input, InlineCode("--name")+" uses a program stored with "+InlineCode("rpncalc save")+".")
	}
	if len(input) > 1 {
		input = append(input, "Only one source may be given at a time.")
	}
	if flags.Lookup("set") != nil {
		input = append(input, InlineCode("--set name=value")+" binds a variable; repeat it for more. Unbound variables follow "+InlineCode("--undefined")+".")
	}
	return input
}

// writeFlagsTable lists flags with the configuration key each overrides.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet, keys map[string]ConfigField) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option = InlineCode("-"+f.Shorthand) + ", " + option
		}

		def := ""
		switch f.DefValue {
		case "", "false", "[]", "0":
		default:
			def = InlineCode(f.DefValue)
		}

		key := ""
		if cf, ok := keys[f.Name]; ok {
			key = InlineCode(cf.Key)
			if def == "" && cf.Default != "" && cf.Default != "false" {
				def = InlineCode(cf.Default)
			}
		}
		rows = append(rows, []string{option, def, key, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Config key", "Description"}, rows)
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := len(l) - len(strings.TrimLeft(l, " \t")); indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if indent > 0 && len(l) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimSpace(l)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
