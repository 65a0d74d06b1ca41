package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/rpncalc/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[`eval`](/cli/eval)")
	assert.Contains(t, string(index), "`RPNCALC_GRAPH_X_MIN`")

	assert.Contains(t, string(index), "## Evaluating programs")
	assert.Contains(t, string(index), "## Saved programs and history")
	assert.NotContains(t, string(index), "## Other")
	assert.Contains(t, string(index), "`×`")
	assert.Contains(t, string(index), "(/reference/operators)")

	graphPage, err := os.ReadFile(filepath.Join(dir, "graph.md"))
	require.NoError(t, err)
	assert.Contains(t, string(graphPage), "`--x-min`")
	assert.Contains(t, string(graphPage), "`graph.x_min`")
	assert.Contains(t, string(graphPage), "`-10`")
	assert.Contains(t, string(graphPage), "## Program Input")
	assert.Contains(t, string(graphPage), "`--set name=value`")
	assert.Contains(t, string(graphPage), "Only one source may be given at a time.")
	assert.Equal(t, 0, strings.Count(string(graphPage), "```")%2, "code fences must be balanced")

	versionPage, err := os.ReadFile(filepath.Join(dir, "version.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(versionPage), "Program Input")
	assert.Contains(t, string(versionPage), "[global options](/cli#global-options)")
}

func TestProgramInputs(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		contains []string
		count    int
	}{
		{"words and sources", "eval", []string{"RPN words", "`--file`", "`--name`", "`--set name=value`"}, 5},
		{"save takes words and a file", "save", []string{"RPN words", "`--file`"}, 3},
		{"watch reads bindings only", "watch", []string{"`--set name=value`"}, 1},
		{"no program", "ops", nil, 0},
	}

	root := cli.NewRootCmd()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.cmd})
			require.NoError(t, err)
			input := programInputs(cmd)
			assert.Len(t, input, tt.count)
			joined := strings.Join(input, "\n")
			for _, want := range tt.contains {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestGenerateOperatorDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateOperatorDocs(dir))

	doc, err := os.ReadFile(filepath.Join(dir, "operators.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "`a b ×` → `a × b`")
	assert.Contains(t, string(doc), "`√(a)`")
	assert.Contains(t, string(doc), "`sqrt`")
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	doc, err := os.ReadFile(filepath.Join(dir, "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "`graph.columns`")
	assert.Contains(t, string(doc), "`RPNCALC_STATE_PATH`")
}

func TestCleanExample(t *testing.T) {
	assert.Equal(t, "a\n  b", cleanExample("    a\n      b\n"))
	assert.Equal(t, "# first\nrpncalc eval 1\n\nrpncalc eval 2", cleanExample("  # first\n  rpncalc eval 1\n\n  rpncalc eval 2"))
	assert.Equal(t, "one two", cleanDescription(" one\n  two "))
}
