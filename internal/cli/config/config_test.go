package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlagSet mirrors the persistent and graph flags registered by the CLI.
func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	flags.String("macros-dir", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("undefined", "", "")
	flags.Int("precision", 0, "")
	flags.Float64("x-min", 0, "")
	flags.Float64("x-max", 0, "")
	flags.Int("columns", 0, "")
	flags.String("variable", "", "")
	flags.Bool("dot-mode", false, "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rpncalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultMacrosDir), cfg.MacrosDir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, eval.UndefinedZero, cfg.Undefined)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, DefaultGraphXMin, cfg.Graph.XMin)
	assert.Equal(t, DefaultGraphXMax, cfg.Graph.XMax)
	assert.Equal(t, DefaultGraphColumns, cfg.Graph.Columns)
	assert.Equal(t, "x", cfg.Graph.Variable)
	assert.False(t, cfg.Graph.DotMode)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
state_path: data/calc.db
undefined: nan
precision: 6
graph:
  x_min: -1
  x_max: 1
  columns: 20
  variable: t
  dot_mode: true
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "data", "calc.db"), cfg.StatePath)
	assert.Equal(t, eval.UndefinedNaN, cfg.Undefined)
	assert.Equal(t, 6, cfg.Precision)
	assert.Equal(t, GraphConfig{XMin: -1, XMax: 1, Columns: 20, Variable: "t", DotMode: true}, cfg.Graph)
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "precision: 4\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, filepath.Join(dir, DefaultMacrosDir), cfg.MacrosDir)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "precision: 4\ngraph:\n  columns: 10\n")
	t.Setenv("RPNCALC_PRECISION", "8")
	t.Setenv("RPNCALC_GRAPH_COLUMNS", "30")
	t.Setenv("RPNCALC_UNDEFINED", "nan")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Precision)
	assert.Equal(t, 30, cfg.Graph.Columns)
	assert.Equal(t, eval.UndefinedNaN, cfg.Undefined)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "precision: 4\noutput: text\ngraph:\n  x_max: 3\n")
	t.Setenv("RPNCALC_PRECISION", "8")

	flags := newFlagSet()
	require.NoError(t, flags.Set("precision", "10"))
	require.NoError(t, flags.Set("x-max", "50"))
	require.NoError(t, flags.Set("dot-mode", "true"))
	require.NoError(t, flags.Set("output", "json"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Precision)
	assert.Equal(t, 50.0, cfg.Graph.XMax)
	assert.True(t, cfg.Graph.DotMode)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("RPNCALC_GRAPH_VARIABLE", "t")

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, "t", cfg.Graph.Variable)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
}

func TestLoadConfig_PathFlagsRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	projectDir := t.TempDir()
	path := writeConfig(t, projectDir, "state_path: from_file.db\n")
	cwd := t.TempDir()
	t.Chdir(cwd)

	flags := newFlagSet()
	require.NoError(t, flags.Set("state", "from_flag.db"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "from_flag.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(projectDir, DefaultMacrosDir), cfg.MacrosDir)
}

func TestLoadConfig_MemoryStateKept(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := newFlagSet()
	require.NoError(t, flags.Set("state", ":memory:"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad output", "output: yaml\n", "invalid output format"},
		{"bad precision", "precision: 40\n", "precision must be between"},
		{"bad undefined", "undefined: maybe\n", "unable to decode config"},
		{"inverted domain", "graph:\n  x_min: 5\n  x_max: 1\n", "must be greater than"},
		{"no columns", "graph:\n  columns: 0\n", "at least 1"},
		{"bad variable", "graph:\n  variable: 2x\n", "not a valid variable name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Same(t, logger, GetLogger(context.WithValue(context.Background(), LoggerKey(), logger)))
}

func TestDefault(t *testing.T) {
	require.NoError(t, Default().Validate())
}
