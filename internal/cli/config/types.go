// Package config provides configuration management for the rpncalc CLI.
package config

import "github.com/leapstack-labs/rpncalc/pkg/eval"

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string               `koanf:"state_path"`
	MacrosDir    string               `koanf:"macros_dir"`
	OutputFormat string               `koanf:"output"`
	Verbose      bool                 `koanf:"verbose"`
	Undefined    eval.UndefinedPolicy `koanf:"undefined"`
	Precision    int                  `koanf:"precision"`
	Graph        GraphConfig          `koanf:"graph"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// GraphConfig holds the defaults of the graph command.
type GraphConfig struct {
	XMin     float64 `koanf:"x_min"`
	XMax     float64 `koanf:"x_max"`
	Columns  int     `koanf:"columns"`
	Variable string  `koanf:"variable"`
	DotMode  bool    `koanf:"dot_mode"`
}

// Default configuration values.
const (
	DefaultStateFile = ".rpncalc/state.db"
	DefaultMacrosDir = "macros"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPrecision = 12
	DefaultUndefined = "zero"

	DefaultGraphXMin     = -10.0
	DefaultGraphXMax     = 10.0
	DefaultGraphColumns  = 40
	DefaultGraphVariable = "x"
)

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		StatePath:    DefaultStateFile,
		MacrosDir:    DefaultMacrosDir,
		OutputFormat: DefaultOutput,
		Undefined:    eval.UndefinedZero,
		Precision:    DefaultPrecision,
		Graph: GraphConfig{
			XMin:     DefaultGraphXMin,
			XMax:     DefaultGraphXMax,
			Columns:  DefaultGraphColumns,
			Variable: DefaultGraphVariable,
		},
	}
}
