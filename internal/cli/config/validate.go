package config

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/rpncalc/pkg/parser"
)

// maxPrecision is the most significant digits a float64 can carry.
const maxPrecision = 17

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", maxPrecision, c.Precision)
	}
	return c.Graph.Validate()
}

// Validate checks the graph settings.
func (g *GraphConfig) Validate() error {
	if g.Columns < 1 {
		return fmt.Errorf("graph.columns must be at least 1, got %d", g.Columns)
	}
	if math.IsNaN(g.XMin) || math.IsNaN(g.XMax) || math.IsInf(g.XMin, 0) || math.IsInf(g.XMax, 0) {
		return fmt.Errorf("graph bounds must be finite")
	}
	if g.XMax <= g.XMin {
		return fmt.Errorf("graph.x_max (%g) must be greater than graph.x_min (%g)", g.XMax, g.XMin)
	}
	if !parser.IsIdentifier(g.Variable) {
		return fmt.Errorf("graph.variable %q is not a valid variable name", g.Variable)
	}
	return nil
}
