package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/rpncalc/internal/cli/config"
)

// ConfigField represents a configuration key.
type ConfigField struct {
	Key         string
	Type        string
	Default     string
	Flag        string
	Description string
}

// EnvVar returns the environment variable that sets the key.
func (f ConfigField) EnvVar() string {
	return "RPNCALC_" + strings.ToUpper(strings.ReplaceAll(f.Key, ".", "_"))
}

// configFields describes the keys of internal/cli/config.Config.
func configFields() []ConfigField {
	d := config.Default()
	return []ConfigField{
		{Key: "state_path", Type: "string", Default: d.StatePath, Flag: "--state", Description: "Path to the state database (:memory: for none)"},
		{Key: "macros_dir", Type: "string", Default: d.MacrosDir, Flag: "--macros-dir", Description: "Directory of Starlark user operators"},
		{Key: "output", Type: "string", Default: d.OutputFormat, Flag: "--output", Description: "Output format: auto, text, markdown, json"},
		{Key: "verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Debug logging on stderr"},
		{Key: "undefined", Type: "string", Default: d.Undefined.String(), Flag: "--undefined", Description: "Value of unbound variables: zero or nan"},
		{Key: "precision", Type: "int", Default: strconv.Itoa(d.Precision), Flag: "--precision", Description: "Significant digits of displayed values (0 for shortest exact)"},
		{Key: "graph.x_min", Type: "float", Default: strconv.FormatFloat(d.Graph.XMin, 'g', -1, 64), Flag: "--x-min", Description: "Lower bound of the graph domain"},
		{Key: "graph.x_max", Type: "float", Default: strconv.FormatFloat(d.Graph.XMax, 'g', -1, 64), Flag: "--x-max", Description: "Upper bound of the graph domain"},
		{Key: "graph.columns", Type: "int", Default: strconv.Itoa(d.Graph.Columns), Flag: "--columns", Description: "Number of graph samples"},
		{Key: "graph.variable", Type: "string", Default: d.Graph.Variable, Flag: "--variable", Description: "Variable bound to x when graphing"},
		{Key: "graph.dot_mode", Type: "bool", Default: "false", Flag: "--dot-mode", Description: "Plot points without connecting them"},
	}
}

// generateConfigDocs writes the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "rpncalc.yaml reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(`rpncalc reads rpncalc.yaml (or rpncalc.yml) from the current directory or
the nearest parent directory, or the file named by --config. Relative
paths are resolved against the directory holding the file.`)

	var rows [][]string
	for _, f := range configFields() {
		rows = append(rows, []string{InlineCode(f.Key), f.Type, InlineCode(f.Default), InlineCode(f.Flag), InlineCode(f.EnvVar()), f.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Flag", "Environment", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `state_path: .rpncalc/state.db
macros_dir: macros
undefined: nan
precision: 10
graph:
  x_min: -6.28
  x_max: 6.28
  columns: 60`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
