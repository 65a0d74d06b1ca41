// Package macro loads user-defined operators from Starlark files.
// This file contains static parsing that extracts signatures without execution.

package macro

import (
	"path/filepath"
	"strings"

	"go.starlark.net/syntax"
)

// ParsedFunction is a top-level function found in a .star file.
type ParsedFunction struct {
	Name      string   `json:"name"`
	Params    []string `json:"params"`
	Docstring string   `json:"docstring"`
	Line      int      `json:"line"`
}

// ParsedFile is the static view of one .star file.
type ParsedFile struct {
	Namespace string            `json:"namespace"`
	Path      string            `json:"path"`
	Functions []*ParsedFunction `json:"functions"`
}

// Function returns the parsed function with the given name, or nil.
func (f *ParsedFile) Function(name string) *ParsedFunction {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// ParseStarlarkFile statically parses a .star file and extracts the
// public function signatures. It does not execute the file.
func ParseStarlarkFile(filename string, content []byte) (*ParsedFile, error) {
	f, err := syntax.Parse(filename, content, 0)
	if err != nil {
		return nil, &LoadError{File: filename, Message: err.Error()}
	}

	pf := &ParsedFile{
		Namespace: strings.TrimSuffix(filepath.Base(filename), ".star"),
		Path:      filename,
	}

	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}
		pf.Functions = append(pf.Functions, &ParsedFunction{
			Name:      def.Name.Name,
			Line:      int(def.Name.NamePos.Line),
			Params:    extractParams(def.Params),
			Docstring: extractDocstring(def.Body),
		})
	}

	return pf, nil
}

func extractParams(params []syntax.Expr) []string {
	var out []string
	for _, param := range params {
		switch p := param.(type) {
		case *syntax.Ident:
			out = append(out, p.Name)
		case *syntax.BinaryExpr:
			// def f(x=1)
			if ident, ok := p.X.(*syntax.Ident); ok && p.Op == syntax.EQ {
				out = append(out, ident.Name+"="+exprToString(p.Y))
			}
		case *syntax.UnaryExpr:
			if ident, ok := p.X.(*syntax.Ident); ok {
				switch p.Op {
				case syntax.STAR:
					out = append(out, "*"+ident.Name)
				case syntax.STARSTAR:
					out = append(out, "**"+ident.Name)
				}
			}
		}
	}
	return out
}

func extractDocstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}
	exprStmt, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}
	lit, ok := exprStmt.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}
	s, _ := lit.Value.(string)
	return strings.TrimSpace(s)
}

func exprToString(expr syntax.Expr) string {
	switch e := expr.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			return "-" + exprToString(e.X)
		}
		return exprToString(e.X)
	default:
		return "..."
	}
}

// Signature returns a human-readable signature such as "hypot(a, b)".
func (f *ParsedFunction) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}
