package macro

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
)

// MaxSteps bounds the work a single operator call may do. Calls that
// exceed it evaluate to NaN.
const MaxSteps = 1_000_000

// Loader scans a directory for .star files and turns their exported
// functions into operators.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a new macro loader for the specified directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, logger: logger}
}

// LoadedModule is one .star file and the operators it defines.
type LoadedModule struct {
	// Namespace is derived from the filename ("geo" for geo.star).
	Namespace string

	// Path is the path to the .star file.
	Path string

	// Operators holds one definition per exported function or number.
	Operators []operator.Def
}

// Load scans the macro directory and loads all .star files in name order.
// A missing directory is not an error and yields no modules.
func (l *Loader) Load() ([]*LoadedModule, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}
	sort.Strings(files)

	var modules []*LoadedModule
	for _, file := range files {
		module, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded macro file", "path", file, "operators", len(module.Operators))
		modules = append(modules, module)
	}
	return modules, nil
}

func (l *Loader) loadFile(path string) (*LoadedModule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob within the macros directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if !parser.IsIdentifier(namespace) {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("file name %q is not a valid namespace", namespace)}
	}

	parsed, err := ParseStarlarkFile(path, content)
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{
		Name: "load:" + namespace,
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Debug("macro print", "file", path, "message", msg)
		},
	}
	thread.SetMaxExecutionSteps(MaxSteps)

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, Predeclared())
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	globals.Freeze()

	module := &LoadedModule{Namespace: namespace, Path: path}
	for _, name := range globals.Keys() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		def, ok, err := l.toOperator(path, name, globals[name], parsed)
		if err != nil {
			return nil, err
		}
		if ok {
			module.Operators = append(module.Operators, def)
		}
	}
	return module, nil
}

func (l *Loader) toOperator(path, name string, value starlark.Value, parsed *ParsedFile) (operator.Def, bool, error) {
	switch v := value.(type) {
	case starlark.Int, starlark.Float:
		f, _ := starlark.AsFloat(v)
		return operator.Def{
			Symbol:     name,
			Arity:      operator.Constant,
			Style:      operator.StylePrefix,
			Precedence: operator.PrecedenceAtom,
			Value:      f,
			Doc:        fmt.Sprintf("constant %s", name),
		}, true, nil

	case *starlark.Function:
		fail := func(msg string) error {
			if pf := parsed.Function(name); pf != nil {
				return &LoadError{File: path, Line: pf.Line, Message: msg}
			}
			return &LoadError{File: path, Message: msg}
		}
		if v.HasVarargs() || v.HasKwargs() {
			return operator.Def{}, false, fail(fmt.Sprintf("%s: variadic functions cannot be operators", name))
		}

		doc := v.Doc()
		if doc == "" {
			if pf := parsed.Function(name); pf != nil {
				doc = pf.Signature()
			}
		}
		def := operator.Def{
			Symbol:     name,
			Style:      operator.StylePrefix,
			Precedence: operator.PrecedenceAtom,
			Doc:        strings.TrimSpace(doc),
		}

		switch v.NumParams() {
		case 0:
			f, err := call(v)
			if err != nil {
				return operator.Def{}, false, fail(fmt.Sprintf("%s: %v", name, err))
			}
			def.Arity = operator.Constant
			def.Value = f
		case 1:
			def.Arity = operator.Unary
			def.Unary = func(a float64) float64 {
				return callOrNaN(v, a)
			}
		case 2:
			def.Arity = operator.Binary
			def.Binary = func(a, b float64) float64 {
				return callOrNaN(v, a, b)
			}
		default:
			return operator.Def{}, false, fail(fmt.Sprintf("%s takes %d parameters, operators take at most 2", name, v.NumParams()))
		}
		return def, true, nil

	default:
		l.logger.Debug("skipping non-numeric export", "file", path, "name", name, "type", value.Type())
		return operator.Def{}, false, nil
	}
}

// call invokes fn with float arguments on a fresh thread and converts the
// result to float64.
func call(fn *starlark.Function, args ...float64) (float64, error) {
	thread := &starlark.Thread{Name: "call:" + fn.Name()}
	thread.SetMaxExecutionSteps(MaxSteps)

	tuple := make(starlark.Tuple, len(args))
	for i, a := range args {
		tuple[i] = starlark.Float(a)
	}
	result, err := starlark.Call(thread, fn, tuple, nil)
	if err != nil {
		return 0, err
	}
	f, ok := starlark.AsFloat(result)
	if !ok {
		return 0, fmt.Errorf("returned %s, want a number", result.Type())
	}
	return f, nil
}

func callOrNaN(fn *starlark.Function, args ...float64) float64 {
	f, err := call(fn, args...)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Predeclared returns the globals available to every macro file.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"math": starlarkmath.Module,
	}
}

// LoadError represents an error loading a macro file.
type LoadError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("macros/%s:%d: %s", filepath.Base(e.File), e.Line, e.Message)
	}
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
