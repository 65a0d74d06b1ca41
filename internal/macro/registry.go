package macro

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
)

// Register adds every operator of modules to reg. Each operator is also
// reachable by its qualified name, e.g. "geo.hypot".
func Register(reg *operator.Registry, modules []*LoadedModule) error {
	for _, m := range modules {
		for _, def := range m.Operators {
			if err := reg.Register(def); err != nil {
				return &LoadError{File: m.Path, Message: err.Error(), Err: err}
			}
			if err := reg.Alias(m.Namespace+"."+def.Symbol, def.Symbol); err != nil {
				return &LoadError{File: m.Path, Message: err.Error(), Err: err}
			}
		}
	}
	return nil
}

// LoadInto loads the .star files in dir and registers their operators.
// It returns the number of operators added.
func LoadInto(reg *operator.Registry, dir string, logger *slog.Logger) (int, error) {
	modules, err := NewLoader(dir, logger).Load()
	if err != nil {
		return 0, err
	}
	if err := Register(reg, modules); err != nil {
		return 0, fmt.Errorf("failed to register macros: %w", err)
	}
	n := 0
	for _, m := range modules {
		n += len(m.Operators)
	}
	return n, nil
}
