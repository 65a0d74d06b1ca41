package operator

import (
	"fmt"
	"sync"

	"golang.org/x/text/cases"
)

// Registry maps symbols and aliases to operator definitions.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]*Def
	folded  map[string]*Def // case-folded symbols and aliases
	aliases map[string]string
	order   []*Def
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]*Def),
		folded:  make(map[string]*Def),
		aliases: make(map[string]string),
	}
}

// Default returns a new registry holding the Standard operators and
// their aliases.
func Default() *Registry {
	r := NewRegistry()
	for i := range Standard {
		if err := r.Register(Standard[i]); err != nil {
			panic(fmt.Sprintf("operator: builtin table: %v", err))
		}
	}
	for alias, symbol := range StandardAliases {
		if err := r.Alias(alias, symbol); err != nil {
			panic(fmt.Sprintf("operator: builtin aliases: %v", err))
		}
	}
	return r
}

// Register adds a copy of d to the registry and returns the stored pointer.
func (r *Registry) Register(d Def) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(d.Symbol) {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Symbol)
	}

	stored := &d
	r.defs[d.Symbol] = stored
	r.folded[fold(d.Symbol)] = stored
	r.order = append(r.order, stored)
	return nil
}

// Alias makes alias resolve to the operator registered as symbol.
func (r *Registry) Alias(alias, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperator, symbol)
	}
	if r.taken(alias) {
		return fmt.Errorf("%w: %s", ErrDuplicate, alias)
	}
	r.aliases[alias] = symbol
	r.folded[fold(alias)] = def
	return nil
}

// taken reports whether name is already a symbol or alias. Caller holds mu.
func (r *Registry) taken(name string) bool {
	if _, ok := r.defs[name]; ok {
		return true
	}
	if _, ok := r.aliases[name]; ok {
		return true
	}
	return false
}

// Lookup resolves a symbol or alias. Exact matches win over
// case-insensitive ones, so "SIN" finds sin but "π" never collides.
func (r *Registry) Lookup(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.defs[name]; ok {
		return d, true
	}
	if symbol, ok := r.aliases[name]; ok {
		return r.defs[symbol], true
	}
	d, ok := r.folded[fold(name)]
	return d, ok
}

// MustLookup is like Lookup but panics when name is unknown.
// Intended for tests and static tables.
func (r *Registry) MustLookup(name string) *Def {
	d, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("operator: %v: %s", ErrUnknownOperator, name))
	}
	return d
}

// List returns all operators in registration order.
func (r *Registry) List() []*Def {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Def, len(r.order))
	copy(out, r.order)
	return out
}

// AliasesOf returns the aliases registered for symbol, unordered.
func (r *Registry) AliasesOf(symbol string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for alias, s := range r.aliases {
		if s == symbol {
			out = append(out, alias)
		}
	}
	return out
}

// fold normalizes a name for case-insensitive lookup.
// A Caser is stateful, so a fresh one is used per call.
func fold(name string) string {
	return cases.Fold().String(name)
}
