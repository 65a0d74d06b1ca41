package program

import (
	"maps"
	"slices"
)

// VariablesUsed returns the distinct variable names referenced by p.
func VariablesUsed(p Program) map[string]struct{} {
	vars := make(map[string]struct{})
	for _, t := range p.tokens {
		if name, ok := t.Name(); ok {
			vars[name] = struct{}{}
		}
	}
	return vars
}

// SortedVariables returns the distinct variable names of p in sorted order.
func SortedVariables(p Program) []string {
	return slices.Sorted(maps.Keys(VariablesUsed(p)))
}
