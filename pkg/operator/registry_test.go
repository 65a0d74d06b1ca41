package operator

import (
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookup(t *testing.T) {
	r := Default()

	tests := []struct {
		name       string
		input      string
		wantSymbol string
		wantArity  Arity
	}{
		{"plus", "+", "+", Binary},
		{"unicode minus", "−", "−", Binary},
		{"ascii minus alias", "-", "−", Binary},
		{"star alias", "*", "×", Binary},
		{"slash alias", "/", "÷", Binary},
		{"sqrt symbol", "√", "√", Unary},
		{"sqrt alias", "sqrt", "√", Unary},
		{"upper-case function", "SIN", "sin", Unary},
		{"mixed-case alias", "Sqrt", "√", Unary},
		{"pi alias", "pi", "π", Constant},
		{"pi upper", "PI", "π", Constant},
		{"change sign", "+/-", "±", Unary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.Lookup(tt.input)
			require.True(t, ok, "expected %q to resolve", tt.input)
			assert.Equal(t, tt.wantSymbol, d.Symbol)
			assert.Equal(t, tt.wantArity, d.Arity)
		})
	}
}

func TestDefault_LookupUnknown(t *testing.T) {
	r := Default()
	for _, name := range []string{"x", "tan", "", "^"} {
		_, ok := r.Lookup(name)
		assert.False(t, ok, "%q should not resolve", name)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Def{Symbol: "max", Arity: Binary, Style: StylePrefix, Precedence: PrecedenceAtom, Binary: math.Max})
	require.NoError(t, err)

	d, ok := r.Lookup("max")
	require.True(t, ok)
	assert.Equal(t, 7.0, d.Binary(3, 7))

	err = r.Register(Def{Symbol: "max", Arity: Binary, Style: StylePrefix, Precedence: PrecedenceAtom, Binary: math.Max})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	tests := []struct {
		name string
		def  Def
	}{
		{"empty symbol", Def{Arity: Constant}},
		{"unary without function", Def{Symbol: "f", Arity: Unary}},
		{"binary without function", Def{Symbol: "g", Arity: Binary, Precedence: PrecedenceAddition}},
		{"infix binary at atom precedence", Def{Symbol: "h", Arity: Binary, Precedence: PrecedenceAtom, Binary: math.Max}},
		{"arity three", Def{Symbol: "k", Arity: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.def)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRegistry_Alias(t *testing.T) {
	r := Default()

	require.NoError(t, r.Alias("sub", "−"))
	d, ok := r.Lookup("sub")
	require.True(t, ok)
	assert.Equal(t, "−", d.Symbol)

	assert.ErrorIs(t, r.Alias("-", "−"), ErrDuplicate)
	assert.ErrorIs(t, r.Alias("tangent", "tan"), ErrUnknownOperator)

	aliases := r.AliasesOf("−")
	sort.Strings(aliases)
	assert.Equal(t, []string{"-", "sub"}, aliases)
}

func TestRegistry_ListKeepsOrder(t *testing.T) {
	r := Default()
	defs := r.List()
	require.Len(t, defs, len(Standard))
	for i, d := range defs {
		assert.Equal(t, Standard[i].Symbol, d.Symbol)
	}
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	r := Default()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := r.Lookup("SQRT")
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

func TestMustLookup_Panics(t *testing.T) {
	assert.Panics(t, func() { Default().MustLookup("nope") })
}
