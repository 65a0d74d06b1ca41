package program

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Errors(t *testing.T) {
	one := 1.0
	tests := []struct {
		name    string
		entries []Entry
		wantErr error
	}{
		{"empty entry", []Entry{{}}, ErrInvalidEntry},
		{"two fields", []Entry{{Number: &one, Variable: "x"}}, ErrInvalidEntry},
		{"unknown operator", []Entry{{Operator: "tan"}}, operator.ErrUnknownOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.entries, ops)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_ResolvesAliases(t *testing.T) {
	three := 3.0
	p, err := Decode([]Entry{{Number: &three}, {Variable: "x"}, {Operator: "*"}}, ops)
	require.NoError(t, err)
	assert.Equal(t, "3 x ×", p.String())
}

func TestEncode_RejectsNonFinite(t *testing.T) {
	_, err := Encode(New(token.Number(math.NaN())))
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Encode(New(token.Number(math.Inf(-1))))
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestUnmarshalYAML_HandWritten(t *testing.T) {
	src := `
version: 1
program:
  - variable: x
  - operator: sin
  - number: 2
  - operator: "×"
`
	p, err := UnmarshalYAML([]byte(src), ops)
	require.NoError(t, err)
	assert.Equal(t, "x sin 2 ×", p.String())
}

func TestUnmarshalJSON_VersionCheck(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`{"version": 7, "program": []}`), ops)
	assert.ErrorIs(t, err, ErrVersion)

	_, err = UnmarshalJSON([]byte(`{not json`), ops)
	assert.Error(t, err)
}

func TestFiles(t *testing.T) {
	p := New(token.Number(3), token.Number(4), op("+"), token.Variable("x"), op("×"))
	dir := t.TempDir()

	for _, name := range []string{"prog.json", "prog.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, p))

			got, err := ReadFile(path, ops)
			require.NoError(t, err)
			assert.True(t, got.Equal(p), "got %q", got.String())
		})
	}

	_, err := ReadFile(filepath.Join(dir, "missing.yaml"), ops)
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	a := New(token.Number(1), token.Number(2), op("+"))
	b := New(token.Number(1), token.Number(2), op("+"))
	c := New(token.Number(1), token.Number(2), op("−"))

	assert.Equal(t, Hash(a), Hash(b))
	assert.NotEqual(t, Hash(a), Hash(c))
	assert.Len(t, Hash(a), 64)
}
