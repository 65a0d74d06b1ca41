package program

import (
	"testing"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ops = operator.Default()

func op(symbol string) token.Token {
	return token.Op(ops.MustLookup(symbol))
}

func TestProgram_IsImmutable(t *testing.T) {
	src := []token.Token{token.Number(1), token.Number(2), op("+")}
	p := New(src...)

	src[0] = token.Number(99)
	assert.Equal(t, "1 2 +", p.String(), "New must copy its input")

	toks := p.Tokens()
	toks[1] = token.Variable("x")
	assert.Equal(t, "1 2 +", p.String(), "Tokens must return a copy")

	q := p.Append(token.Number(3))
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 4, q.Len())

	r := q.RemoveLast()
	assert.True(t, r.Equal(p))
	assert.Equal(t, 4, q.Len())
}

func TestProgram_Empty(t *testing.T) {
	var p Program
	assert.True(t, p.IsEmpty())
	assert.Equal(t, "", p.String())
	assert.True(t, p.RemoveLast().IsEmpty())
	assert.True(t, p.Equal(New()))
}

func TestStore_AppendRemoveClear(t *testing.T) {
	s := NewStore()
	assert.False(t, s.RemoveLast(), "undo on empty store")

	s.Append(token.Number(3))
	s.Append(token.Number(4))
	s.Append(op("+"))
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "3 4 +", s.Snapshot().String())

	assert.True(t, s.RemoveLast())
	assert.Equal(t, "3 4", s.Snapshot().String())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Snapshot().IsEmpty())
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	s.Append(token.Number(1))
	snap := s.Snapshot()

	s.Append(token.Number(2))
	s.RemoveLast()
	s.RemoveLast()
	s.Append(token.Variable("x"))

	assert.Equal(t, "1", snap.String())
	assert.Equal(t, "x", s.Snapshot().String())
}

func TestStore_UndoIsLeftInverseOfAppend(t *testing.T) {
	programs := []Program{
		New(),
		New(token.Number(1)),
		New(token.Number(1), token.Number(2), op("+")),
		New(token.Variable("x"), op("sin"), op("π"), op("×")),
	}
	appended := []token.Token{
		token.Number(7),
		token.Variable("y"),
		op("÷"),
		op("cos"),
	}

	for _, p := range programs {
		for _, tok := range appended {
			s := NewStore()
			s.Replace(p)
			s.Append(tok)
			require.True(t, s.RemoveLast())
			assert.True(t, s.Snapshot().Equal(p), "undo(append(%q, %s))", p.String(), tok)
		}
	}
}

func TestVariablesUsed(t *testing.T) {
	p := New(token.Variable("x"), token.Variable("y"), token.Variable("x"), op("+"))

	vars := VariablesUsed(p)
	assert.Equal(t, map[string]struct{}{"x": {}, "y": {}}, vars)
	assert.Equal(t, []string{"x", "y"}, SortedVariables(p))

	assert.Empty(t, VariablesUsed(New(token.Number(1), op("π"))))
}
