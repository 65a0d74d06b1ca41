package calc

import (
	"math"
	"testing"

	"github.com/leapstack-labs/rpncalc/internal/testutil"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, b *Brain, symbol string) float64 {
	t.Helper()
	v, err := b.PerformOperation(symbol)
	require.NoError(t, err)
	return v
}

func TestBrain_Arithmetic(t *testing.T) {
	b := New(WithLogger(testutil.NewTestLogger(t)))

	b.PushOperand(3)
	b.PushOperand(4)
	assert.Equal(t, 7.0, perform(t, b, "+"))
	assert.Equal(t, "3 + 4", DescribeProgram(b.Program()))

	b.PushOperand(2)
	assert.Equal(t, 14.0, perform(t, b, "×"))
	assert.Equal(t, "(3 + 4) × 2", b.Description())
}

func TestBrain_Undo(t *testing.T) {
	b := New()
	b.PushOperand(3)
	b.PushOperand(4)
	perform(t, b, "+")
	b.PushOperand(2)
	perform(t, b, "×")

	require.True(t, b.RemoveTopItemFromProgramStack())
	assert.Equal(t, "3 + 4, 2", DescribeProgram(b.Program()))
	assert.Equal(t, 2.0, b.Value(nil))

	require.True(t, b.RemoveTopItemFromProgramStack())
	assert.Equal(t, "3 + 4", DescribeProgram(b.Program()))
	assert.Equal(t, 7.0, b.Value(nil))
}

func TestBrain_UndoEmpty(t *testing.T) {
	b := New()
	assert.False(t, b.RemoveTopItemFromProgramStack())
	assert.Equal(t, 0, b.Program().Len())
}

func TestBrain_Clear(t *testing.T) {
	b := New()
	b.PushOperand(1)
	b.PushVariable("x")
	perform(t, b, "+")

	b.ClearProgram()
	assert.True(t, b.Program().IsEmpty())
	assert.Equal(t, "", DescribeProgram(b.Program()))
	assert.Equal(t, 0.0, b.Value(nil))
}

func TestBrain_VariableBindings(t *testing.T) {
	b := New()
	b.PushVariable("x")
	b.PushOperand(2)
	perform(t, b, "×")

	assert.Equal(t, 0.0, b.Value(nil))
	assert.Equal(t, 10.0, b.Value(eval.Bindings{"x": 5}))
	assert.Equal(t, 10.0, RunProgram(b.Program(), eval.Bindings{"x": 5}))
	assert.Equal(t, map[string]struct{}{"x": {}}, VariablesUsedInProgram(b.Program()))
	assert.Equal(t, "x × 2", DescribeProgram(b.Program()))
}

func TestBrain_UndefinedNaN(t *testing.T) {
	b := New(WithUndefined(eval.UndefinedNaN))
	b.PushVariable("y")
	b.PushOperand(1)
	perform(t, b, "+")

	assert.True(t, math.IsNaN(b.Value(nil)))
	assert.Equal(t, 3.0, b.Value(eval.Bindings{"y": 2}))
}

func TestBrain_MultipleExpressions(t *testing.T) {
	b := New()
	b.PushOperand(3)
	b.PushOperand(4)
	perform(t, b, "+")
	b.PushOperand(5)

	assert.Equal(t, "3 + 4, 5", DescribeProgram(b.Program()))
	assert.Equal(t, 5.0, b.Value(nil))
}

func TestBrain_Underflow(t *testing.T) {
	b := New()
	assert.Equal(t, 0.0, perform(t, b, "+"))
	assert.Equal(t, "? + ?", b.Description())

	b.ClearProgram()
	b.PushOperand(5)
	assert.Equal(t, 0.0, perform(t, b, "×"))
	assert.Equal(t, "? × 5", b.Description())
}

func TestBrain_InvalidArithmetic(t *testing.T) {
	b := New()
	b.PushOperand(1)
	b.PushOperand(0)
	assert.True(t, math.IsNaN(perform(t, b, "÷")))

	b.ClearProgram()
	b.PushOperand(-4)
	assert.True(t, math.IsNaN(perform(t, b, "√")))
}

func TestBrain_PerformOperation_Aliases(t *testing.T) {
	b := New()
	b.PushOperand(9)
	assert.Equal(t, 3.0, perform(t, b, "sqrt"))
	assert.Equal(t, "√(9)", b.Description())
}

func TestBrain_PerformOperation_Unknown(t *testing.T) {
	b := New()
	b.PushOperand(2)

	v, err := b.PerformOperation("^")
	require.ErrorIs(t, err, ErrUnknownOperator)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 1, b.Program().Len())
}

func TestBrain_CustomRegistry(t *testing.T) {
	r := operator.Default()
	require.NoError(t, r.Register(operator.Def{
		Symbol:     "half",
		Arity:      operator.Unary,
		Style:      operator.StylePrefix,
		Precedence: operator.PrecedenceAtom,
		Unary:      func(a float64) float64 { return a / 2 },
	}))

	b := New(WithRegistry(r))
	b.PushOperand(8)
	assert.Equal(t, 4.0, perform(t, b, "half"))
	assert.Same(t, r, b.Registry())
}

func TestBrain_Enter(t *testing.T) {
	b := New()
	for _, w := range []string{"2", "x", "*"} {
		_, err := b.Enter(w)
		require.NoError(t, err)
	}
	assert.Equal(t, "2 × x", b.Description())

	v, err := b.Enter("2y")
	require.Error(t, err)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 3, b.Program().Len())
}

func TestBrain_EnterLine(t *testing.T) {
	b := New()
	v, err := b.EnterLine("3 4 +")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	v, err = b.EnterLine("5 x+ *")
	require.Error(t, err)
	assert.Equal(t, 7.0, v)
	assert.Equal(t, 3, b.Program().Len())
	assert.Equal(t, "3 + 4", b.Description())

	v, err = b.EnterLine("2 ×")
	require.NoError(t, err)
	assert.Equal(t, 14.0, v)

	require.True(t, b.RemoveTopItemFromProgramStack())
	assert.Equal(t, "3 + 4, 2", b.Description())
}

func TestBrain_SnapshotIsolation(t *testing.T) {
	b := New()
	b.PushOperand(1)
	snap := b.Program()

	b.PushOperand(2)
	perform(t, b, "+")
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 1.0, RunProgram(snap, nil))
}

func TestBrain_Restore(t *testing.T) {
	b := New()
	b.Restore(testutil.MustParse(t, "x x ×"))
	assert.Equal(t, 9.0, b.Value(eval.Bindings{"x": 3}))

	b.PushOperand(1)
	perform(t, b, "+")
	assert.Equal(t, "x × x + 1", b.Description())
}

func TestBrain_Logging(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	b := New(WithLogger(logger))
	b.PushOperand(1)
	perform(t, b, "±")
	assert.Contains(t, buf.String(), "performed operation")
	assert.Contains(t, buf.String(), "symbol=")
}
