package commands

import (
	"math"
	"testing"

	"github.com/leapstack-labs/rpncalc/internal/cli/testutil"
	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREPLSession_Lines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    string // last line of output
		wantErr string
	}{
		{"arithmetic", []string{"3 4 +"}, "3 + 4 = 7", ""},
		{"across lines", []string{"3", "5 4", "+ ×"}, "3 × (5 + 4) = 27", ""},
		{"aliases", []string{"9 sqrt"}, "√(9) = 3", ""},
		{"leading decimal point", []string{".5 2 *"}, "0.5 × 2 = 1", ""},
		{"undo", []string{"3 4 +", ".undo"}, "3, 4 = 4", ""},
		{"clear", []string{"3 4 +", ".clear"}, "0", ""},
		{"binding", []string{".set x 5", "x 2 ×"}, "x × 2 = 10", ""},
		{"binding with equals", []string{".set x=4", "x x ×"}, "x × x = 16", ""},
		{"rejected line enters nothing", []string{"3 $ 4"}, "0", "✗ "},
		{"rejected line keeps earlier lines", []string{"1 2 +", "3 4 x+"}, "1 + 2 = 3", "✗ "},
		{"unknown command", []string{".bogus"}, "", "unknown command: .bogus"},
		{"undo nothing", []string{".undo"}, "", "nothing to undo"},
		{"bad set", []string{".set x"}, "", "invalid binding"},
		{"load unknown", []string{".load missing"}, "", "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdCtx, tr := newTestContext(t)
			s := newREPLSession(cmdCtx)
			defer s.close()

			for _, line := range tt.lines {
				assert.False(t, s.handleLine(t.Context(), line))
			}

			lines := testutil.Lines(tr.Output())
			if tt.want != "" {
				require.NotEmpty(t, lines)
				assert.Equal(t, tt.want, lines[len(lines)-1])
			}
			if tt.wantErr != "" {
				assert.Contains(t, tr.ErrorOutput(), tt.wantErr)
			} else {
				assert.Empty(t, tr.ErrorOutput())
			}
			testutil.AssertNoANSI(t, tr.Output())
		})
	}
}

func TestREPLSession_Quit(t *testing.T) {
	cmdCtx, _ := newTestContext(t)
	s := newREPLSession(cmdCtx)
	assert.True(t, s.handleLine(t.Context(), ".quit"))
	assert.True(t, s.handleLine(t.Context(), ".EXIT"))
	assert.False(t, s.handleLine(t.Context(), "   "))
}

func TestREPLSession_Vars(t *testing.T) {
	cmdCtx, tr := newTestContext(t)
	s := newREPLSession(cmdCtx)

	s.handleLine(t.Context(), ".vars")
	assert.Contains(t, tr.Output(), "no variables")

	tr.Reset()
	s.handleLine(t.Context(), ".set y 2")
	s.handleLine(t.Context(), "x y +")
	tr.Reset()
	s.handleLine(t.Context(), ".vars")
	assert.Equal(t, []string{"x unbound", "y = 2"}, testutil.Lines(tr.Output()))
}

func TestREPLSession_UndefinedPolicy(t *testing.T) {
	cmdCtx, tr := newTestContext(t)
	cmdCtx.Cfg.Undefined = eval.UndefinedNaN
	s := newREPLSession(cmdCtx)

	s.handleLine(t.Context(), "x 1 +")
	assert.Equal(t, []string{"x + 1 = NaN"}, testutil.Lines(tr.Output()))
}

func TestREPLSession_SaveLoadRecord(t *testing.T) {
	cmdCtx, tr := newTestContext(t)
	s := newREPLSession(cmdCtx)
	defer s.close()
	ctx := t.Context()

	s.handleLine(ctx, "r r × π ×")
	s.handleLine(ctx, ".save area")
	assert.Contains(t, tr.Output(), "✓ saved area")

	s.handleLine(ctx, ".clear")
	tr.Reset()
	s.handleLine(ctx, ".load area")
	assert.Equal(t, []string{"r × r × π = 0"}, testutil.Lines(tr.Output()))

	s.handleLine(ctx, ".set r 1")
	tr.Reset()
	s.handleLine(ctx, ".record")
	assert.Contains(t, tr.Output(), "recorded r × r × π = 3.14159265359")

	require.NotNil(t, s.store)
	history, err := s.store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, math.Pi, history[0].Value, 1e-12)
	assert.Empty(t, history[0].ProgramID)

	tr.Reset()
	s.handleLine(ctx, ".save 9bad")
	assert.Contains(t, tr.ErrorOutput(), "invalid program name")
	s.handleLine(ctx, ".save")
	assert.Contains(t, tr.ErrorOutput(), "usage: .save <name>")
}

func TestREPLSession_Completer(t *testing.T) {
	cmdCtx, _ := newTestContext(t)
	s := newREPLSession(cmdCtx)

	names := make(map[string]bool)
	for _, child := range s.completer().GetChildren() {
		names[string(child.GetName())] = true
	}
	for _, want := range []string{".help ", ".undo ", "√ ", "sqrt ", "pi "} {
		assert.True(t, names[want], "completer should offer %q", want)
	}
}
