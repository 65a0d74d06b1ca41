package parser

import (
	"testing"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r := operator.Default()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n ", ""},
		{"sum", "3 4 +", "3 4 +"},
		{"aliases are canonicalized", "3 4 * 2 / 1 -", "3 4 × 2 ÷ 1 −"},
		{"unicode symbols", "2 π × √", "2 π × √"},
		{"variables", "x y + x ×", "x y + x ×"},
		{"negative and exponent literals", "-3 1.5e2 +", "-3 150 +"},
		{"case-insensitive functions", "x SIN x Cos +", "x sin x cos +"},
		{"nan is a variable name", "nan 1 +", "nan 1 +"},
		{"underscore variable", "_t2 2 ×", "_t2 2 ×"},
		{"mixed whitespace", "1\t2\n+", "1 2 +"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input, r)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	r := operator.Default()

	tests := []struct {
		name       string
		input      string
		wantWord   string
		wantPos    Position
		wantSubstr string
	}{
		{"unknown symbol", "3 4 ^", "^", Position{Word: 2, Offset: 4}, msgNotAWord},
		{"overflowing literal", "1e999 2 +", "1e999", Position{Word: 0, Offset: 0}, msgNonFinite},
		{"signed infinity", "1 +Inf", "+Inf", Position{Word: 1, Offset: 2}, msgNonFinite},
		{"bad variable", "x-y", "x-y", Position{Word: 0, Offset: 0}, msgBadVariable},
		{"digit-led word", "2x", "2x", Position{Word: 0, Offset: 0}, msgNotAWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, r)
			require.Error(t, err)

			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Equal(t, tt.wantWord, synErr.Word)
			assert.Equal(t, tt.wantPos, synErr.Pos)
			assert.Contains(t, synErr.Error(), tt.wantSubstr)
		})
	}
}

func TestParseWords(t *testing.T) {
	p, err := ParseWords([]string{"3", "4 +", "x", "×"}, operator.Default())
	require.NoError(t, err)
	assert.Equal(t, "3 4 + x ×", p.String())
}

func TestParseWord(t *testing.T) {
	r := operator.Default()

	tok, err := ParseWord(" 2.5 ", r)
	require.NoError(t, err)
	assert.Equal(t, token.KindNumber, tok.Kind())

	tok, err = ParseWord("sqrt", r)
	require.NoError(t, err)
	assert.Equal(t, token.KindOperator, tok.Kind())

	tok, err = ParseWord("x", r)
	require.NoError(t, err)
	assert.Equal(t, token.KindVariable, tok.Kind())

	_, err = ParseWord("   ", r)
	assert.ErrorIs(t, err, ErrEmptyWord)
}

func TestLex_Positions(t *testing.T) {
	words := Lex(" ab  c\td")
	require.Len(t, words, 3)
	assert.Equal(t, Word{Text: "ab", Pos: Position{Word: 0, Offset: 1}}, words[0])
	assert.Equal(t, Word{Text: "c", Pos: Position{Word: 1, Offset: 5}}, words[1])
	assert.Equal(t, Word{Text: "d", Pos: Position{Word: 2, Offset: 7}}, words[2])
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"x", "x1", "_", "théta", "rate_2"} {
		assert.True(t, IsIdentifier(s), s)
	}
	for _, s := range []string{"", "1x", "x-y", "a.b", "√"} {
		assert.False(t, IsIdentifier(s), s)
	}
}
