// Package program holds calculator programs: ordered token sequences
// recorded in entry order and replayed by the evaluator and describer.
//
// A Program value is an immutable snapshot. Store is the mutable,
// append-only session log a calculator records entries into.
package program

import (
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/token"
)

// Program is an immutable sequence of tokens. The zero value is the
// empty program. Every prefix of a program is itself replayable.
type Program struct {
	tokens []token.Token
}

// New returns a program holding a copy of tokens.
func New(tokens ...token.Token) Program {
	if len(tokens) == 0 {
		return Program{}
	}
	cp := make([]token.Token, len(tokens))
	copy(cp, tokens)
	return Program{tokens: cp}
}

// Len returns the number of tokens.
func (p Program) Len() int { return len(p.tokens) }

// IsEmpty reports whether the program has no tokens.
func (p Program) IsEmpty() bool { return len(p.tokens) == 0 }

// At returns the i-th token. It panics if i is out of range.
func (p Program) At(i int) token.Token { return p.tokens[i] }

// Tokens returns a copy of the token sequence.
func (p Program) Tokens() []token.Token {
	cp := make([]token.Token, len(p.tokens))
	copy(cp, p.tokens)
	return cp
}

// Append returns a new program with toks added to the end.
func (p Program) Append(toks ...token.Token) Program {
	out := make([]token.Token, 0, len(p.tokens)+len(toks))
	out = append(out, p.tokens...)
	out = append(out, toks...)
	return Program{tokens: out}
}

// RemoveLast returns a new program without the final token.
// The empty program is returned unchanged.
func (p Program) RemoveLast() Program {
	if len(p.tokens) == 0 {
		return p
	}
	return New(p.tokens[:len(p.tokens)-1]...)
}

// Equal reports whether both programs hold equal tokens in the same order.
func (p Program) Equal(o Program) bool {
	if len(p.tokens) != len(o.tokens) {
		return false
	}
	for i := range p.tokens {
		if !p.tokens[i].Equal(o.tokens[i]) {
			return false
		}
	}
	return true
}

// String renders the program as space-separated RPN words.
func (p Program) String() string {
	words := make([]string, len(p.tokens))
	for i, t := range p.tokens {
		words[i] = t.String()
	}
	return strings.Join(words, " ")
}
