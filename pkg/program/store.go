package program

import "github.com/leapstack-labs/rpncalc/pkg/token"

// Store is the mutable program of one calculator session. It performs no
// locking; the owner serializes access.
type Store struct {
	tokens []token.Token
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds one token to the end of the program. Any token is accepted,
// including operators that lack operands.
func (s *Store) Append(tok token.Token) {
	s.tokens = append(s.tokens, tok)
}

// RemoveLast discards the most recently appended token.
// It returns false if the store was already empty.
func (s *Store) RemoveLast() bool {
	if len(s.tokens) == 0 {
		return false
	}
	s.tokens[len(s.tokens)-1] = token.Token{}
	s.tokens = s.tokens[:len(s.tokens)-1]
	return true
}

// Clear empties the store.
func (s *Store) Clear() {
	s.tokens = nil
}

// Replace discards the current program and records p instead.
func (s *Store) Replace(p Program) {
	s.tokens = p.Tokens()
}

// Len returns the number of recorded tokens.
func (s *Store) Len() int {
	return len(s.tokens)
}

// Snapshot returns an immutable copy of the current program.
func (s *Store) Snapshot() Program {
	return New(s.tokens...)
}
