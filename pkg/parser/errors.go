package parser

import (
	"errors"
	"fmt"
)

// Position locates a word in the source text.
type Position struct {
	Word   int // zero-based word index
	Offset int // byte offset of the word's first character
}

// SyntaxError reports a word that is neither a number, an operator nor a
// variable name.
type SyntaxError struct {
	Pos     Position
	Word    string
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at word %d (offset %d): %s: %q", e.Pos.Word+1, e.Pos.Offset, e.Message, e.Word)
}

// ErrEmptyWord is returned by ParseWord for blank input.
var ErrEmptyWord = errors.New("empty word")

// Common error messages
const (
	msgNotAWord    = "not a number, operator or variable name"
	msgNonFinite   = "number literal is not finite"
	msgBadVariable = "invalid variable name"
)
