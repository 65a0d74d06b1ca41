// Package parser turns RPN text such as "3 4 + x ×" into program tokens.
//
// Words are separated by whitespace. Each word is, in order of
// preference, a finite number literal, a registered operator symbol or
// alias, or a variable name (a letter or underscore followed by letters,
// digits or underscores).
package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/leapstack-labs/rpncalc/pkg/token"
)

// Word is one whitespace-delimited word of source text.
type Word struct {
	Text string
	Pos  Position
}

// Lex splits src into words.
func Lex(src string) []Word {
	var words []Word
	start := -1
	for i, r := range src {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Text: src[start:i], Pos: Position{Word: len(words), Offset: start}})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: src[start:], Pos: Position{Word: len(words), Offset: start}})
	}
	return words
}

// Parse parses src into a program, resolving operators through r.
func Parse(src string, r program.Resolver) (program.Program, error) {
	words := Lex(src)
	tokens := make([]token.Token, 0, len(words))
	for _, w := range words {
		t, err := parseWord(w, r)
		if err != nil {
			return program.Program{}, err
		}
		tokens = append(tokens, t)
	}
	return program.New(tokens...), nil
}

// ParseWords parses pre-split words, as received from a command line.
// A single argument may still hold several words ("3 4 +").
func ParseWords(args []string, r program.Resolver) (program.Program, error) {
	return Parse(strings.Join(args, " "), r)
}

// ParseWord classifies a single word.
func ParseWord(text string, r program.Resolver) (token.Token, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return token.Token{}, ErrEmptyWord
	}
	return parseWord(Word{Text: text}, r)
}

func parseWord(w Word, r program.Resolver) (token.Token, error) {
	v, err := strconv.ParseFloat(w.Text, 64)
	switch {
	case err == nil && !math.IsNaN(v) && !math.IsInf(v, 0):
		return token.Number(v), nil
	case err == nil || errors.Is(err, strconv.ErrRange):
		// "nan", "inf" and friends may still be variable names.
		if !IsIdentifier(w.Text) {
			return token.Token{}, &SyntaxError{Pos: w.Pos, Word: w.Text, Message: msgNonFinite}
		}
	}

	if def, ok := r.Lookup(w.Text); ok {
		return token.Op(def), nil
	}

	if IsIdentifier(w.Text) {
		return token.Variable(w.Text), nil
	}

	msg := msgNotAWord
	if first, _ := utf8.DecodeRuneInString(w.Text); unicode.IsLetter(first) || first == '_' {
		msg = msgBadVariable
	}
	return token.Token{}, &SyntaxError{Pos: w.Pos, Word: w.Text, Message: msg}
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
