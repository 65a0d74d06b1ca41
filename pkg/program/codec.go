package program

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/token"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the version written into encoded documents.
const FormatVersion = 1

// Resolver looks operator symbols up when decoding. *operator.Registry
// implements it.
type Resolver interface {
	Lookup(name string) (*operator.Def, bool)
}

// Entry is the serialized form of one token. Exactly one field is set.
type Entry struct {
	Number   *float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Variable string   `json:"variable,omitempty" yaml:"variable,omitempty"`
	Operator string   `json:"operator,omitempty" yaml:"operator,omitempty"`
}

// Document is the on-disk form of a program.
type Document struct {
	Version int     `json:"version" yaml:"version"`
	Program []Entry `json:"program" yaml:"program"`
}

// Codec errors.
var (
	ErrNonFinite    = errors.New("non-finite literal cannot be encoded")
	ErrInvalidEntry = errors.New("invalid program entry")
	ErrVersion      = errors.New("unsupported program format version")
)

// Encode converts p to its serialized entries.
func Encode(p Program) ([]Entry, error) {
	entries := make([]Entry, len(p.tokens))
	for i, t := range p.tokens {
		switch t.Kind() {
		case token.KindNumber:
			v, _ := t.Value()
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("entry %d: %w", i, ErrNonFinite)
			}
			entries[i].Number = &v
		case token.KindVariable:
			entries[i].Variable, _ = t.Name()
		case token.KindOperator:
			def, _ := t.Operator()
			entries[i].Operator = def.Symbol
		}
	}
	return entries, nil
}

// Decode rebuilds a program from entries, resolving operators through r.
func Decode(entries []Entry, r Resolver) (Program, error) {
	tokens := make([]token.Token, 0, len(entries))
	for i, e := range entries {
		set := 0
		if e.Number != nil {
			set++
		}
		if e.Variable != "" {
			set++
		}
		if e.Operator != "" {
			set++
		}
		if set != 1 {
			return Program{}, fmt.Errorf("entry %d: %w: exactly one of number, variable, operator must be set", i, ErrInvalidEntry)
		}

		switch {
		case e.Number != nil:
			tokens = append(tokens, token.Number(*e.Number))
		case e.Variable != "":
			tokens = append(tokens, token.Variable(e.Variable))
		default:
			def, ok := r.Lookup(e.Operator)
			if !ok {
				return Program{}, fmt.Errorf("entry %d: %w: %s", i, operator.ErrUnknownOperator, e.Operator)
			}
			tokens = append(tokens, token.Op(def))
		}
	}
	return Program{tokens: tokens}, nil
}

// MarshalJSON encodes p as an indented JSON document.
func MarshalJSON(p Program) ([]byte, error) {
	doc, err := document(p)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalJSON decodes a JSON document produced by MarshalJSON.
func UnmarshalJSON(data []byte, r Resolver) (Program, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Program{}, fmt.Errorf("failed to parse program JSON: %w", err)
	}
	return fromDocument(doc, r)
}

// MarshalYAML encodes p as a YAML document.
func MarshalYAML(p Program) ([]byte, error) {
	doc, err := document(p)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// UnmarshalYAML decodes a YAML document produced by MarshalYAML.
func UnmarshalYAML(data []byte, r Resolver) (Program, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Program{}, fmt.Errorf("failed to parse program YAML: %w", err)
	}
	return fromDocument(doc, r)
}

// ReadFile loads a program document, choosing the format by extension
// (.json, otherwise YAML).
func ReadFile(path string, r Resolver) (Program, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user on purpose
	if err != nil {
		return Program{}, fmt.Errorf("failed to read program file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return UnmarshalJSON(data, r)
	}
	return UnmarshalYAML(data, r)
}

// WriteFile stores p as a document, choosing the format by extension.
func WriteFile(path string, p Program) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = MarshalJSON(p)
	} else {
		data, err = MarshalYAML(p)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write program file: %w", err)
	}
	return nil
}

// Hash returns a stable content hash of p.
func Hash(p Program) string {
	h := sha256.Sum256([]byte(p.String()))
	return hex.EncodeToString(h[:])
}

func document(p Program) (Document, error) {
	entries, err := Encode(p)
	if err != nil {
		return Document{}, err
	}
	return Document{Version: FormatVersion, Program: entries}, nil
}

func fromDocument(doc Document, r Resolver) (Program, error) {
	if doc.Version != 0 && doc.Version != FormatVersion {
		return Program{}, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}
	return Decode(doc.Program, r)
}
