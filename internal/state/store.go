// Package state persists named calculator programs and an evaluation
// history in SQLite.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/rpncalc/pkg/program"
)

// ErrNotFound is returned when a named program does not exist.
var ErrNotFound = errors.New("not found")

// SavedProgram is a program stored under a name.
type SavedProgram struct {
	ID          string
	Name        string
	Program     program.Program
	Source      string // RPN text
	Description string // infix rendering at save time
	Hash        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Evaluation is one recorded result.
type Evaluation struct {
	ID          string
	ProgramID   string // empty for ad-hoc programs
	Source      string
	Description string
	Value       float64
	EvaluatedAt time.Time
}

// Store is the persistence interface used by the CLI.
type Store interface {
	SaveProgram(ctx context.Context, name string, p program.Program) (*SavedProgram, error)
	GetProgram(ctx context.Context, name string) (*SavedProgram, error)
	ListPrograms(ctx context.Context) ([]*SavedProgram, error)
	DeleteProgram(ctx context.Context, name string) error

	RecordEvaluation(ctx context.Context, programID string, p program.Program, value float64) (*Evaluation, error)
	History(ctx context.Context, limit int) ([]*Evaluation, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
