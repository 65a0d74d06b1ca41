package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/rpncalc/pkg/format"
	"github.com/leapstack-labs/rpncalc/pkg/program"
)

var errNotOpened = errors.New("database not opened")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	resolver program.Resolver
	logger   *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store. The resolver decodes
// operator symbols of stored programs.
func NewSQLiteStore(resolver program.Resolver, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{resolver: resolver, logger: logger}
}

// Open opens a connection to the SQLite database, creating parent
// directories as needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	var dsn string
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state database", "path", path)
	return nil
}

// OpenDB uses an existing connection instead of opening one.
func (s *SQLiteStore) OpenDB(db *sql.DB) {
	s.db = db
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Program operations ---

// SaveProgram stores p under name, replacing any program of that name.
func (s *SQLiteStore) SaveProgram(ctx context.Context, name string, p program.Program) (*SavedProgram, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if name == "" {
		return nil, fmt.Errorf("program name cannot be empty")
	}

	body, err := program.MarshalJSON(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode program %s: %w", name, err)
	}

	now := time.Now().UTC()
	saved := &SavedProgram{
		ID:          generateID(),
		Name:        name,
		Program:     p,
		Source:      p.String(),
		Description: format.Describe(p),
		Hash:        program.Hash(p),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO programs (id, name, source, body, hash, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			body = excluded.body,
			hash = excluded.hash,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		saved.ID, saved.Name, saved.Source, string(body), saved.Hash, saved.Description, saved.CreatedAt, saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save program %s: %w", name, err)
	}

	// On conflict the original id and creation time are kept.
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM programs WHERE name = ?`, name).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved program %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit program %s: %w", name, err)
	}

	s.logger.Debug("saved program", "name", name, "id", saved.ID, "hash", saved.Hash)
	return saved, nil
}

const selectProgram = `SELECT id, name, source, body, hash, description, created_at, updated_at FROM programs`

// GetProgram retrieves a program by name.
func (s *SQLiteStore) GetProgram(ctx context.Context, name string) (*SavedProgram, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	saved, body, err := scanProgram(s.db.QueryRowContext(ctx, selectProgram+` WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program %s: %w", name, err)
	}

	saved.Program, err = program.UnmarshalJSON([]byte(body), s.resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to decode program %s: %w", name, err)
	}
	return saved, nil
}

// ListPrograms returns all saved programs ordered by name. Programs whose
// operators can no longer be resolved are returned with an empty Program
// and their stored Source.
func (s *SQLiteStore) ListPrograms(ctx context.Context) ([]*SavedProgram, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, selectProgram+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var out []*SavedProgram
	for rows.Next() {
		saved, body, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		if p, err := program.UnmarshalJSON([]byte(body), s.resolver); err == nil {
			saved.Program = p
		} else {
			s.logger.Warn("stored program cannot be decoded", "name", saved.Name, "error", err)
		}
		out = append(out, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return out, nil
}

// DeleteProgram removes a program by name. Its history rows are kept.
func (s *SQLiteStore) DeleteProgram(ctx context.Context, name string) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete program %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete program %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	s.logger.Debug("deleted program", "name", name)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (*SavedProgram, string, error) {
	saved := &SavedProgram{}
	var body string
	err := row.Scan(&saved.ID, &saved.Name, &saved.Source, &body, &saved.Hash,
		&saved.Description, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, "", err
	}
	return saved, body, nil
}

// --- Evaluation history ---

// RecordEvaluation appends a result to the history. programID may be
// empty for programs that were never saved. Non-finite values are kept
// in text form only.
func (s *SQLiteStore) RecordEvaluation(ctx context.Context, programID string, p program.Program, value float64) (*Evaluation, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	ev := &Evaluation{
		ID:          generateID(),
		ProgramID:   programID,
		Source:      p.String(),
		Description: format.Describe(p),
		Value:       value,
		EvaluatedAt: time.Now().UTC(),
	}

	var num sql.NullFloat64
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		num = sql.NullFloat64{Float64: value, Valid: true}
	}
	var pid sql.NullString
	if programID != "" {
		pid = sql.NullString{String: programID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, program_id, source, description, value, value_text, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, pid, ev.Source, ev.Description, num, strconv.FormatFloat(value, 'g', -1, 64), ev.EvaluatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}
	return ev, nil
}

// History returns the most recent evaluations, newest first. A limit of
// zero or less returns everything.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]*Evaluation, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_id, source, description, value, value_text, evaluated_at
		FROM evaluations
		ORDER BY evaluated_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		ev := &Evaluation{}
		var pid sql.NullString
		var num sql.NullFloat64
		var text string
		if err := rows.Scan(&ev.ID, &pid, &ev.Source, &ev.Description, &num, &text, &ev.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		ev.ProgramID = pid.String
		if num.Valid {
			ev.Value = num.Float64
		} else if ev.Value, err = strconv.ParseFloat(text, 64); err != nil {
			ev.Value = math.NaN()
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return out, nil
}
