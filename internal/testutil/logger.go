// Package testutil provides shared helpers for calculator tests.
package testutil

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/leapstack-labs/rpncalc/pkg/operator"
	"github.com/leapstack-labs/rpncalc/pkg/parser"
	"github.com/leapstack-labs/rpncalc/pkg/program"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogBuffer collects log output for assertions.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewCaptureLogger returns a debug-level logger and the buffer it writes to.
func NewCaptureLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// MustParse parses src with the default operators or fails the test.
func MustParse(t testing.TB, src string) program.Program {
	t.Helper()
	return MustParseWith(t, src, operator.Default())
}

// MustParseWith parses src with the given registry or fails the test.
func MustParseWith(t testing.TB, src string, r *operator.Registry) program.Program {
	t.Helper()
	p, err := parser.Parse(src, r)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return p
}
