package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/rpncalc/pkg/eval"
	"github.com/leapstack-labs/rpncalc/pkg/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, path, src string) {
	t.Helper()
	cmdCtx, _ := newTestContext(t)
	p, _, err := (&programSource{}).resolve(t.Context(), cmdCtx, []string{src})
	require.NoError(t, err)
	require.NoError(t, program.WriteFile(path, p))
}

func TestProgramWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.yaml")
	writeProgram(t, path, "x 2 ×")

	cmdCtx, tr := newTestContext(t)
	var mu sync.Mutex
	var recorded []float64
	w := &programWatcher{
		cmdCtx:   cmdCtx,
		path:     path,
		bindings: eval.Bindings{"x": 4},
		record: func(_ context.Context, _ program.Program, value float64) error {
			mu.Lock()
			defer mu.Unlock()
			recorded = append(recorded, value)
			return nil
		},
		ready: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	assert.Contains(t, tr.Output(), "x × 2 = 8")

	writeProgram(t, path, "x x ×")
	require.Eventually(t, func() bool {
		return strings.Contains(tr.Output(), "x × x = 16")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(recorded), 2)
	assert.Equal(t, 8.0, recorded[0])
	assert.Equal(t, 16.0, recorded[len(recorded)-1])
}

func TestProgramWatcher_BadFileKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cmdCtx, tr := newTestContext(t)
	w := &programWatcher{cmdCtx: cmdCtx, path: path, ready: make(chan struct{})}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.ready
	assert.Contains(t, tr.ErrorOutput(), "✗ ")

	writeProgram(t, path, "1 2 +")
	require.Eventually(t, func() bool {
		return strings.Contains(tr.Output(), "1 + 2 = 3")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestProgramWatcher_MissingFile(t *testing.T) {
	cmdCtx, _ := newTestContext(t)
	w := &programWatcher{cmdCtx: cmdCtx, path: filepath.Join(t.TempDir(), "nope.yaml")}
	err := w.Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot watch")
}
