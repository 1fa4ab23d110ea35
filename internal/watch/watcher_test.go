package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurisko/jbsearch/internal/logging"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func start(t *testing.T, cfg Config) {
	t.Helper()
	w, err := New(cfg, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// let the loop start before writing
	time.Sleep(20 * time.Millisecond)
}

func TestDebounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	start(t, Config{Dirs: []string{dir}, Names: []string{"recentProjects.xml"}, Debounce: 100 * time.Millisecond, OnChange: rec.onChange})

	path := filepath.Join(dir, "recentProjects.xml")
	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("<application/>"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{path}, calls[0])
}

func TestIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	start(t, Config{Dirs: []string{dir}, Names: []string{"state.json"}, Debounce: 20 * time.Millisecond, OnChange: rec.onChange})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestNewVersionDirIsWatched(t *testing.T) {
	parent := t.TempDir()
	rec := &recorder{}
	start(t, Config{Dirs: []string{parent}, Names: []string{"recentProjects.xml"}, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})

	versionDir := filepath.Join(parent, "IntelliJIdea2025.1")
	require.NoError(t, os.Mkdir(versionDir, 0o755))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "recentProjects.xml"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewFailsWithoutDirs(t *testing.T) {
	_, err := New(Config{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, logging.Nop())
	require.Error(t, err)
}

func TestRunTwice(t *testing.T) {
	w, err := New(Config{Dirs: []string{t.TempDir()}}, logging.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	require.ErrorIs(t, w.Run(ctx), errRunTwice)
}
