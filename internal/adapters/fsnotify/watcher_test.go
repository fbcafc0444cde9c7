package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var changed []string

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Watch(dir, func(path string) {
		mu.Lock()
		changed = append(changed, path)
		mu.Unlock()
	}))

	target := filepath.Join(dir, "svc.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1"), 0o644))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, "expected a change event for the written file")

	mu.Lock()
	assert.Equal(t, target, changed[0])
	mu.Unlock()
}

func TestWatcher_SkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	var mu sync.Mutex
	var changed []string

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Watch(dir, func(path string) {
		mu.Lock()
		changed = append(changed, path)
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.py"), []byte("x"), 0o644))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, "expected the non-ignored write to arrive")

	mu.Lock()
	defer mu.Unlock()
	for _, p := range changed {
		assert.NotContains(t, p, ".git")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
