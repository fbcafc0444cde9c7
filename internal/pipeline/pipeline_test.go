package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/repolex/internal/ports"
)

// stubClient is a controllable ParserClient for pool tests. It records every
// path it is asked to parse.
type stubClient struct {
	mu     *sync.Mutex
	parsed *[]string
	delay  time.Duration
	errFor map[string]error
	nilFor map[string]bool
	closed *int
}

func (s *stubClient) Parse(ctx context.Context, path, language string) (*ports.UAST, error) {
	s.mu.Lock()
	*s.parsed = append(*s.parsed, path)
	s.mu.Unlock()

	if s.delay > 0 {
		// Deliberately ignores ctx: the pool must not rely on client
		// cooperation to honor the timeout.
		time.Sleep(s.delay)
	}
	base := filepath.Base(path)
	if err, ok := s.errFor[base]; ok {
		return nil, err
	}
	if s.nilFor[base] {
		return nil, nil
	}
	return &ports.UAST{Path: path, Language: language, NodeCount: 1}, nil
}

func (s *stubClient) Close() error {
	s.mu.Lock()
	*s.closed++
	s.mu.Unlock()
	return nil
}

// stubHarness builds a factory handing out stubClients that share recording
// state, plus accessors for the recorded calls.
type stubHarness struct {
	mu     sync.Mutex
	parsed []string
	closed int
	made   int
	delay  time.Duration
	errFor map[string]error
	nilFor map[string]bool
}

func (h *stubHarness) factory() (ports.ParserClient, error) {
	h.mu.Lock()
	h.made++
	h.mu.Unlock()
	return &stubClient{
		mu:     &h.mu,
		parsed: &h.parsed,
		closed: &h.closed,
		delay:  h.delay,
		errFor: h.errFor,
		nilFor: h.nilFor,
	}, nil
}

func (h *stubHarness) parsedPaths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.parsed...)
}

// statusRecorder collects OnStatus callbacks.
type statusRecorder struct {
	mu sync.Mutex
	m  map[string]ports.FileStatus
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{m: make(map[string]ports.FileStatus)}
}

func (r *statusRecorder) record(rel string, st ports.FileStatus) {
	r.mu.Lock()
	r.m[rel] = st
	r.mu.Unlock()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func drain(t *testing.T, ch <-chan *ports.UAST) []*ports.UAST {
	t.Helper()
	var out []*ports.UAST
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-deadline:
			t.Fatal("stream did not close in time")
		}
	}
}

func TestFetch_OneOutcomePerAllowListedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "print(1)")
	writeFile(t, dir, "b.py", "print(2)")
	writeFile(t, dir, "C.java", "class C {}")
	writeFile(t, dir, "x.rb", "puts 1")

	h := &stubHarness{}
	rec := newStatusRecorder()
	f := New(h.factory, Options{
		Languages: []string{"Python", "Java"},
		Workers:   2,
		OnStatus:  rec.record,
	})

	classified := map[string][]string{
		"Python": {"a.py", "b.py"},
		"Java":   {"C.java"},
		"Ruby":   {"x.rb"}, // not on the allow-list, never dispatched
	}
	ch, err := f.Fetch(context.Background(), dir, classified)
	require.NoError(t, err)

	results := drain(t, ch)
	assert.Len(t, results, 3)
	assert.Len(t, rec.m, 3)
	assert.NotContains(t, rec.m, "x.rb")
	for _, st := range rec.m {
		assert.Equal(t, ports.StatusParsed, st)
	}
	// One client per worker, all closed after the join.
	assert.Equal(t, 2, h.made)
	assert.Equal(t, 2, h.closed)
}

func TestFetch_EmptyClassification(t *testing.T) {
	h := &stubHarness{}
	f := New(h.factory, Options{Languages: []string{"Python"}})

	ch, err := f.Fetch(context.Background(), t.TempDir(), map[string][]string{})
	require.NoError(t, err)
	assert.Empty(t, drain(t, ch))
	assert.Zero(t, h.made, "no workers should be started for an empty mapping")
}

func TestFetch_OversizeFileNeverReachesParser(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.py", "x = 1 # padded well past the size cap")
	writeFile(t, dir, "ok.py", "y=2")

	h := &stubHarness{}
	rec := newStatusRecorder()
	f := New(h.factory, Options{
		Languages:   []string{"Python"},
		MaxFileSize: 10,
		Workers:     1,
		OnStatus:    rec.record,
	})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"big.py", "ok.py"}})
	require.NoError(t, err)

	results := drain(t, ch)
	assert.Len(t, results, 1)
	assert.Equal(t, ports.StatusSkipped, rec.m["big.py"])
	assert.Equal(t, ports.StatusParsed, rec.m["ok.py"])
	for _, p := range h.parsedPaths() {
		assert.NotEqual(t, "big.py", filepath.Base(p), "oversize file must be skipped before the client")
	}
}

func TestFetch_TimeoutProducesNilOutcome(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "slow.py", "pass")

	h := &stubHarness{delay: 2 * time.Second}
	rec := newStatusRecorder()
	f := New(h.factory, Options{
		Languages: []string{"Python"},
		Timeout:   50 * time.Millisecond,
		Workers:   1,
		OnStatus:  rec.record,
	})

	start := time.Now()
	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"slow.py"}})
	require.NoError(t, err)

	results := drain(t, ch)
	assert.Empty(t, results, "timed-out parse must not be yielded")
	assert.Equal(t, ports.StatusTimeout, rec.m["slow.py"])
	assert.Less(t, time.Since(start), time.Second,
		"collector must not wait for the abandoned parse")
}

func TestFetch_PerFileErrorDoesNotAbortRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.py", "x")
	writeFile(t, dir, "good.py", "y")

	h := &stubHarness{errFor: map[string]error{"bad.py": assert.AnError}}
	rec := newStatusRecorder()
	f := New(h.factory, Options{
		Languages: []string{"Python"},
		Workers:   2,
		OnStatus:  rec.record,
	})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"bad.py", "good.py"}})
	require.NoError(t, err)

	results := drain(t, ch)
	assert.Len(t, results, 1)
	assert.Equal(t, ports.StatusErrored, rec.m["bad.py"])
	assert.Equal(t, ports.StatusParsed, rec.m["good.py"])
}

func TestFetch_EmptyTreeCountsAsTimeout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.py", "")

	h := &stubHarness{nilFor: map[string]bool{"empty.py": true}}
	rec := newStatusRecorder()
	f := New(h.factory, Options{Languages: []string{"Python"}, Workers: 1, OnStatus: rec.record})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"empty.py"}})
	require.NoError(t, err)

	assert.Empty(t, drain(t, ch))
	assert.Equal(t, ports.StatusTimeout, rec.m["empty.py"])
}

func TestFetch_SymlinkResolvedBeforeParse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "real.py", "x=1")
	link := filepath.Join(dir, "link.py")
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.py"), link))

	h := &stubHarness{}
	f := New(h.factory, Options{Languages: []string{"Python"}, Workers: 1})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"link.py"}})
	require.NoError(t, err)
	results := drain(t, ch)

	require.Len(t, results, 1)
	parsed := h.parsedPaths()
	require.Len(t, parsed, 1)
	assert.Equal(t, "real.py", filepath.Base(parsed[0]))
}

func TestFetch_SkipSetFiltersAtDispatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "done.py", "x")
	writeFile(t, dir, "todo.py", "y")

	h := &stubHarness{}
	rec := newStatusRecorder()
	f := New(h.factory, Options{
		Languages: []string{"Python"},
		Workers:   1,
		Skip:      map[string]bool{"done.py": true},
		OnStatus:  rec.record,
	})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"done.py", "todo.py"}})
	require.NoError(t, err)

	assert.Len(t, drain(t, ch), 1)
	assert.NotContains(t, rec.m, "done.py")
}

func TestFetch_FactoryFailureAbortsSetup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x")

	factory := func() (ports.ParserClient, error) { return nil, assert.AnError }
	f := New(factory, Options{Languages: []string{"Python"}, Workers: 2})

	ch, err := f.Fetch(context.Background(), dir, map[string][]string{"Python": {"a.py"}})
	require.Error(t, err)
	assert.Empty(t, drain(t, ch))
}
