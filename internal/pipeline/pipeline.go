// Package pipeline implements the concurrent parse pipeline: a classification
// mapping goes in, a stream of parsed-tree handles comes out. A fixed pool of
// workers pulls (file, language) tasks, applies per-file guards (symlink
// resolution, size cap, timeout), and pushes exactly one outcome per task; a
// single collector drains the expected count, logs progress, and forwards
// non-nil results to the caller. One file's failure never aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/corey/repolex/internal/logging"
	"github.com/corey/repolex/internal/ports"
)

// Options tune a Fetcher. Zero values select the documented defaults.
type Options struct {
	// Timeout bounds one parse call. Default 10s.
	Timeout time.Duration

	// MaxFileSize in bytes; larger files are skipped before the parser is
	// invoked. Default 200000.
	MaxFileSize int64

	// Workers is the pool size. Default runtime.NumCPU().
	Workers int

	// Languages is the dispatch allow-list (classifier language names).
	// Files in other languages are not dispatched at all.
	Languages []string

	// Skip holds relative paths to leave out of dispatch entirely (resume).
	Skip map[string]bool

	// OnStatus, when set, receives the terminal status of every dispatched
	// task. Called from the collector goroutine only.
	OnStatus func(relPath string, status ports.FileStatus)

	// Logger receives progress and per-file warnings.
	Logger *slog.Logger
}

// Fetcher runs the dispatch → pool → collect pipeline over a classification
// mapping. Construct once per configuration; Fetch may be called per run.
type Fetcher struct {
	factory  ports.ClientFactory
	timeout  time.Duration
	maxSize  int64
	workers  int
	allowed  map[string]bool
	skip     map[string]bool
	onStatus func(string, ports.FileStatus)
	log      *slog.Logger
}

// task is one unit of work: a single classified file.
type task struct {
	abs  string
	rel  string
	lang string
}

// outcome pairs a task with its terminal result. A nil uast is the explicit
// no-result marker: counted by the collector, never forwarded.
type outcome struct {
	t      task
	uast   *ports.UAST
	status ports.FileStatus
}

// New creates a Fetcher. factory is invoked once per worker at pool startup
// so each worker owns an independent client for the whole run.
func New(factory ports.ClientFactory, opts Options) *Fetcher {
	f := &Fetcher{
		factory:  factory,
		timeout:  opts.Timeout,
		maxSize:  opts.MaxFileSize,
		workers:  opts.Workers,
		skip:     opts.Skip,
		onStatus: opts.OnStatus,
		log:      opts.Logger,
		allowed:  make(map[string]bool, len(opts.Languages)),
	}
	for _, l := range opts.Languages {
		f.allowed[l] = true
	}
	if f.timeout <= 0 {
		f.timeout = 10 * time.Second
	}
	if f.maxSize <= 0 {
		f.maxSize = 200000
	}
	if f.workers <= 0 {
		f.workers = runtime.NumCPU()
	}
	if f.log == nil {
		f.log = logging.Discard()
	}
	return f
}

// Fetch dispatches one task per allow-listed classified file and returns a
// channel of parsed-tree handles, closed after every task has produced its
// outcome and all workers have been joined. Results arrive in completion
// order — no relation to dispatch order is guaranteed. An empty mapping
// yields an immediately closed channel.
//
// The only error returned here is pool setup failure (a client could not be
// constructed); everything per-file is absorbed into nil outcomes.
func (f *Fetcher) Fetch(ctx context.Context, root string, classified map[string][]string) (<-chan *ports.UAST, error) {
	tasks := f.dispatch(root, classified)
	out := make(chan *ports.UAST)

	if len(tasks) == 0 {
		close(out)
		return out, nil
	}

	// Every worker gets its own client, constructed up front so a broken
	// parser backend fails the run before any work starts.
	clients := make([]ports.ParserClient, 0, f.workers)
	for i := 0; i < f.workers; i++ {
		c, err := f.factory()
		if err != nil {
			for _, open := range clients {
				open.Close()
			}
			close(out)
			return out, fmt.Errorf("parser client %d: %w", i, err)
		}
		clients = append(clients, c)
	}

	taskCh := make(chan task, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	// Closing the channel is the termination signal: each worker exits its
	// range loop once the queue drains.
	close(taskCh)

	resCh := make(chan outcome, len(tasks))
	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(client ports.ParserClient) {
			defer wg.Done()
			defer client.Close()
			for t := range taskCh {
				resCh <- f.process(ctx, client, t)
			}
		}(c)
	}

	go f.collect(ctx, root, len(tasks), resCh, out, &wg)
	return out, nil
}

// dispatch flattens the classification mapping into the task list, applying
// the language allow-list and the resume skip set. Languages are visited in
// sorted order so dispatch is deterministic.
func (f *Fetcher) dispatch(root string, classified map[string][]string) []task {
	langs := make([]string, 0, len(classified))
	for lang := range classified {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var tasks []task
	for _, lang := range langs {
		if !f.allowed[lang] {
			continue
		}
		for _, rel := range classified[lang] {
			if f.skip[rel] {
				continue
			}
			tasks = append(tasks, task{
				abs:  filepath.Join(root, rel),
				rel:  rel,
				lang: lang,
			})
		}
	}
	return tasks
}

// collect drains exactly total outcomes, forwards non-nil trees to out, and
// closes out once the workers are joined. Pending-count bookkeeping lives
// here and nowhere else; reaching zero — not queue emptiness — is the
// termination condition.
func (f *Fetcher) collect(ctx context.Context, root string, total int, resCh <-chan outcome, out chan<- *ports.UAST, wg *sync.WaitGroup) {
	reportEvery := total / 100
	if reportEvery < 1 {
		reportEvery = 1
	}

	pending := total
	for pending > 0 {
		o := <-resCh
		pending--
		if f.onStatus != nil {
			f.onStatus(o.t.rel, o.status)
		}
		if o.uast != nil {
			select {
			case out <- o.uast:
			case <-ctx.Done():
				// Caller is gone; keep draining so accounting and worker
				// shutdown still complete.
			}
		}
		if pending%reportEvery == 0 {
			f.log.Info("pending parse tasks", "root", root, "remaining", pending)
		}
	}

	wg.Wait()
	close(out)
}

// process runs the guard sequence for one task and always returns an
// outcome. Guards fire in order: symlink resolution, size cap, bounded
// parse. Any failure short-circuits to a nil result.
func (f *Fetcher) process(ctx context.Context, client ports.ParserClient, t task) outcome {
	path := t.abs
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			f.log.Warn("broken symlink", "path", path, "error", err)
			return outcome{t: t, status: ports.StatusErrored}
		}
		path = resolved
	}

	fi, err := os.Stat(path)
	if err != nil {
		f.log.Warn("stat failed", "path", path, "error", err)
		return outcome{t: t, status: ports.StatusErrored}
	}
	if fi.Size() > f.maxSize {
		f.log.Warn("file too big", "path", path, "size", fi.Size(), "limit", f.maxSize)
		return outcome{t: t, status: ports.StatusSkipped}
	}

	uast, err := f.parseBounded(ctx, client, path, t.lang)
	switch {
	case errors.Is(err, ports.ErrNoResult) || errors.Is(err, context.DeadlineExceeded):
		f.log.Warn("parser timed out", "path", path, "timeout", f.timeout)
		return outcome{t: t, status: ports.StatusTimeout}
	case err != nil:
		f.log.Error("parse failed", "path", path, "language", t.lang, "error", err)
		return outcome{t: t, status: ports.StatusErrored}
	case uast == nil:
		// A "success" with no tree is treated like a timeout.
		f.log.Warn("parser returned empty tree", "path", path)
		return outcome{t: t, status: ports.StatusTimeout}
	}
	return outcome{t: t, uast: uast, status: ports.StatusParsed}
}

// parseBounded invokes the client under the per-task timeout. The call runs
// in its own goroutine so a client that ignores its context cannot wedge the
// worker: when the deadline fires we move on whether or not the underlying
// parse truly stopped.
func (f *Fetcher) parseBounded(ctx context.Context, client ports.ParserClient, path, lang string) (*ports.UAST, error) {
	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	type reply struct {
		uast *ports.UAST
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		u, err := client.Parse(tctx, path, lang)
		done <- reply{u, err}
	}()

	select {
	case r := <-done:
		return r.uast, r.err
	case <-tctx.Done():
		return nil, tctx.Err()
	}
}
