package ports

import "context"

// Classifier maps a repository directory to its classification: language
// name -> ordered list of file paths relative to the directory. Invoked once
// per run, synchronously. A process failure or malformed output is a
// whole-run failure.
type Classifier interface {
	Classify(ctx context.Context, dir string) (map[string][]string, error)
}

// Acquirer turns a repository URL or local path into a scannable directory.
// cleanup removes any temporary directory the acquirer created and must be
// called on both success and failure paths; for local paths it is a no-op.
type Acquirer interface {
	Acquire(ctx context.Context, urlOrPath string) (dir string, cleanup func(), err error)
}
