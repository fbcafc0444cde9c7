package ports

// FileStatus is the terminal state a pipeline task reached for one file.
type FileStatus string

const (
	StatusParsed  FileStatus = "parsed"
	StatusSkipped FileStatus = "skipped"
	StatusTimeout FileStatus = "timeout"
	StatusErrored FileStatus = "errored"
)

// RunStore persists the per-repository run manifest: the terminal status of
// every file the pipeline has processed, keyed by path relative to the repo
// root. Used by --resume to skip files already parsed successfully.
//
// Writes must be transactional — a crash mid-write must not corrupt
// previously committed entries.
type RunStore interface {
	// RecordStatus stores the terminal status for one file of a repo.
	RecordStatus(repoID, relPath string, status FileStatus) error

	// ParsedFiles returns the set of relative paths recorded as parsed.
	// Returns an empty map for an unknown repo.
	ParsedFiles(repoID string) (map[string]bool, error)

	// DeleteRepo removes all manifest data for a repo. Idempotent.
	DeleteRepo(repoID string) error

	// Close releases the underlying database.
	Close() error
}
