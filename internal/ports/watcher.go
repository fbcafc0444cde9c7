package ports

// Watcher monitors a repository directory for file changes.
// Implementations debounce rapid editor events.
type Watcher interface {
	// Watch starts monitoring dir recursively and calls onChange with the
	// absolute path of each changed file. Returns once watching is set up.
	Watch(dir string, onChange func(path string)) error

	// Stop ends monitoring and releases resources. Safe to call twice.
	Stop() error
}
