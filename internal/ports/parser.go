// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic and the
// pipeline depend only on these interfaces, never on concrete implementations.
package ports

import (
	"context"
	"errors"
)

// ErrNoResult is returned by a ParserClient when the backing parser produced
// no tree for a file within the allowed time. The pipeline converts it to a
// nil outcome; it never aborts a run.
var ErrNoResult = errors.New("parser returned no result")

// UAST is the opaque parsed-tree handle for one source file. The pipeline
// does not inspect it beyond nil-ness; downstream token extraction reads
// Identifiers.
type UAST struct {
	Path        string
	Language    string
	NodeCount   int
	Identifiers []string
}

// ParserClient fetches a parsed syntax tree for a single file. One client is
// constructed per pipeline worker and owned by that worker for the lifetime
// of the run — clients are never shared across goroutines.
type ParserClient interface {
	// Parse returns the tree for path, or ErrNoResult when the parser gave
	// up within ctx's deadline. Any other error means the file failed.
	Parse(ctx context.Context, path, language string) (*UAST, error)

	// Close releases the client's connection or native resources.
	Close() error
}

// ClientFactory constructs one ParserClient per worker at pool startup.
type ClientFactory func() (ParserClient, error)
