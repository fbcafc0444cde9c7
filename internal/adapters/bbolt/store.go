// Package bbolt implements the ports.RunStore interface using bbolt
// (embedded B+ tree). Each repository gets its own top-level bucket keyed by
// repo ID; within it, file status entries are keyed by relative path. Writes
// are transactional — a crash mid-write cannot corrupt committed entries.
package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/repolex/internal/ports"
)

// Store implements ports.RunStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path, creating
// parent directories as needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStatus stores the terminal status for one file of a repo.
func (s *Store) RecordStatus(repoID, relPath string, status ports.FileStatus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(repoID))
		if err != nil {
			return err
		}
		return b.Put([]byte(relPath), []byte(status))
	})
}

// ParsedFiles returns the relative paths recorded as parsed for a repo.
// An unknown repo yields an empty map.
func (s *Store) ParsedFiles(repoID string) (map[string]bool, error) {
	parsed := make(map[string]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(repoID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if ports.FileStatus(v) == ports.StatusParsed {
				parsed[string(k)] = true
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// DeleteRepo removes all manifest data for a repo. Idempotent.
func (s *Store) DeleteRepo(repoID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(repoID)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(repoID))
	})
}
