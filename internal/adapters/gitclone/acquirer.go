// Package gitclone implements ports.Acquirer. Existing local paths pass
// through untouched; anything else is treated as a git URL and shallow-cloned
// into a temporary directory that the returned cleanup removes.
package gitclone

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/corey/repolex/internal/logging"
)

// Acquirer shallow-clones remote repositories.
type Acquirer struct {
	// TempDir overrides the parent directory for clone targets. Empty uses
	// the system default.
	TempDir string

	log *slog.Logger
}

// New builds an Acquirer.
func New(tempDir string, log *slog.Logger) *Acquirer {
	if log == nil {
		log = logging.Discard()
	}
	return &Acquirer{TempDir: tempDir, log: log}
}

// Acquire returns a scannable directory for urlOrPath. The cleanup func must
// be called on every path out — it is a no-op for local directories and
// removes the temp clone otherwise. A failed clone removes its partial
// directory before returning.
func (a *Acquirer) Acquire(ctx context.Context, urlOrPath string) (string, func(), error) {
	if _, err := os.Stat(urlOrPath); err == nil {
		return urlOrPath, func() {}, nil
	}

	target, err := os.MkdirTemp(a.TempDir, "repolex-")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}

	a.log.Info("cloning repository", "url", urlOrPath)
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", urlOrPath, target)
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(target)
		return "", nil, fmt.Errorf("clone %s: %w", urlOrPath, err)
	}

	return target, func() { os.RemoveAll(target) }, nil
}
