// Package enry classifies a repository's files by language by shelling out
// to the enry binary. Output is the JSON classification mapping consumed by
// the pipeline dispatcher: {"Python": ["a.py", ...], ...}.
package enry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/corey/repolex/internal/logging"
)

// Classifier implements ports.Classifier via the enry subprocess. Any
// process failure or malformed output is a whole-run failure for the caller.
type Classifier struct {
	bin string
	log *slog.Logger
}

// New builds a Classifier. bin may be empty, in which case "enry" is
// resolved from PATH at Classify time.
func New(bin string, log *slog.Logger) *Classifier {
	if bin == "" {
		bin = "enry"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Classifier{bin: bin, log: log}
}

// Classify runs enry over dir and decodes the language → files mapping.
// File paths in the result are relative to dir.
func (c *Classifier) Classify(ctx context.Context, dir string) (map[string][]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	cmd := exec.CommandContext(ctx, c.bin, abs, "--json")
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("enry: %w: %s", err, ee.Stderr)
		}
		return nil, fmt.Errorf("enry: %w", err)
	}

	classified, err := decode(out)
	if err != nil {
		return nil, err
	}
	c.log.Debug("classified files", "dir", abs, "languages", len(classified))
	return classified, nil
}

// decode parses enry's JSON output. Split out for testing without the
// binary.
func decode(out []byte) (map[string][]string, error) {
	var classified map[string][]string
	if err := json.Unmarshal(out, &classified); err != nil {
		return nil, fmt.Errorf("decode enry output: %w", err)
	}
	return classified, nil
}
