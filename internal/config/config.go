// Package config holds the runtime configuration for repolex. Precedence is
// defaults < .env file < process environment < CLI flags (flags are applied
// by the cmd layer after Load).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults. MaxFileSize and Timeout mirror the parse service's own limits;
// larger files or slower parses are skipped rather than retried.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxFileSize = 200000
	DefaultEndpoint    = "" // empty = in-process tree-sitter parsing
)

// DefaultLanguages is the dispatch allow-list. The remote parse service still
// mis-handles other languages, so this stays narrow until it improves; it is
// a config value, not a constant, for exactly that reason.
var DefaultLanguages = []string{"Python", "Java"}

// Config is the effective configuration for a run.
type Config struct {
	// Endpoint of the remote parse service ("unix:///path" or "host:port").
	// Empty selects the in-process tree-sitter client.
	Endpoint string

	// Timeout bounds a single parse call.
	Timeout time.Duration

	// MaxFileSize in bytes; larger files are skipped before the parser.
	MaxFileSize int64

	// Workers is the pool size. 0 means runtime.NumCPU().
	Workers int

	// Languages is the dispatch allow-list (classifier language names).
	Languages []string

	// StemCacheSize bounds the stemmer's LRU memo. 0 disables caching and
	// keeps the stemmer a pure function.
	StemCacheSize int

	// DBPath is the bbolt run-manifest location.
	DBPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Endpoint:      DefaultEndpoint,
		Timeout:       DefaultTimeout,
		MaxFileSize:   DefaultMaxFileSize,
		Workers:       0,
		Languages:     append([]string(nil), DefaultLanguages...),
		StemCacheSize: 0,
		DBPath:        filepath.Join(home, ".repolex", "repolex.db"),
		LogLevel:      "info",
	}
}

// Load builds a Config from defaults, an optional .env in the working
// directory, and REPOLEX_* environment variables.
func Load() (Config, error) {
	// Missing .env is fine; a present-but-broken one is not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if v := os.Getenv("REPOLEX_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("REPOLEX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REPOLEX_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("REPOLEX_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("REPOLEX_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}
	if v := os.Getenv("REPOLEX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("REPOLEX_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("REPOLEX_LANGUAGES"); v != "" {
		cfg.Languages = splitList(v)
	}
	if v := os.Getenv("REPOLEX_STEM_CACHE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("REPOLEX_STEM_CACHE: %w", err)
		}
		cfg.StemCacheSize = n
	}
	if v := os.Getenv("REPOLEX_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("REPOLEX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// WorkerCount resolves Workers, defaulting to the hardware concurrency.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// AllowsLanguage reports whether lang is on the dispatch allow-list.
func (c Config) AllowsLanguage(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
