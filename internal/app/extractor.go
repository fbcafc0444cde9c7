// Package app wires the adapters into the full extraction flow: acquire a
// repository, classify its files, fetch parsed trees through the pipeline,
// and optionally reduce identifier text to normalized tokens.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corey/repolex/internal/config"
	"github.com/corey/repolex/internal/domain/token"
	"github.com/corey/repolex/internal/logging"
	"github.com/corey/repolex/internal/pipeline"
	"github.com/corey/repolex/internal/ports"
)

// Extractor runs the end-to-end extraction for one repository.
type Extractor struct {
	cfg        config.Config
	acquirer   ports.Acquirer
	classifier ports.Classifier
	factory    ports.ClientFactory
	store      ports.RunStore // optional; enables --resume and the manifest
	stemmer    *token.Stemmer
	log        *slog.Logger
}

// NewExtractor assembles an Extractor. store may be nil.
func NewExtractor(cfg config.Config, acquirer ports.Acquirer, classifier ports.Classifier, factory ports.ClientFactory, store ports.RunStore, log *slog.Logger) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{
		cfg:        cfg,
		acquirer:   acquirer,
		classifier: classifier,
		factory:    factory,
		store:      store,
		stemmer:    token.NewStemmer(cfg.StemCacheSize),
		log:        log,
	}
}

// RunOptions control a single Run.
type RunOptions struct {
	// Resume skips files the manifest already records as parsed.
	Resume bool

	// EmitTokens runs every identifier through split+stem and counts the
	// distinct normalized tokens.
	EmitTokens bool

	// Each, when set, receives every parsed tree as it arrives, before the
	// run finishes — the streaming hand-off to the feature stage.
	Each func(*ports.UAST)
}

// RunStats summarizes one extraction run.
type RunStats struct {
	Dispatched int // allow-listed files handed to the pool
	Parsed     int
	Skipped    int // oversize
	TimedOut   int
	Errored    int
	Tokens     int // distinct normalized tokens, when EmitTokens
}

// Run executes the full flow for a repository URL or local path. Acquisition
// and classification failures abort the run; everything per-file is absorbed
// by the pipeline and shows up in the stats.
func (e *Extractor) Run(ctx context.Context, urlOrPath string, opts RunOptions) (*RunStats, error) {
	dir, cleanup, err := e.acquirer.Acquire(ctx, urlOrPath)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	defer cleanup()

	e.log.Info("classifying files", "repo", urlOrPath)
	classified, err := e.classifier.Classify(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	for lang, files := range classified {
		e.log.Info("classified", "language", lang, "files", len(files))
	}

	var skip map[string]bool
	if opts.Resume && e.store != nil {
		skip, err = e.store.ParsedFiles(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		if len(skip) > 0 {
			e.log.Info("resuming", "already_parsed", len(skip))
		}
	}

	stats := &RunStats{}
	fetcher := pipeline.New(e.factory, pipeline.Options{
		Timeout:     e.cfg.Timeout,
		MaxFileSize: e.cfg.MaxFileSize,
		Workers:     e.cfg.WorkerCount(),
		Languages:   e.cfg.Languages,
		Skip:        skip,
		Logger:      e.log,
		OnStatus: func(rel string, status ports.FileStatus) {
			stats.Dispatched++
			switch status {
			case ports.StatusParsed:
				stats.Parsed++
			case ports.StatusSkipped:
				stats.Skipped++
			case ports.StatusTimeout:
				stats.TimedOut++
			case ports.StatusErrored:
				stats.Errored++
			}
			if e.store != nil {
				if err := e.store.RecordStatus(urlOrPath, rel, status); err != nil {
					e.log.Warn("manifest write failed", "file", rel, "error", err)
				}
			}
		},
	})

	e.log.Info("fetching parsed trees", "repo", urlOrPath)
	stream, err := fetcher.Fetch(ctx, dir, classified)
	if err != nil {
		return nil, fmt.Errorf("start pipeline: %w", err)
	}

	tokens := make(map[string]struct{})
	for uast := range stream {
		if opts.Each != nil {
			opts.Each(uast)
		}
		if opts.EmitTokens {
			for _, ident := range uast.Identifiers {
				for tok := range e.stemmer.Process(ident) {
					tokens[tok] = struct{}{}
				}
			}
		}
	}
	stats.Tokens = len(tokens)

	e.log.Info("run complete",
		"dispatched", stats.Dispatched,
		"parsed", stats.Parsed,
		"skipped", stats.Skipped,
		"timeout", stats.TimedOut,
		"errored", stats.Errored,
	)
	return stats, nil
}

// Stemmer exposes the extractor's stemmer so callers can reuse the same
// normalization outside a run (the split command does).
func (e *Extractor) Stemmer() *token.Stemmer {
	return e.stemmer
}
