package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/repolex/internal/adapters/bbolt"
	"github.com/corey/repolex/internal/adapters/enry"
	"github.com/corey/repolex/internal/adapters/gitclone"
	"github.com/corey/repolex/internal/app"
	"github.com/corey/repolex/internal/logging"
	"github.com/corey/repolex/internal/ports"
)

var extractFlags struct {
	endpoint    string
	workers     int
	timeout     time.Duration
	maxFileSize int64
	languages   []string
	resume      bool
	quiet       bool
	identsOnly  bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <repo-url-or-path>",
	Short: "Extract normalized tokens from a repository",
	Long: "Clones the repository (or uses a local path), classifies files with enry, " +
		"parses the allow-listed languages, and prints one normalized token per line.",
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFlags.endpoint, "endpoint", "", "parse service endpoint (unix:///path or host:port); empty = in-process")
	extractCmd.Flags().IntVar(&extractFlags.workers, "workers", 0, "worker pool size (0 = all CPUs)")
	extractCmd.Flags().DurationVar(&extractFlags.timeout, "timeout", 0, "per-file parse timeout")
	extractCmd.Flags().Int64Var(&extractFlags.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	extractCmd.Flags().StringSliceVar(&extractFlags.languages, "languages", nil, "language allow-list (classifier names)")
	extractCmd.Flags().BoolVar(&extractFlags.resume, "resume", false, "skip files already recorded as parsed")
	extractCmd.Flags().BoolVar(&extractFlags.quiet, "quiet", false, "print only the summary line")
	extractCmd.Flags().BoolVar(&extractFlags.identsOnly, "identifiers", false, "print raw identifiers instead of normalized tokens")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if extractFlags.endpoint != "" {
		cfg.Endpoint = extractFlags.endpoint
	}
	if extractFlags.workers > 0 {
		cfg.Workers = extractFlags.workers
	}
	if extractFlags.timeout > 0 {
		cfg.Timeout = extractFlags.timeout
	}
	if extractFlags.maxFileSize > 0 {
		cfg.MaxFileSize = extractFlags.maxFileSize
	}
	if len(extractFlags.languages) > 0 {
		cfg.Languages = extractFlags.languages
	}

	log := logging.New("extract", logging.ParseLevel(cfg.LogLevel))

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()

	ext := app.NewExtractor(cfg,
		gitclone.New("", log),
		enry.New("", log),
		clientFactory(cfg),
		store,
		log,
	)

	// Ctrl-C cancels the run; in-flight files drain, the manifest keeps what
	// finished, and --resume picks up from there.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stemmer := ext.Stemmer()
	seen := make(map[string]struct{})
	each := func(u *ports.UAST) {
		if extractFlags.quiet {
			return
		}
		for _, ident := range u.Identifiers {
			if extractFlags.identsOnly {
				fmt.Println(ident)
				continue
			}
			for tok := range stemmer.Process(ident) {
				if _, dup := seen[tok]; dup {
					continue
				}
				seen[tok] = struct{}{}
				fmt.Println(tok)
			}
		}
	}

	start := time.Now()
	stats, err := ext.Run(ctx, args[0], app.RunOptions{
		Resume:     extractFlags.resume,
		EmitTokens: true,
		Each:       each,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s⚡ %d files%s │ %d parsed │ %d skipped │ %d timeout │ %d errored │ %d tokens │ %s\n",
		colorBold, stats.Dispatched, colorReset,
		stats.Parsed, stats.Skipped, stats.TimedOut, stats.Errored,
		stats.Tokens, time.Since(start).Round(time.Millisecond))
	return nil
}
