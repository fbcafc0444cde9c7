package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	fswatch "github.com/corey/repolex/internal/adapters/fsnotify"
	"github.com/corey/repolex/internal/domain/token"
	"github.com/corey/repolex/internal/logging"
)

// watchLanguages maps file extensions to classifier language names for the
// incremental path. Full runs classify with enry; a single changed file does
// not warrant a subprocess.
var watchLanguages = map[string]string{
	".py":   "Python",
	".java": "Java",
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-extract tokens as files change",
	Long: "Watches a directory tree and reparses each changed source file, printing " +
		"its normalized tokens. Runs until interrupted.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logging.New("watch", logging.ParseLevel(cfg.LogLevel))

	client, err := clientFactory(cfg)()
	if err != nil {
		return fmt.Errorf("parser client: %w", err)
	}
	defer client.Close()

	stemmer := token.NewStemmer(cfg.StemCacheSize)

	w, err := fswatch.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer w.Stop()

	// onChange runs on the watcher goroutine; the single shared client is
	// fine because nothing else touches it.
	onChange := func(path string) {
		lang, ok := watchLanguages[strings.ToLower(filepath.Ext(path))]
		if !ok || !cfg.AllowsLanguage(lang) {
			return
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		uast, err := client.Parse(ctx, path, lang)
		if err != nil {
			log.Warn("reparse failed", "path", path, "error", err)
			return
		}

		tokens := make(map[string]struct{})
		for _, ident := range uast.Identifiers {
			for tok := range stemmer.Process(ident) {
				tokens[tok] = struct{}{}
			}
		}
		fmt.Printf("%s%s%s: %d identifiers, %d tokens\n",
			colorCyan, path, colorReset, len(uast.Identifiers), len(tokens))
	}

	if err := w.Watch(args[0], onChange); err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	fmt.Printf("%s⚡ watching %s%s\n", colorBold, args[0], colorReset)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\n⚡ stopping")
	return nil
}
