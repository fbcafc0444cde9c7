package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/repolex/internal/adapters/treesitter"
	"github.com/corey/repolex/internal/adapters/uastd"
	"github.com/corey/repolex/internal/config"
	"github.com/corey/repolex/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

var rootCmd = &cobra.Command{
	Use:   "repolex",
	Short: "repolex — lexical token extraction from source repositories",
	Long:  "Clones a repository, classifies its files, parses the allow-listed languages, and reduces identifiers to normalized tokens.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig builds the effective config: defaults < .env < environment.
// Commands layer their flags on top of the result.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// clientFactory picks the parser backend: remote uastd when an endpoint is
// configured, in-process tree-sitter otherwise.
func clientFactory(cfg config.Config) ports.ClientFactory {
	if cfg.Endpoint != "" {
		return uastd.Factory(cfg.Endpoint)
	}
	return treesitter.Factory()
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}
