package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long:  "Shows the configuration after applying defaults, .env, and REPOLEX_* environment variables.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	backend := "in-process tree-sitter"
	if cfg.Endpoint != "" {
		backend = cfg.Endpoint
	}

	fmt.Printf("%s⚡ repolex config%s\n", colorBold, colorReset)
	fmt.Printf("  Parser:       %s\n", backend)
	fmt.Printf("  Timeout:      %s\n", cfg.Timeout)
	fmt.Printf("  MaxFileSize:  %d bytes\n", cfg.MaxFileSize)
	fmt.Printf("  Workers:      %d\n", cfg.WorkerCount())
	fmt.Printf("  Languages:    %s\n", strings.Join(cfg.Languages, ", "))
	fmt.Printf("  StemCache:    %d\n", cfg.StemCacheSize)
	fmt.Printf("  DB:           %s\n", cfg.DBPath)
	fmt.Printf("  LogLevel:     %s\n", cfg.LogLevel)
	return nil
}
