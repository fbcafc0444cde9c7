package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/repolex/internal/adapters/uastd"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the remote parse service",
	Long:  "Dials the configured endpoint and sends a health probe. Fails when no endpoint is configured.",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Endpoint == "" {
		return fmt.Errorf("no endpoint configured; set REPOLEX_ENDPOINT or use in-process parsing")
	}

	client, err := uastd.Dial(cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("%s✗%s %v", colorYellow, colorReset, err)
	}
	defer client.Close()

	if err := client.Health(); err != nil {
		return fmt.Errorf("%s✗%s %v", colorYellow, colorReset, err)
	}

	fmt.Printf("%s✓ %s is healthy%s\n", colorGreen, cfg.Endpoint, colorReset)
	return nil
}
