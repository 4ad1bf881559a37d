package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "richness-cli",
	Short: "Venue visit attribution and richness scoring pipeline",
	Long:  "Joins mobility pings to venues by projected proximity, enriches visits with per-device features, and aggregates them into normalized richness scores served to the dashboard.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
