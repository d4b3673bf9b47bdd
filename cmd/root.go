package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Carbon accounting and sustainability report analysis",
	Long:  "Extracts emissions metrics and greenwashing signals from sustainability report PDFs, and calculates carbon footprints from activity data using DEFRA emission factors.",
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
