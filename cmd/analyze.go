package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeRefresh bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <report.pdf>",
	Short: "Analyse a sustainability report from the reports directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		filename := filepath.Base(args[0])
		result, err := env.Pipeline.Analyse(ctx, filename, analyzeRefresh)
		if err != nil {
			return eris.Wrap(err, "analyse report")
		}

		if err := env.Store.SaveAnalysis(ctx, result); err != nil {
			zap.L().Warn("persist analysis failed", zap.String("filename", filename), zap.Error(err))
		}

		zap.L().Info("analysis complete",
			zap.String("filename", filename),
			zap.Int("metrics", len(result.Metrics.Metrics)),
			zap.Int("greenwashing_flags", len(result.Greenwash.Flags)),
			zap.String("risk_level", string(result.Risk.RiskLevel)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "ignore any cached analysis and reprocess")
	rootCmd.AddCommand(analyzeCmd)
}
