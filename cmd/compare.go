package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compareMapping map[string]string

var compareCmd = &cobra.Command{
	Use:   "compare <report.pdf> <activity.csv|activity.xlsx>",
	Short: "Reconcile reported emissions with figures calculated from activity data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		filename := filepath.Base(args[0])
		analysed, err := env.Pipeline.Analyse(ctx, filename, false)
		if err != nil {
			return eris.Wrap(err, "analyse report")
		}

		activities, err := env.Parser.ParseFile(args[1], compareMapping)
		if err != nil {
			return eris.Wrap(err, "parse activity file")
		}
		validation := env.Parser.Validate(activities)
		if len(validation.ValidActivities) == 0 {
			return eris.Errorf("no valid activity rows in %s", args[1])
		}

		total := env.Calc.CalculateTotal(validation.ValidActivities)
		verification := env.Verifier.Compare(analysed.Metrics.Metrics, total)

		zap.L().Info("verification complete",
			zap.String("filename", filename),
			zap.Float64("match_score", verification.MatchScore),
			zap.Int("discrepancies", len(verification.Discrepancies)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"filename":     filename,
			"calculated":   total,
			"verification": verification,
		})
	},
}

func init() {
	compareCmd.Flags().StringToStringVar(&compareMapping, "mapping", nil, "column mapping overrides for the activity file")
	rootCmd.AddCommand(compareCmd)
}
