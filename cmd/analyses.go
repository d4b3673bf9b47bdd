package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/carbon-compass/compass/internal/model"
	"github.com/carbon-compass/compass/internal/store"
)

var (
	analysesRiskLevel string
	analysesLimit     int
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "List stored report analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		summaries, err := env.Store.ListAnalyses(ctx, store.AnalysisFilter{
			RiskLevel: model.RiskLevel(analysesRiskLevel),
			Limit:     analysesLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list analyses")
		}
		if summaries == nil {
			summaries = []store.AnalysisSummary{}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	},
}

func init() {
	analysesCmd.Flags().StringVar(&analysesRiskLevel, "risk-level", "", "filter by risk level (LOW, MEDIUM, HIGH)")
	analysesCmd.Flags().IntVar(&analysesLimit, "limit", 20, "max analyses to list")
	rootCmd.AddCommand(analysesCmd)
}
