package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/store"
)

var calcMapping map[string]string

var calcCmd = &cobra.Command{
	Use:   "calc <activity.csv|activity.xlsx>",
	Short: "Calculate emissions from an activity data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		activities, err := env.Parser.ParseFile(args[0], calcMapping)
		if err != nil {
			return eris.Wrap(err, "parse activity file")
		}

		validation := env.Parser.Validate(activities)
		if len(validation.ValidActivities) == 0 {
			return eris.Errorf("no valid activity rows in %s", args[0])
		}

		total := env.Calc.CalculateTotal(validation.ValidActivities)

		source := filepath.Base(args[0])
		if _, err := env.Store.SaveCalculation(ctx, source, total); err != nil {
			zap.L().Warn("persist calculation failed", zap.String("source", source), zap.Error(err))
		}

		zap.L().Info("calculation complete",
			zap.String("source", source),
			zap.Int("activities", total.ActivityCount),
			zap.Float64("total_kg_co2e", total.TotalKgCO2e),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"validation": validation,
			"total":      total,
		})
	},
}

var calcHistoryLimit int

var calcHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List stored calculations, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			record, err := env.Store.GetCalculation(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "get calculation")
			}
			return enc.Encode(record)
		}

		records, err := env.Store.ListCalculations(ctx, calcHistoryLimit)
		if err != nil {
			return eris.Wrap(err, "list calculations")
		}
		if records == nil {
			records = []store.CalculationRecord{}
		}
		return enc.Encode(records)
	},
}

func init() {
	calcCmd.Flags().StringToStringVar(&calcMapping, "mapping", nil, "column mapping overrides, e.g. category=Type,amount=Qty")
	calcHistoryCmd.Flags().IntVar(&calcHistoryLimit, "limit", 20, "max records to list")
	calcCmd.AddCommand(calcHistoryCmd)
	rootCmd.AddCommand(calcCmd)
}
