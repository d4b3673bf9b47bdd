package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbon-compass/compass/internal/factors"
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "List available emission factors and unit conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := factors.Load(cfg.Factors.DataDir)
		methods, materials := catalog.WasteOptions()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"countries":       catalog.Countries(),
			"fuels":           catalog.Fuels(),
			"transport":       catalog.Transport(),
			"waste_methods":   methods,
			"waste_materials": materials,
			"conversions":     factors.Conversions(),
		})
	},
}

func init() {
	rootCmd.AddCommand(factorsCmd)
}
