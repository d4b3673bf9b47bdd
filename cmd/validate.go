package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/carbon-compass/compass/internal/parser"
)

var validatePreviewRows int

var validateCmd = &cobra.Command{
	Use:   "validate <activity.csv|activity.xlsx>",
	Short: "Validate an activity data file without calculating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := parser.New()

		content, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		format, err := parser.FormatForPath(args[0])
		if err != nil {
			return err
		}

		preview, err := p.Preview(content, format, validatePreviewRows)
		if err != nil {
			return eris.Wrap(err, "preview activity file")
		}

		activities, err := p.Parse(content, format, nil)
		if err != nil {
			return eris.Wrap(err, "parse activity file")
		}
		validation := p.Validate(activities)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"preview":    preview,
			"validation": validation,
		})
	},
}

func init() {
	validateCmd.Flags().IntVar(&validatePreviewRows, "preview-rows", 5, "sample rows to include in the preview")
	rootCmd.AddCommand(validateCmd)
}
