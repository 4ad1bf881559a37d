package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/normalize"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert the raw venue export into numeric features",
	Long:  "Parses coded sales volumes, banded ranges, bed counts, binary flags, and segment codes into numeric columns, one-hot encodes the categoricals, and min-max scales the result.",
	RunE:  runPreprocess,
}

func init() {
	preprocessCmd.Flags().String("input", "", "venue table path, CSV or XLSX (overrides config)")
	preprocessCmd.Flags().String("output", "data/venues_preprocessed.csv", "preprocessed CSV output path")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	input := flagOrDefault(cmd, "input", cfg.Inputs.Venues)
	output, _ := cmd.Flags().GetString("output")

	venues, _, err := loadVenues(input)
	if err != nil {
		return err
	}

	if err := normalize.Preprocess(venues, normalize.DefaultPreprocess()); err != nil {
		return err
	}

	if err := venues.WriteFile(output, ';'); err != nil {
		return err
	}
	zap.L().Info("preprocessed venue table written",
		zap.String("path", output),
		zap.Int("rows", venues.Len()),
		zap.Int("columns", venues.Width()),
	)
	return nil
}
