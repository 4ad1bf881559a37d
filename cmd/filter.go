package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// droppedVenueColumns are the CRM bookkeeping columns stripped from the venue
// export before analysis.
var droppedVenueColumns = []string{
	"MusteriBolge2", "RutAdi", "RutgrupKod", "SatisTemsilcisi", "StTakipKod",
	"SatisSefi", "SonGuncellenmeZamani", "not", "username", "Url detay", "url",
	"DDegeri", "RDegeri", "HDegeri", "IsbirligiDuzeyi",
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Strip bookkeeping columns and coordinate-less rows from the venue export",
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().String("input", "", "venue table path, CSV or XLSX (overrides config)")
	filterCmd.Flags().String("output", "data/venues_filtered.csv", "filtered CSV output path")
	filterCmd.Flags().StringSlice("drop", nil, "columns to drop (overrides the built-in list)")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	input := flagOrDefault(cmd, "input", cfg.Inputs.Venues)
	output, _ := cmd.Flags().GetString("output")
	drop := flagOrDefaultSlice(cmd, "drop", droppedVenueColumns)

	// loadVenues already normalizes coordinates and drops rows without them.
	venues, droppedRows, err := loadVenues(input)
	if err != nil {
		return err
	}

	removed := venues.Drop(drop...)

	if err := venues.WriteFile(output, ';'); err != nil {
		return err
	}
	zap.L().Info("filtered venue table written",
		zap.String("path", output),
		zap.Int("rows", venues.Len()),
		zap.Int("dropped_rows", droppedRows),
		zap.Strings("dropped_columns", removed),
	)
	return nil
}
