package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mapin-insights/richness-cli/internal/attribution"
	"github.com/mapin-insights/richness-cli/internal/frame"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Join pings to venues within the buffer radius",
	Long:  "Loads the ping and venue tables, projects both into the configured planar CRS, and writes one visit row for every ping within the buffer radius of a venue.",
	RunE:  runAttribute,
}

func init() {
	attributeCmd.Flags().String("pings", "", "ping CSV path (overrides config)")
	attributeCmd.Flags().String("venues", "", "venue table path, CSV or XLSX (overrides config)")
	attributeCmd.Flags().Float64("radius", 0, "buffer radius in meters (overrides config)")
	attributeCmd.Flags().String("projection", "", "projected CRS, e.g. epsg:32636 (overrides config)")
	attributeCmd.Flags().Int("max-pings", 0, "cap on ping rows loaded (overrides config)")
	attributeCmd.Flags().String("output", "", "visit CSV output path (overrides config)")
	rootCmd.AddCommand(attributeCmd)
}

func runAttribute(cmd *cobra.Command, args []string) error {
	pingsPath := flagOrDefault(cmd, "pings", cfg.Inputs.Pings)
	venuesPath := flagOrDefault(cmd, "venues", cfg.Inputs.Venues)
	output := flagOrDefault(cmd, "output", cfg.Attribution.Output)
	radius := flagOrDefaultFloat(cmd, "radius", cfg.Attribution.RadiusMeters)
	projection := flagOrDefault(cmd, "projection", cfg.Attribution.Projection)
	maxPings := flagOrDefaultInt(cmd, "max-pings", cfg.Inputs.MaxPings)

	visits, err := attributeVisits(pingsPath, venuesPath, radius, projection, maxPings)
	if err != nil {
		return err
	}

	if err := visits.WriteFile(output, ';'); err != nil {
		return err
	}
	zap.L().Info("visit table written", zap.String("path", output), zap.Int("rows", visits.Len()))
	return nil
}

// attributeVisits runs the spatial join stage. Ping and venue tables load
// concurrently; the join itself is single-threaded over the r-tree.
func attributeVisits(pingsPath, venuesPath string, radius float64, projection string, maxPings int) (*frame.Frame, error) {
	proj, err := attribution.NewProjector(projection)
	if err != nil {
		return nil, err
	}

	var pings, venues *frame.Frame
	var g errgroup.Group
	g.Go(func() error {
		var err error
		pings, err = loadPings(pingsPath, maxPings)
		return err
	})
	g.Go(func() error {
		var err error
		venues, _, err = loadVenues(venuesPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine := &attribution.Engine{
		Radius: radius,
		Proj:   proj,
		LatCol: cfg.Inputs.VenueLatCol,
		LngCol: cfg.Inputs.VenueLngCol,
	}
	return engine.Attribute(pings, venues)
}
