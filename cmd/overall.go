package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/richness"
)

var overallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Combine component scores into one per-device score",
	Long:  "Joins the cafe, ping, and restaurant cluster assignments on device_aid, looks up each cluster's richness score, and writes the weighted overall score per device.",
	RunE:  runOverall,
}

func init() {
	overallCmd.Flags().String("cafe-clusters", "data/coffee_device_clusters.csv", "cafe device-to-cluster CSV (semicolon)")
	overallCmd.Flags().String("cafe-scores", "data/cafe_richness_scores.csv", "cafe per-cluster score CSV (semicolon)")
	overallCmd.Flags().String("ping-clusters", "data/polygons_clusters.csv", "ping device-to-cluster CSV (comma)")
	overallCmd.Flags().String("ping-scores", "data/ping_richness_scores.csv", "ping per-cluster score CSV (semicolon)")
	overallCmd.Flags().String("restaurant-clusters", "data/restaurant_clusters.csv", "restaurant device-to-cluster CSV (semicolon)")
	overallCmd.Flags().String("restaurant-scores", "data/restaurant_richness_scores.csv", "restaurant per-cluster score CSV (semicolon)")
	overallCmd.Flags().String("output", "", "overall score CSV output path (overrides config)")
	rootCmd.AddCommand(overallCmd)
}

func runOverall(cmd *cobra.Command, args []string) error {
	output := flagOrDefault(cmd, "output", cfg.Overall.Output)

	load := func(flag string, delimiter rune) (*frame.Frame, error) {
		path, _ := cmd.Flags().GetString(flag)
		return frame.Open(path, frame.ReadOptions{Delimiter: delimiter, TrimSpace: true})
	}

	cafeClusters, err := load("cafe-clusters", ';')
	if err != nil {
		return err
	}
	cafeScores, err := load("cafe-scores", ';')
	if err != nil {
		return err
	}
	// The ping clustering export is the one comma-delimited file in the set.
	pingClusters, err := load("ping-clusters", ',')
	if err != nil {
		return err
	}
	pingScores, err := load("ping-scores", ';')
	if err != nil {
		return err
	}
	restaurantClusters, err := load("restaurant-clusters", ';')
	if err != nil {
		return err
	}
	restaurantScores, err := load("restaurant-scores", ';')
	if err != nil {
		return err
	}

	combined, err := richness.Overall([]richness.Component{
		{
			Name:        "cafe",
			Assignments: cafeClusters,
			Scores:      cafeScores,
			ScoreCol:    "CafeRichnessScore",
			Weight:      cfg.Overall.CafeWeight,
		},
		{
			Name:        "ping",
			Assignments: pingClusters,
			Scores:      pingScores,
			ScoreCol:    "PingRichnessScore",
			Weight:      cfg.Overall.PingWeight,
		},
		{
			Name:        "restaurant",
			Assignments: restaurantClusters,
			Scores:      restaurantScores,
			ScoreCol:    "RichnessScore",
			Weight:      cfg.Overall.RestaurantWeight,
		},
	})
	if err != nil {
		return err
	}

	if err := combined.WriteFile(output, ';'); err != nil {
		return err
	}
	zap.L().Info("overall score table written", zap.String("path", output), zap.Int("devices", combined.Len()))
	return nil
}
