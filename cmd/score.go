package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/richness"
	"github.com/mapin-insights/richness-cli/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Aggregate enriched visits into richness scores",
	Long:  "Groups the enriched visit table by the configured key, aggregates visit counts and features, normalizes them across groups, and writes the weighted score table.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().String("input", "", "enriched visit CSV path (overrides config)")
	scoreCmd.Flags().String("group-by", "", "grouping key column (overrides config)")
	scoreCmd.Flags().StringSlice("features", nil, "numeric columns to aggregate (overrides config)")
	scoreCmd.Flags().String("aggregate", "", "mean or sum (overrides config)")
	scoreCmd.Flags().String("normalize", "", "none, minmax, or zscore (overrides config)")
	scoreCmd.Flags().StringSlice("log-transform", nil, "aggregated columns passed through log1p (overrides config)")
	scoreCmd.Flags().String("output", "", "score CSV output path (overrides config)")
	scoreCmd.Flags().Bool("save", false, "persist the score table in the run registry")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	input := flagOrDefault(cmd, "input", cfg.Enrich.Output)
	output := flagOrDefault(cmd, "output", cfg.Scoring.Output)
	save, _ := cmd.Flags().GetBool("save")

	scoreCfg := richness.Config{
		GroupBy:      flagOrDefault(cmd, "group-by", cfg.Scoring.GroupBy),
		Features:     flagOrDefaultSlice(cmd, "features", cfg.Scoring.Features),
		Aggregate:    flagOrDefault(cmd, "aggregate", cfg.Scoring.Aggregate),
		Normalize:    flagOrDefault(cmd, "normalize", cfg.Scoring.Normalize),
		LogTransform: flagOrDefaultSlice(cmd, "log-transform", cfg.Scoring.LogTransform),
		Weights:      cfg.Scoring.Weights,
	}

	enriched, err := frame.Open(input, frame.ReadOptions{Delimiter: ';', TrimSpace: true})
	if err != nil {
		return err
	}

	scores, err := richness.Score(enriched, scoreCfg)
	if err != nil {
		return err
	}

	if err := scores.WriteFile(output, ';'); err != nil {
		return err
	}
	zap.L().Info("score table written", zap.String("path", output), zap.Int("groups", scores.Len()))

	if save {
		return persistScores(cmd, scores, scoreCfg.GroupBy)
	}
	return nil
}

// persistScores records the score table under a fresh run so the dashboard
// can serve it.
func persistScores(cmd *cobra.Command, scores *frame.Frame, groupBy string) error {
	ctx := cmd.Context()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, "score")
	if err != nil {
		return err
	}

	if err := st.SaveScores(ctx, scoreRows(run.ID, groupBy, scores)); err != nil {
		st.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error()) //nolint:errcheck
		return err
	}
	if err := st.FinishRun(ctx, run.ID, store.RunStatusCompleted, ""); err != nil {
		return err
	}
	zap.L().Info("scores persisted", zap.String("run_id", run.ID), zap.Int("rows", scores.Len()))
	return nil
}

// scoreRows converts the score table to registry records.
func scoreRows(runID, groupBy string, scores *frame.Frame) []store.ScoreRow {
	keyIdx := scores.Index(groupBy)
	countIdx := scores.Index(richness.CountCol)
	scoreIdx := scores.Index("richness_score")

	rows := make([]store.ScoreRow, 0, scores.Len())
	for i := 0; i < scores.Len(); i++ {
		row := scores.Row(i)
		count, _ := strconv.Atoi(row[countIdx])
		score, _ := strconv.ParseFloat(row[scoreIdx], 64)
		rows = append(rows, store.ScoreRow{
			RunID:      runID,
			GroupBy:    groupBy,
			GroupValue: row[keyIdx],
			VisitCount: count,
			Score:      score,
		})
	}
	return rows
}
