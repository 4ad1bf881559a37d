package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/feature"
	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/richness"
	"github.com/mapin-insights/richness-cli/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: attribute, enrich, score",
	Long:  "Runs spatial attribution, device feature enrichment, and richness scoring in one pass, recording the run in the registry. An empty intermediate result stops the pipeline cleanly without writing downstream outputs.",
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, "run")
	if err != nil {
		return err
	}

	scores, err := pipeline()
	if err != nil {
		if eris.Is(err, frame.ErrEmptyResult) {
			// An empty stage is a data condition, not a crash: record it and
			// stop without touching downstream outputs.
			zap.L().Warn("pipeline stopped on empty result", zap.String("cause", eris.Cause(err).Error()), zap.String("detail", err.Error()))
			return st.FinishRun(ctx, run.ID, store.RunStatusCompleted, "empty result: "+err.Error())
		}
		st.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error()) //nolint:errcheck
		return err
	}

	if err := st.SaveScores(ctx, scoreRows(run.ID, cfg.Scoring.GroupBy, scores)); err != nil {
		st.FinishRun(ctx, run.ID, store.RunStatusFailed, err.Error()) //nolint:errcheck
		return err
	}
	if err := st.FinishRun(ctx, run.ID, store.RunStatusCompleted, ""); err != nil {
		return err
	}
	zap.L().Info("pipeline completed", zap.String("run_id", run.ID), zap.Int("groups", scores.Len()))
	return nil
}

// pipeline chains the three stages, writing each intermediate table so the
// stages can also be rerun individually.
func pipeline() (*frame.Frame, error) {
	visits, err := attributeVisits(
		cfg.Inputs.Pings, cfg.Inputs.Venues,
		cfg.Attribution.RadiusMeters, cfg.Attribution.Projection,
		cfg.Inputs.MaxPings,
	)
	if err != nil {
		return nil, err
	}
	if err := visits.WriteFile(cfg.Attribution.Output, ';'); err != nil {
		return nil, err
	}

	features, err := loadFeatures(cfg.Inputs.Features)
	if err != nil {
		return nil, err
	}
	enriched, err := feature.Join(visits, features)
	if err != nil {
		return nil, err
	}
	if err := enriched.WriteFile(cfg.Enrich.Output, ';'); err != nil {
		return nil, err
	}

	scores, err := richness.Score(enriched, richness.Config{
		GroupBy:      cfg.Scoring.GroupBy,
		Features:     cfg.Scoring.Features,
		Aggregate:    cfg.Scoring.Aggregate,
		Normalize:    cfg.Scoring.Normalize,
		LogTransform: cfg.Scoring.LogTransform,
		Weights:      cfg.Scoring.Weights,
	})
	if err != nil {
		return nil, err
	}
	if err := scores.WriteFile(cfg.Scoring.Output, ';'); err != nil {
		return nil, err
	}
	return scores, nil
}
