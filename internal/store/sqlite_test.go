package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestCreateAndFinishRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "score")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	require.NoError(t, s.FinishRun(ctx, run.ID, RunStatusCompleted, ""))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, RunStatusCompleted, runs[0].Status)
	assert.Equal(t, "score", runs[0].Command)
}

func TestFinishRun_UnknownID(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishRun(context.Background(), "no-such-run", RunStatusFailed, "boom")
	require.Error(t, err)
}

func TestSaveAndFetchScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "run")
	require.NoError(t, err)

	scores := []ScoreRow{
		{RunID: run.ID, GroupBy: "MusteriKodu", GroupValue: "V1", VisitCount: 3, Score: 0.9},
		{RunID: run.ID, GroupBy: "MusteriKodu", GroupValue: "V2", VisitCount: 1, Score: 0.1},
	}
	require.NoError(t, s.SaveScores(ctx, scores))

	got, err := s.ScoresForRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "V1", got[0].GroupValue)
	assert.Equal(t, 3, got[0].VisitCount)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
}

func TestSaveScores_EmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveScores(context.Background(), nil))
}

func TestLatestScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No runs at all: nil, no error.
	got, err := s.LatestScores(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// A completed run with scores...
	first, err := s.CreateRun(ctx, "run")
	require.NoError(t, err)
	require.NoError(t, s.SaveScores(ctx, []ScoreRow{
		{RunID: first.ID, GroupBy: "MusteriKodu", GroupValue: "V1", VisitCount: 1, Score: 0.5},
	}))
	require.NoError(t, s.FinishRun(ctx, first.ID, RunStatusCompleted, ""))

	// ...followed by a failed run with scores: the failed one is skipped.
	second, err := s.CreateRun(ctx, "run")
	require.NoError(t, err)
	require.NoError(t, s.SaveScores(ctx, []ScoreRow{
		{RunID: second.ID, GroupBy: "MusteriKodu", GroupValue: "V9", VisitCount: 9, Score: 0.9},
	}))
	require.NoError(t, s.FinishRun(ctx, second.ID, RunStatusFailed, "schema violation"))

	got, err = s.LatestScores(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].RunID)
	assert.Equal(t, "V1", got[0].GroupValue)
}
