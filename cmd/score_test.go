package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/richness"
)

func TestScoreRows(t *testing.T) {
	scores, err := frame.New([]string{"MusteriKodu", richness.CountCol, "dwell", "richness_score"})
	require.NoError(t, err)
	require.NoError(t, scores.AppendRow([]string{"V1", "3", "40", "0.650000"}))
	require.NoError(t, scores.AppendRow([]string{"V2", "1", "15", "0.100000"}))

	rows := scoreRows("run-1", "MusteriKodu", scores)
	require.Len(t, rows, 2)

	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, "MusteriKodu", rows[0].GroupBy)
	assert.Equal(t, "V1", rows[0].GroupValue)
	assert.Equal(t, 3, rows[0].VisitCount)
	assert.InDelta(t, 0.65, rows[0].Score, 1e-9)
}
