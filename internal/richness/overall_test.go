package richness

import (
	"strconv"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapin-insights/richness-cli/internal/feature"
	"github.com/mapin-insights/richness-cli/internal/frame"
)

func assignments(t *testing.T, keyCol string, rows ...[]string) *frame.Frame {
	t.Helper()
	f, err := frame.New([]string{keyCol, "cluster"})
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, f.AppendRow(r))
	}
	return f
}

func clusterScores(t *testing.T, scoreCol string, rows ...[]string) *frame.Frame {
	t.Helper()
	f, err := frame.New([]string{"cluster", scoreCol})
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, f.AppendRow(r))
	}
	return f
}

func overallFixture(t *testing.T) []Component {
	t.Helper()
	return []Component{
		{
			Name: "cafe",
			Assignments: assignments(t, feature.DeviceKey,
				[]string{"dev-1", "0"}, []string{"dev-2", "1"}, []string{"dev-3", "0"}),
			Scores:   clusterScores(t, "CafeRichnessScore", []string{"0", "0.2"}, []string{"1", "0.8"}),
			ScoreCol: "CafeRichnessScore",
			Weight:   2,
		},
		{
			Name: "ping",
			// pandas-style export: unlabeled device column
			Assignments: assignments(t, "Unnamed: 0",
				[]string{"dev-1", "5"}, []string{"dev-2", "5"}),
			Scores:   clusterScores(t, "PingRichnessScore", []string{"5", "0.5"}),
			ScoreCol: "PingRichnessScore",
			Weight:   1,
		},
		{
			Name: "restaurant",
			Assignments: assignments(t, feature.DeviceKey,
				[]string{"dev-1", "2"}, []string{"dev-2", "3"}),
			Scores:   clusterScores(t, "RichnessScore", []string{"2", "1"}),
			ScoreCol: "RichnessScore",
			Weight:   3,
		},
	}
}

func TestOverall_WeightedCombination(t *testing.T) {
	out, err := Overall(overallFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		feature.DeviceKey,
		"cafe_cluster", "cafe_richness_score",
		"ping_cluster", "ping_richness_score",
		"restaurant_cluster", "restaurant_richness_score",
		OverallScoreCol,
	}, out.Columns())

	// dev-3 is missing from ping and restaurant: inner join leaves 2 devices.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "dev-1", out.Cell(0, feature.DeviceKey))
	assert.Equal(t, "dev-2", out.Cell(1, feature.DeviceKey))

	// dev-1: (2*0.2 + 1*0.5 + 3*1) / 6 = 0.65
	got, err := strconv.ParseFloat(out.Cell(0, OverallScoreCol), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, got, 1e-9)

	// dev-2's restaurant cluster 3 has no score row: contributes zero.
	// (2*0.8 + 1*0.5 + 3*0) / 6 = 0.35
	got, err = strconv.ParseFloat(out.Cell(1, OverallScoreCol), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.35, got, 1e-9)
	assert.Equal(t, "3", out.Cell(1, "restaurant_cluster"))
	assert.Equal(t, "0", out.Cell(1, "restaurant_richness_score"))
}

func TestOverall_NoCommonDevice(t *testing.T) {
	comps := []Component{
		{
			Name:        "cafe",
			Assignments: assignments(t, feature.DeviceKey, []string{"dev-1", "0"}),
			Scores:      clusterScores(t, "score", []string{"0", "1"}),
			Weight:      1,
		},
		{
			Name:        "ping",
			Assignments: assignments(t, feature.DeviceKey, []string{"dev-2", "0"}),
			Scores:      clusterScores(t, "score", []string{"0", "1"}),
			Weight:      1,
		},
	}

	_, err := Overall(comps)
	require.Error(t, err)
	assert.True(t, eris.Is(err, frame.ErrEmptyResult))
}

func TestOverall_Validation(t *testing.T) {
	_, err := Overall(nil)
	assert.Error(t, err)

	bad := overallFixture(t)
	bad[0].Weight = -1
	_, err = Overall(bad)
	assert.Error(t, err)

	missingScores := overallFixture(t)
	missingScores[1].ScoreCol = "NoSuchColumn"
	_, err = Overall(missingScores)
	assert.True(t, eris.Is(err, frame.ErrSchemaViolation))
}
