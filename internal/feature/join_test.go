package feature

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

func visitsFixture(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New([]string{DeviceKey, "timestamp", "MusteriKodu"})
	require.NoError(t, err)
	require.NoError(t, f.AppendRow([]string{"dev-1", "2024-03-01T10:00:00Z", "V1"}))
	require.NoError(t, f.AppendRow([]string{"dev-2", "2024-03-01T10:05:00Z", "V1"}))
	require.NoError(t, f.AppendRow([]string{"dev-1", "2024-03-01T11:00:00Z", "V2"}))
	return f
}

func TestNormalizeKey_UnlabeledFirstColumn(t *testing.T) {
	f, err := frame.New([]string{"Unnamed: 0", "dwell"})
	require.NoError(t, err)

	require.NoError(t, NormalizeKey(f))
	assert.True(t, f.Has(DeviceKey))
}

func TestNormalizeKey_LabeledFirstColumnFails(t *testing.T) {
	f, err := frame.New([]string{"some_id", "dwell"})
	require.NoError(t, err)

	err = NormalizeKey(f)
	require.Error(t, err)
	assert.True(t, eris.Is(err, frame.ErrSchemaViolation))
}

func TestJoin_InnerJoinDropsUnmatched(t *testing.T) {
	features, err := frame.New([]string{DeviceKey, "dwell"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-1", "120"}))

	out, err := Join(visitsFixture(t), features)
	require.NoError(t, err)

	// dev-2 has no feature row: its visit is gone.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "dev-1", out.Cell(0, DeviceKey))
	assert.Equal(t, "120", out.Cell(0, "dwell"))
	assert.Equal(t, "V2", out.Cell(1, "MusteriKodu"))
}

func TestJoin_UnlabeledKeyColumn(t *testing.T) {
	features, err := frame.New([]string{"", "dwell"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-2", "30"}))

	out, err := Join(visitsFixture(t), features)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "dev-2", out.Cell(0, DeviceKey))
}

func TestJoin_DuplicateFeatureRowsKeepLast(t *testing.T) {
	features, err := frame.New([]string{DeviceKey, "dwell"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-1", "10"}))
	require.NoError(t, features.AppendRow([]string{"dev-1", "99"}))

	out, err := Join(visitsFixture(t), features)
	require.NoError(t, err)
	assert.Equal(t, "99", out.Cell(0, "dwell"))
}

func TestJoin_CollidingFeatureColumnSuffixed(t *testing.T) {
	features, err := frame.New([]string{DeviceKey, "timestamp"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-1", "feature-built-2023"}))

	out, err := Join(visitsFixture(t), features)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01T10:00:00Z", out.Cell(0, "timestamp"), "visit value kept")
	assert.Equal(t, "feature-built-2023", out.Cell(0, "timestamp_feature"))
}

func TestJoin_NoOverlapIsEmptyResult(t *testing.T) {
	features, err := frame.New([]string{DeviceKey, "dwell"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-99", "1"}))

	_, err = Join(visitsFixture(t), features)
	require.Error(t, err)
	assert.True(t, eris.Is(err, frame.ErrEmptyResult))
}

func TestJoin_EmptyInputs(t *testing.T) {
	features, err := frame.New([]string{DeviceKey, "dwell"})
	require.NoError(t, err)
	require.NoError(t, features.AppendRow([]string{"dev-1", "1"}))

	emptyVisits, err := frame.New([]string{DeviceKey})
	require.NoError(t, err)
	_, err = Join(emptyVisits, features)
	assert.True(t, eris.Is(err, frame.ErrEmptyResult))

	emptyFeatures, err := frame.New([]string{DeviceKey})
	require.NoError(t, err)
	_, err = Join(visitsFixture(t), emptyFeatures)
	assert.True(t, eris.Is(err, frame.ErrEmptyResult))
}
