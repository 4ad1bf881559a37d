package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

func TestOneHotEncode_DropFirst(t *testing.T) {
	f, err := frame.New([]string{"SatisKanali"})
	require.NoError(t, err)
	for _, v := range []string{"Bar", "Cafe", "Restoran", "Cafe", ""} {
		require.NoError(t, f.AppendRow([]string{v}))
	}

	require.NoError(t, OneHotEncode(f, []string{"SatisKanali"}))

	// "Bar" sorts first and is dropped; the original column is gone.
	assert.Equal(t, []string{"SatisKanali_Cafe", "SatisKanali_Restoran"}, f.Columns())
	assert.Equal(t, "0", f.Cell(0, "SatisKanali_Cafe"))
	assert.Equal(t, "1", f.Cell(1, "SatisKanali_Cafe"))
	assert.Equal(t, "1", f.Cell(2, "SatisKanali_Restoran"))

	// missing cell encodes as all zeros
	assert.Equal(t, "0", f.Cell(4, "SatisKanali_Cafe"))
	assert.Equal(t, "0", f.Cell(4, "SatisKanali_Restoran"))
}

func TestOneHotEncode_SkipsAbsentColumns(t *testing.T) {
	f, err := frame.New([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, OneHotEncode(f, []string{"missing"}))
	assert.Equal(t, []string{"a"}, f.Columns())
}

func TestMinMaxScaleColumns(t *testing.T) {
	f, err := frame.New([]string{"x", "constant", "words"})
	require.NoError(t, err)
	require.NoError(t, f.AppendRow([]string{"10", "7", "a"}))
	require.NoError(t, f.AppendRow([]string{"20", "7", "b"}))
	require.NoError(t, f.AppendRow([]string{"", "7", "c"}))
	require.NoError(t, f.AppendRow([]string{"30", "7", "d"}))

	require.NoError(t, MinMaxScaleColumns(f, []string{"x", "constant", "words"}))

	assert.Equal(t, "0", f.Cell(0, "x"))
	assert.Equal(t, "0.5", f.Cell(1, "x"))
	assert.Equal(t, frame.Missing, f.Cell(2, "x"), "missing stays missing")
	assert.Equal(t, "1", f.Cell(3, "x"))

	// constant column scales to zero
	assert.Equal(t, "0", f.Cell(0, "constant"))

	// a column with no numeric values is left alone
	assert.Equal(t, "a", f.Cell(0, "words"))
}
