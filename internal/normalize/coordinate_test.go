package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

func TestCoordinate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"period separator", "41.015", 41.015, true},
		{"comma separator", "41,015", 41.015, true},
		{"negative", "-29,5", -29.5, true},
		{"integer", "41", 41, true},
		{"surrounding space", " 28,97 ", 28.97, true},
		{"empty", "", 0, false},
		{"text", "istanbul", 0, false},
		{"two commas", "1,2,3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coordinate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestCoordinateColumn_RewritesInPlace(t *testing.T) {
	f, err := frame.New([]string{"lat"})
	require.NoError(t, err)
	for _, v := range []string{"41,015", "40.99", "bogus", ""} {
		require.NoError(t, f.AppendRow([]string{v}))
	}

	converted, missing, err := CoordinateColumn(f, "lat")
	require.NoError(t, err)
	assert.Equal(t, 2, converted)
	assert.Equal(t, 2, missing)

	assert.Equal(t, "41.015", f.Cell(0, "lat"))
	assert.Equal(t, "40.99", f.Cell(1, "lat"))
	assert.Equal(t, frame.Missing, f.Cell(2, "lat"))
	assert.Equal(t, 4, f.Len(), "no rows dropped")
}

func TestCoordinateColumn_MissingColumn(t *testing.T) {
	f, err := frame.New([]string{"lng"})
	require.NoError(t, err)

	_, _, err = CoordinateColumn(f, "lat")
	require.Error(t, err)
}
