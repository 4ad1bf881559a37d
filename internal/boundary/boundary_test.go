package boundary

import (
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestShapefile creates a one-feature polygon shapefile (a unit square
// near Istanbul) with a NAME attribute.
func writeTestShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boundary.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 25)}))

	ring := []shp.Point{
		{X: 28.5, Y: 40.8},
		{X: 29.5, Y: 40.8},
		{X: 29.5, Y: 41.3},
		{X: 28.5, Y: 41.3},
		{X: 28.5, Y: 40.8},
	}
	poly := (*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring}))
	w.Write(poly)
	w.WriteAttribute(0, 0, "Istanbul")

	w.Close()
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestShapefile(t)

	fc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	feat := fc.Features[0]
	assert.Equal(t, "Istanbul", feat.Properties["NAME"])

	mp := feat.Geometry
	require.NotNil(t, mp)
	assert.Equal(t, 4326, mp.SRID())

	// The ring came through with its coordinates intact.
	bounds := mp.Bounds()
	assert.InDelta(t, 28.5, bounds.Min(0), 1e-9)
	assert.InDelta(t, 41.3, bounds.Max(1), 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.shp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
