// Package boundary loads the geographic boundary shapefile the dashboard
// draws under the score layer, converting shapes to GeoJSON.
package boundary

import (
	"os"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Load reads a polygon shapefile and returns a GeoJSON FeatureCollection.
// Attribute fields are carried as feature properties. Non-polygon shapes are
// skipped with a log line rather than failing the whole file.
func Load(path string) (*geojson.FeatureCollection, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, eris.Errorf("boundary: shapefile %s not found", path)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	fc := &geojson.FeatureCollection{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		props := make(map[string]any, len(names))
		for i := range names {
			props[names[i]] = strings.TrimSpace(reader.Attribute(i))
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   mp,
			Properties: props,
		})
	}

	if skipped > 0 {
		zap.L().Info("boundary: skipped non-polygon shapes", zap.Int("skipped", skipped))
	}
	zap.L().Info("boundary: shapefile loaded",
		zap.String("path", path),
		zap.Int("features", len(fc.Features)),
	)
	return fc, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon, one single-ring polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
