// Package feature enriches the visit table with per-device behavioral
// attributes keyed by device identifier.
package feature

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// DeviceKey is the join key column on both sides.
const DeviceKey = "device_aid"

// NormalizeKey makes the feature table joinable: exports that carry the
// device identifier as an unlabeled first column get it renamed to
// device_aid. Returns ErrSchemaViolation when no device column can be found.
func NormalizeKey(features *frame.Frame) error {
	if features.Has(DeviceKey) {
		return nil
	}
	if features.NormalizeHeader(0, DeviceKey) {
		zap.L().Info("feature: renamed unlabeled first column to device identifier")
		return nil
	}
	return eris.Wrapf(frame.ErrSchemaViolation,
		"feature: no %q column and first column %q is labeled", DeviceKey, features.Columns()[0])
}

// Join inner-joins visits with device features on device_aid. Visits whose
// device has no feature row are dropped: scores are computed only over
// devices for which features exist. The enriched row count never exceeds the
// visit count times the feature rows per device.
func Join(visits, features *frame.Frame) (*frame.Frame, error) {
	if err := visits.Require(DeviceKey); err != nil {
		return nil, err
	}
	if err := NormalizeKey(features); err != nil {
		return nil, err
	}
	if visits.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "feature: visit table is empty")
	}
	if features.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "feature: feature table is empty")
	}

	// Index feature rows by device. Later duplicates win, matching a
	// keep-last dedup of the feature export.
	featKey := features.Index(DeviceKey)
	byDevice := make(map[string]int, features.Len())
	for i := 0; i < features.Len(); i++ {
		byDevice[features.Row(i)[featKey]] = i
	}

	// Output: visit columns, then feature columns except the key. A feature
	// column colliding with a visit column keeps the visit value; feature
	// side contributes under a declared suffix instead of silently shadowing.
	outCols := visits.Columns()
	taken := make(map[string]bool, len(outCols))
	for _, c := range outCols {
		taken[c] = true
	}

	featCols := features.Columns()
	featSrc := make([]int, 0, len(featCols))
	for j, c := range featCols {
		if j == featKey {
			continue
		}
		name := c
		if taken[name] {
			name = c + "_feature"
		}
		if taken[name] {
			return nil, eris.Wrapf(frame.ErrSchemaViolation, "feature: column %q collides twice", c)
		}
		taken[name] = true
		outCols = append(outCols, name)
		featSrc = append(featSrc, j)
	}

	out, err := frame.New(outCols)
	if err != nil {
		return nil, err
	}

	visitKey := visits.Index(DeviceKey)
	var matched int
	for i := 0; i < visits.Len(); i++ {
		vrow := visits.Row(i)
		fi, ok := byDevice[vrow[visitKey]]
		if !ok {
			continue // deliberate filter, not data loss
		}
		matched++

		row := make([]string, 0, len(outCols))
		row = append(row, vrow...)
		frow := features.Row(fi)
		for _, j := range featSrc {
			row = append(row, frow[j])
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}

	zap.L().Info("feature: visits enriched",
		zap.Int("visits", visits.Len()),
		zap.Int("enriched", matched),
		zap.Int("devices_with_features", len(byDevice)),
	)
	if out.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "feature: no visit device has a feature row")
	}
	return out, nil
}
