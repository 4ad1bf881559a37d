package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/attribution"
	"github.com/mapin-insights/richness-cli/internal/config"
	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/normalize"
)

// loadPings loads the ping table, schema-checked, capped at maxRows.
func loadPings(path string, maxRows int) (*frame.Frame, error) {
	f, err := frame.Open(path, frame.ReadOptions{
		Delimiter: config.Delimiter(cfg.Inputs.PingDelimiter, ','),
		MaxRows:   maxRows,
		TrimSpace: true,
	})
	if err != nil {
		return nil, err
	}
	if err := f.Require(
		attribution.PingDeviceCol,
		attribution.PingTimestampCol,
		attribution.PingLatCol,
		attribution.PingLngCol,
	); err != nil {
		return nil, eris.Wrapf(err, "pings %s", path)
	}
	zap.L().Info("pings loaded", zap.String("path", path), zap.Int("rows", f.Len()))
	return f, nil
}

// loadVenues loads the venue table (CSV or XLSX), normalizes its coordinate
// columns, and applies the hard coordinate filter. Returns the filtered
// table and the number of rows dropped for missing coordinates.
func loadVenues(path string) (*frame.Frame, int, error) {
	var f *frame.Frame
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		f, err = frame.OpenXLSX(path, frame.XLSXOptions{})
	} else {
		f, err = frame.Open(path, frame.ReadOptions{
			Delimiter: config.Delimiter(cfg.Inputs.VenueDelimiter, ';'),
			Encoding:  cfg.Inputs.VenueEncoding,
			TrimSpace: true,
		})
	}
	if err != nil {
		return nil, 0, err
	}

	latCol := cfg.Inputs.VenueLatCol
	lngCol := cfg.Inputs.VenueLngCol
	if err := f.Require(latCol, lngCol); err != nil {
		return nil, 0, eris.Wrapf(err, "venues %s", path)
	}

	for _, col := range []string{latCol, lngCol} {
		if _, _, err := normalize.CoordinateColumn(f, col); err != nil {
			return nil, 0, err
		}
	}

	kept, dropped, err := attribution.FilterVenues(f, latCol, lngCol)
	if err != nil {
		return nil, 0, err
	}
	zap.L().Info("venues loaded",
		zap.String("path", path),
		zap.Int("rows", kept.Len()),
		zap.Int("dropped_missing_coordinates", dropped),
	)
	return kept, dropped, nil
}

// loadFeatures loads the per-device feature table. The join-key header
// normalization happens inside the feature join.
func loadFeatures(path string) (*frame.Frame, error) {
	f, err := frame.Open(path, frame.ReadOptions{Delimiter: ',', TrimSpace: true})
	if err != nil {
		return nil, err
	}
	zap.L().Info("device features loaded", zap.String("path", path), zap.Int("rows", f.Len()))
	return f, nil
}
