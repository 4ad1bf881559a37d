// Package normalize converts raw venue attribute values into well-formed
// numeric columns. Values that fail to parse become the missing marker;
// nothing in this package drops rows or raises on bad data.
package normalize

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// Coordinate parses a coordinate value that may use either '.' or ',' as the
// decimal separator. "41,015" parses as 41.015. Returns false for empty or
// non-numeric input.
func Coordinate(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a float the way normalized columns store it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CoordinateColumn rewrites a column in place to canonical numeric text.
// Unparseable cells become the missing marker. Same length and order as the
// input; no rows are dropped here — filtering happens downstream.
func CoordinateColumn(f *frame.Frame, col string) (converted, missing int, err error) {
	if err := f.Require(col); err != nil {
		return 0, 0, err
	}
	for i := 0; i < f.Len(); i++ {
		v, ok := Coordinate(f.Cell(i, col))
		if !ok {
			if err := f.SetCell(i, col, frame.Missing); err != nil {
				return converted, missing, err
			}
			missing++
			continue
		}
		if err := f.SetCell(i, col, FormatFloat(v)); err != nil {
			return converted, missing, err
		}
		converted++
	}
	if missing > 0 {
		zap.L().Debug("normalize: coordinate column has unparseable values",
			zap.String("column", col),
			zap.Int("missing", missing),
		)
	}
	return converted, missing, nil
}
