package attribution

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// FilterVenues discards venue rows whose latitude or longitude is missing or
// non-numeric after normalization. This is a hard filter: no row with an
// unusable coordinate may reach the attribution join. The dropped count is
// reported so callers can surface it.
func FilterVenues(f *frame.Frame, latCol, lngCol string) (*frame.Frame, int, error) {
	if err := f.Require(latCol, lngCol); err != nil {
		return nil, 0, err
	}

	latIdx := f.Index(latCol)
	lngIdx := f.Index(lngCol)

	kept := f.FilterRows(func(row []string) bool {
		return parsable(row[latIdx]) && parsable(row[lngIdx])
	})

	dropped := f.Len() - kept.Len()
	if dropped > 0 {
		zap.L().Info("attribution: dropped venues with missing coordinates",
			zap.Int("dropped", dropped),
			zap.Int("kept", kept.Len()),
		)
	}
	return kept, dropped, nil
}

func parsable(cell string) bool {
	if cell == frame.Missing {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}
