package normalize

import (
	"math"
	"sort"
	"strconv"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// OneHotEncode replaces each named categorical column with indicator columns
// named "col_value". The first category (sorted order) is dropped to avoid
// collinearity. Missing cells produce all zeros. Absent columns are skipped.
func OneHotEncode(f *frame.Frame, cols []string) error {
	for _, col := range cols {
		if !f.Has(col) {
			continue
		}
		values, err := f.Col(col)
		if err != nil {
			return err
		}

		distinct := map[string]bool{}
		for _, v := range values {
			if v != frame.Missing {
				distinct[v] = true
			}
		}
		cats := make([]string, 0, len(distinct))
		for v := range distinct {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		if len(cats) > 0 {
			cats = cats[1:] // drop-first
		}

		for _, cat := range cats {
			indicator := make([]string, len(values))
			for i, v := range values {
				if v == cat {
					indicator[i] = "1"
				} else {
					indicator[i] = "0"
				}
			}
			if err := f.AddColumn(col+"_"+cat, indicator); err != nil {
				return err
			}
		}
		f.Drop(col)
	}
	return nil
}

// MinMaxScaleColumns rescales each named numeric column to [0, 1] across the
// frame. Missing cells stay missing. A constant column scales to 0. Absent
// columns are skipped.
func MinMaxScaleColumns(f *frame.Frame, cols []string) error {
	for _, col := range cols {
		if !f.Has(col) {
			continue
		}
		values, err := f.Col(col)
		if err != nil {
			return err
		}

		min, max := math.Inf(1), math.Inf(-1)
		parsed := make([]float64, len(values))
		valid := make([]bool, len(values))
		for i, v := range values {
			x, ok := Coordinate(v)
			if !ok {
				continue
			}
			parsed[i], valid[i] = x, true
			if x < min {
				min = x
			}
			if x > max {
				max = x
			}
		}
		if math.IsInf(min, 1) {
			continue // no numeric values at all
		}

		span := max - min
		for i := range values {
			if !valid[i] {
				continue
			}
			scaled := 0.0
			if span > 0 {
				scaled = (parsed[i] - min) / span
			}
			if err := f.SetCell(i, col, strconv.FormatFloat(scaled, 'f', -1, 64)); err != nil {
				return err
			}
		}
	}
	return nil
}
