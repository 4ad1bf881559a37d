package normalize

import (
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// PreprocessConfig declares which venue columns get which treatment. The
// defaults match the vendor export schema; absent columns are skipped.
type PreprocessConfig struct {
	SalesColumns   []string            // letter-coded volumes -> "<col>_num"
	RangeColumns   []string            // banded ranges -> "<col>_num"
	BedColumns     []string            // bed counts -> "<col>_num"
	BinaryColumns  map[string]map[string]int // categorical -> "<col>_encoded"
	NumericColumns []string            // coerced in place
	SegmentColumn  string              // Mapin segment code
	Categorical    []string            // one-hot encoded, drop-first
	Scale          bool                // min-max scale all produced numeric columns
}

// DefaultPreprocess is the treatment of the standard venue export.
func DefaultPreprocess() PreprocessConfig {
	return PreprocessConfig{
		SalesColumns: []string{"SatisHacmi", "DiageoSatisHacmi"},
		RangeColumns: []string{"OrtalamaHarcamaTutari", "KuverSayisi", "YillikMisafir"},
		BedColumns:   []string{"YatakSayisi"},
		BinaryColumns: map[string]map[string]int{
			"BiletEtkinlik": {"Etkinlik Yok": 0, "Etkinlik Var": 1},
			"HerseyDahil":   {"Hayır": 0, "Evet": 1},
			"KisMevsimi":    {"Hayır": 0, "Evet": 1},
		},
		NumericColumns: []string{"lat", "lng", "MapProfileScore", "MapPopulationScore"},
		SegmentColumn:  "Mapin Segment",
		Categorical:    []string{"SatisKanali", "MusteriProfili", "MusteriBolge4", "OtelTipi", "MapinSegment_Type"},
		Scale:          true,
	}
}

// Preprocess converts the raw venue attribute table into numeric features:
// coded and banded values parsed, categorical columns encoded, segment codes
// decoded, and (optionally) every numeric feature min-max scaled. Original
// source columns that were converted are dropped.
func Preprocess(f *frame.Frame, cfg PreprocessConfig) error {
	var numeric []string // produced numeric columns, for scaling
	var drop []string

	addParsed := func(src, dst string, parse func(string) (float64, bool)) error {
		if !f.Has(src) {
			return nil
		}
		values, err := f.Col(src)
		if err != nil {
			return err
		}
		out := make([]string, len(values))
		for i, v := range values {
			if x, ok := parse(v); ok {
				out[i] = FormatFloat(x)
			} else {
				out[i] = frame.Missing
			}
		}
		if err := f.AddColumn(dst, out); err != nil {
			return err
		}
		numeric = append(numeric, dst)
		drop = append(drop, src)
		return nil
	}

	for _, c := range cfg.SalesColumns {
		if err := addParsed(c, c+"_num", SalesVolume); err != nil {
			return err
		}
	}
	for _, c := range cfg.RangeColumns {
		if err := addParsed(c, c+"_num", RangeMidpoint); err != nil {
			return err
		}
	}
	for _, c := range cfg.BedColumns {
		if err := addParsed(c, c+"_num", BedCount); err != nil {
			return err
		}
	}
	for c, mapping := range cfg.BinaryColumns {
		m := mapping
		if err := addParsed(c, c+"_encoded", func(v string) (float64, bool) {
			return BinaryEncode(v, m)
		}); err != nil {
			return err
		}
	}

	for _, c := range cfg.NumericColumns {
		if !f.Has(c) {
			continue
		}
		if _, _, err := CoordinateColumn(f, c); err != nil {
			return err
		}
		numeric = append(numeric, c)
	}

	if cfg.SegmentColumn != "" && f.Has(cfg.SegmentColumn) {
		if err := decodeSegments(f, cfg.SegmentColumn); err != nil {
			return err
		}
		numeric = append(numeric, "MapinSegment_Population_Num", "MapinSegment_Luxury_Num")
		drop = append(drop, cfg.SegmentColumn)
	}

	if removed := f.Drop(drop...); len(removed) > 0 {
		zap.L().Debug("normalize: dropped converted source columns", zap.Strings("columns", removed))
	}

	if err := OneHotEncode(f, cfg.Categorical); err != nil {
		return err
	}

	if cfg.Scale {
		if err := MinMaxScaleColumns(f, numeric); err != nil {
			return err
		}
	}

	zap.L().Info("normalize: venue table preprocessed",
		zap.Int("rows", f.Len()),
		zap.Int("columns", f.Width()),
	)
	return nil
}

// decodeSegments expands the segment code column into type, population, and
// luxury columns.
func decodeSegments(f *frame.Frame, col string) error {
	values, err := f.Col(col)
	if err != nil {
		return err
	}

	types := make([]string, len(values))
	pops := make([]string, len(values))
	luxes := make([]string, len(values))
	for i, v := range values {
		seg, ok := MapinSegment(v)
		if !ok {
			continue
		}
		types[i] = seg.Type
		if seg.PopValid {
			pops[i] = FormatFloat(seg.Population)
		}
		if seg.LuxValid {
			luxes[i] = FormatFloat(seg.Luxury)
		}
	}

	if err := f.AddColumn("MapinSegment_Type", types); err != nil {
		return err
	}
	if err := f.AddColumn("MapinSegment_Population_Num", pops); err != nil {
		return err
	}
	return f.AddColumn("MapinSegment_Luxury_Num", luxes)
}
