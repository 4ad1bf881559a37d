// Package richness reduces visit tables to per-group normalized scores.
// Every weight and normalization choice is configuration; there are no
// hidden constants in the formula.
package richness

import (
	"math"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/normalize"
)

// CountCol is the per-group visit count column in the score table.
const CountCol = "visit_count"

// Aggregate statistics.
const (
	AggregateMean = "mean"
	AggregateSum  = "sum"
)

// Normalization methods applied across groups before weighting.
const (
	NormalizeNone   = "none"
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"
)

// Config declares the scoring formula. The grouping key is caller-supplied:
// venue id, cluster id, or category.
type Config struct {
	GroupBy      string             // grouping key column
	Features     []string           // numeric columns to aggregate per group
	Aggregate    string             // mean or sum
	LogTransform []string           // aggregated columns passed through log1p
	Normalize    string             // none, minmax, or zscore
	Weights      map[string]float64 // per output column (features and visit_count); empty = 1.0 each
	ScoreColumn  string             // defaults to "richness_score"
}

// Validate rejects malformed configuration before any data is touched.
func (c *Config) Validate() error {
	if c.GroupBy == "" {
		return eris.New("richness: grouping key column is required")
	}
	switch c.Aggregate {
	case AggregateMean, AggregateSum:
	default:
		return eris.Errorf("richness: aggregate must be %q or %q (got %q)",
			AggregateMean, AggregateSum, c.Aggregate)
	}
	switch c.Normalize {
	case NormalizeNone, NormalizeMinMax, NormalizeZScore:
	default:
		return eris.Errorf("richness: normalize must be %q, %q, or %q (got %q)",
			NormalizeNone, NormalizeMinMax, NormalizeZScore, c.Normalize)
	}
	if c.ScoreColumn == "" {
		c.ScoreColumn = "richness_score"
	}
	return nil
}

// group accumulates per-key aggregation state.
type group struct {
	key   string
	count int
	sums  []float64 // per feature
	ns    []int     // parseable cells per feature
}

// Score groups the enriched visit table by the configured key and reduces
// each group to one row: key, visit_count, aggregated features, and the
// weighted score. Groups with zero visits cannot appear — they have no rows
// to aggregate. Output rows are sorted by group key so identical inputs
// always yield identical tables.
func Score(f *frame.Frame, cfg Config) (*frame.Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := f.Require(cfg.GroupBy); err != nil {
		return nil, err
	}
	if err := f.Require(cfg.Features...); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "richness: input table is empty")
	}

	keyIdx := f.Index(cfg.GroupBy)
	featIdx := make([]int, len(cfg.Features))
	for j, c := range cfg.Features {
		featIdx[j] = f.Index(c)
	}

	groups := map[string]*group{}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		g, ok := groups[row[keyIdx]]
		if !ok {
			g = &group{
				key:  row[keyIdx],
				sums: make([]float64, len(featIdx)),
				ns:   make([]int, len(featIdx)),
			}
			groups[row[keyIdx]] = g
		}
		g.count++
		for j, idx := range featIdx {
			if v, ok := normalize.Coordinate(row[idx]); ok {
				g.sums[j] += v
				g.ns[j]++
			}
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].key < ordered[b].key })

	// Aggregate columns: visit_count first, then the features.
	aggCols := append([]string{CountCol}, cfg.Features...)
	values := make([][]float64, len(ordered)) // per group, per agg column
	valid := make([][]bool, len(ordered))
	for gi, g := range ordered {
		values[gi] = make([]float64, len(aggCols))
		valid[gi] = make([]bool, len(aggCols))
		values[gi][0] = float64(g.count)
		valid[gi][0] = true
		for j := range cfg.Features {
			if g.ns[j] == 0 {
				continue // group has no parseable values for this feature
			}
			v := g.sums[j]
			if cfg.Aggregate == AggregateMean {
				v /= float64(g.ns[j])
			}
			values[gi][j+1] = v
			valid[gi][j+1] = true
		}
	}

	applyLogTransform(aggCols, values, valid, cfg.LogTransform)
	weighted := normalizeColumns(values, valid, cfg.Normalize)

	weights := effectiveWeights(aggCols, cfg.Weights)

	out, err := frame.New(append(append([]string{cfg.GroupBy}, aggCols...), cfg.ScoreColumn))
	if err != nil {
		return nil, err
	}
	for gi, g := range ordered {
		score := 0.0
		for ci := range aggCols {
			if valid[gi][ci] {
				score += weights[ci] * weighted[gi][ci]
			}
		}

		row := make([]string, 0, len(aggCols)+2)
		row = append(row, g.key)
		for ci := range aggCols {
			if valid[gi][ci] {
				row = append(row, normalize.FormatFloat(values[gi][ci]))
			} else {
				row = append(row, frame.Missing)
			}
		}
		row = append(row, strconv.FormatFloat(score, 'f', 6, 64))
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}

	zap.L().Info("richness: scores computed",
		zap.String("group_by", cfg.GroupBy),
		zap.Int("rows", f.Len()),
		zap.Int("groups", out.Len()),
		zap.String("aggregate", cfg.Aggregate),
		zap.String("normalize", cfg.Normalize),
	)
	return out, nil
}

// applyLogTransform replaces named aggregated columns with log1p of their
// values, compressing heavy-tailed counts the way the original score recipes
// do for visit totals and dwell times.
func applyLogTransform(cols []string, values [][]float64, valid [][]bool, transform []string) {
	if len(transform) == 0 {
		return
	}
	want := make(map[string]bool, len(transform))
	for _, c := range transform {
		want[c] = true
	}
	for ci, c := range cols {
		if !want[c] {
			continue
		}
		for gi := range values {
			if valid[gi][ci] {
				values[gi][ci] = math.Log1p(values[gi][ci])
			}
		}
	}
}

// normalizeColumns rescales each aggregate column across groups. The raw
// aggregates stay in the output table; only the score uses scaled values.
func normalizeColumns(values [][]float64, valid [][]bool, method string) [][]float64 {
	out := make([][]float64, len(values))
	for gi := range values {
		out[gi] = append([]float64(nil), values[gi]...)
	}
	if method == NormalizeNone || len(values) == 0 {
		return out
	}

	nCols := len(values[0])
	for ci := 0; ci < nCols; ci++ {
		var xs []float64
		for gi := range values {
			if valid[gi][ci] {
				xs = append(xs, values[gi][ci])
			}
		}
		if len(xs) == 0 {
			continue
		}

		switch method {
		case NormalizeMinMax:
			min, max := xs[0], xs[0]
			for _, x := range xs {
				if x < min {
					min = x
				}
				if x > max {
					max = x
				}
			}
			span := max - min
			for gi := range out {
				if !valid[gi][ci] {
					continue
				}
				if span > 0 {
					out[gi][ci] = (values[gi][ci] - min) / span
				} else {
					out[gi][ci] = 0
				}
			}

		case NormalizeZScore:
			var sum float64
			for _, x := range xs {
				sum += x
			}
			mean := sum / float64(len(xs))
			var ss float64
			for _, x := range xs {
				ss += (x - mean) * (x - mean)
			}
			std := math.Sqrt(ss / float64(len(xs)))
			for gi := range out {
				if !valid[gi][ci] {
					continue
				}
				if std > 0 {
					out[gi][ci] = (values[gi][ci] - mean) / std
				} else {
					out[gi][ci] = 0
				}
			}
		}
	}
	return out
}

// effectiveWeights resolves the weight of each aggregate column. An empty map
// weighs everything 1.0. Weight keys naming no column are reported, matching
// the original recipes' behavior of warning instead of failing.
func effectiveWeights(cols []string, weights map[string]float64) []float64 {
	out := make([]float64, len(cols))
	if len(weights) == 0 {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	have := make(map[string]bool, len(cols))
	for i, c := range cols {
		out[i] = weights[c] // absent key contributes 0
		have[c] = true
	}
	for k := range weights {
		if !have[k] {
			zap.L().Warn("richness: weight names no aggregate column", zap.String("column", k))
		}
	}
	return out
}
