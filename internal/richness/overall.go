package richness

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/feature"
	"github.com/mapin-insights/richness-cli/internal/frame"
	"github.com/mapin-insights/richness-cli/internal/normalize"
)

// OverallScoreCol is the combined score column.
const OverallScoreCol = "overall_richness_score"

// Component is one behavioral dimension entering the overall score: a
// device-to-cluster assignment table plus a per-cluster score table.
type Component struct {
	Name        string       // e.g. "cafe", "ping", "restaurant"
	Assignments *frame.Frame // device_aid (possibly unlabeled) + cluster column
	Scores      *frame.Frame // cluster column + score column
	ClusterCol  string       // defaults to "cluster"
	ScoreCol    string       // defaults to "score"
	Weight      float64
}

// Overall combines per-cluster component scores into one weighted score per
// device. Only devices present in every component's assignment table are
// scored (inner join). A cluster with no score row contributes zero and is
// reported once — the assignment files can reference clusters the score
// files never produced.
func Overall(components []Component) (*frame.Frame, error) {
	if len(components) == 0 {
		return nil, eris.New("richness: overall needs at least one component")
	}

	var totalWeight float64
	for i := range components {
		c := &components[i]
		if c.ClusterCol == "" {
			c.ClusterCol = "cluster"
		}
		if c.ScoreCol == "" {
			c.ScoreCol = "score"
		}
		if c.Weight <= 0 {
			return nil, eris.Errorf("richness: component %q weight must be positive (got %v)", c.Name, c.Weight)
		}
		totalWeight += c.Weight

		if err := feature.NormalizeKey(c.Assignments); err != nil {
			return nil, eris.Wrapf(err, "richness: component %q assignments", c.Name)
		}
		if err := c.Assignments.Require(c.ClusterCol); err != nil {
			return nil, eris.Wrapf(err, "richness: component %q assignments", c.Name)
		}
		if err := c.Scores.Require(c.ClusterCol, c.ScoreCol); err != nil {
			return nil, eris.Wrapf(err, "richness: component %q scores", c.Name)
		}
		if c.Assignments.Len() == 0 {
			return nil, eris.Wrapf(frame.ErrEmptyResult, "richness: component %q has no assignments", c.Name)
		}
	}

	// Per component: device -> cluster, cluster -> score.
	type lookup struct {
		clusterOf map[string]string
		scoreOf   map[string]float64
	}
	lookups := make([]lookup, len(components))
	for ci, c := range components {
		keyIdx := c.Assignments.Index(feature.DeviceKey)
		clIdx := c.Assignments.Index(c.ClusterCol)
		clusterOf := make(map[string]string, c.Assignments.Len())
		for i := 0; i < c.Assignments.Len(); i++ {
			row := c.Assignments.Row(i)
			clusterOf[row[keyIdx]] = row[clIdx]
		}

		sClIdx := c.Scores.Index(c.ClusterCol)
		sScIdx := c.Scores.Index(c.ScoreCol)
		scoreOf := make(map[string]float64, c.Scores.Len())
		for i := 0; i < c.Scores.Len(); i++ {
			row := c.Scores.Row(i)
			if v, ok := normalize.Coordinate(row[sScIdx]); ok {
				scoreOf[row[sClIdx]] = v
			}
		}
		lookups[ci] = lookup{clusterOf: clusterOf, scoreOf: scoreOf}
	}

	// Inner join: devices present in every assignment table.
	var devices []string
	for d := range lookups[0].clusterOf {
		inAll := true
		for _, l := range lookups[1:] {
			if _, ok := l.clusterOf[d]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			devices = append(devices, d)
		}
	}
	sort.Strings(devices)

	if len(devices) == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "richness: no device appears in every component")
	}
	zap.L().Info("richness: overall join",
		zap.Int("common_devices", len(devices)),
		zap.Int("components", len(components)),
	)

	cols := []string{feature.DeviceKey}
	for _, c := range components {
		cols = append(cols, c.Name+"_cluster", c.Name+"_richness_score")
	}
	cols = append(cols, OverallScoreCol)

	out, err := frame.New(cols)
	if err != nil {
		return nil, err
	}

	unscored := map[string]bool{}
	for _, d := range devices {
		row := make([]string, 0, len(cols))
		row = append(row, d)

		var weighted float64
		for ci, c := range components {
			cluster := lookups[ci].clusterOf[d]
			score, ok := lookups[ci].scoreOf[cluster]
			if !ok {
				// Missing cluster score: zero contribution, reported once.
				key := c.Name + ":" + cluster
				if !unscored[key] {
					unscored[key] = true
					zap.L().Warn("richness: cluster has no score, contributing zero",
						zap.String("component", c.Name),
						zap.String("cluster", cluster),
					)
				}
			}
			weighted += c.Weight * score
			row = append(row, cluster, normalize.FormatFloat(score))
		}
		row = append(row, strconv.FormatFloat(weighted/totalWeight, 'f', 6, 64))
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
