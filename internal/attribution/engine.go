package attribution

import (
	"sort"
	"strconv"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/frame"
)

// Ping table schema (checked at load time, required here).
const (
	PingDeviceCol    = "device_aid"
	PingTimestampCol = "timestamp"
	PingLatCol       = "latitude"
	PingLngCol       = "longitude"
)

// Visit table names for the ping's original, unprojected coordinates.
const (
	VisitLatCol = "original_latitude"
	VisitLngCol = "original_longitude"
)

// rectPad slightly inflates venue bounding boxes so that boundary points are
// never lost to the index; the exact inclusive distance test decides.
const rectPad = 1e-6

// Engine materializes visit records for every (ping, venue) pair where the
// projected ping lies within Radius meters of the projected venue.
type Engine struct {
	Radius float64    // buffer radius in projected meters
	Proj   *Projector // required; attribution never runs on raw degrees
	LatCol string     // venue latitude column
	LngCol string     // venue longitude column
}

// venueDisk is one buffered venue point in the r-tree.
type venueDisk struct {
	bounds rtreego.Rect
	row    int
	x, y   float64
}

func (v *venueDisk) Bounds() rtreego.Rect { return v.bounds }

// Attribute joins pings to venues. Output columns: device_aid, timestamp,
// original_latitude, original_longitude, then every venue column under its
// original name. On a name collision the venue-side column wins the slot.
// A ping inside the buffer of several venues yields one row per venue;
// no deduplication.
func (e *Engine) Attribute(pings, venues *frame.Frame) (*frame.Frame, error) {
	if e.Proj == nil {
		return nil, eris.New("attribution: no projector configured")
	}
	if e.Radius <= 0 {
		return nil, eris.Errorf("attribution: buffer radius must be positive (got %v)", e.Radius)
	}
	if err := pings.Require(PingDeviceCol, PingTimestampCol, PingLatCol, PingLngCol); err != nil {
		return nil, err
	}
	if err := venues.Require(e.LatCol, e.LngCol); err != nil {
		return nil, err
	}
	if pings.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "attribution: ping table is empty")
	}
	if venues.Len() == 0 {
		return nil, eris.Wrap(frame.ErrEmptyResult, "attribution: venue table is empty")
	}

	tree, err := e.indexVenues(venues)
	if err != nil {
		return nil, err
	}

	out, venueSrc, err := e.visitFrame(venues)
	if err != nil {
		return nil, err
	}

	pingDevice := pings.Index(PingDeviceCol)
	pingTime := pings.Index(PingTimestampCol)
	pingLat := pings.Index(PingLatCol)
	pingLng := pings.Index(PingLngCol)

	r2 := e.Radius * e.Radius
	var skipped int

	for i := 0; i < pings.Len(); i++ {
		row := pings.Row(i)
		lat, err1 := strconv.ParseFloat(row[pingLat], 64)
		lng, err2 := strconv.ParseFloat(row[pingLng], 64)
		if err1 != nil || err2 != nil {
			skipped++
			continue
		}

		p := e.Proj.Project(lng, lat)
		candidates := tree.SearchIntersect(rtreego.Point{p[0], p[1]}.ToRect(rectPad))

		var matches []*venueDisk
		for _, c := range candidates {
			d := c.(*venueDisk)
			dx := p[0] - d.x
			dy := p[1] - d.y
			if dx*dx+dy*dy <= r2 { // boundary-inclusive
				matches = append(matches, d)
			}
		}
		sort.Slice(matches, func(a, b int) bool { return matches[a].row < matches[b].row })

		for _, m := range matches {
			vrow := venues.Row(m.row)
			visit := make([]string, 0, out.Width())
			for _, src := range venueSrc {
				switch src.pingField {
				case pingFieldDevice:
					visit = append(visit, row[pingDevice])
				case pingFieldTimestamp:
					visit = append(visit, row[pingTime])
				case pingFieldLat:
					visit = append(visit, row[pingLat])
				case pingFieldLng:
					visit = append(visit, row[pingLng])
				default:
					visit = append(visit, vrow[src.venueIdx])
				}
			}
			if err := out.AppendRow(visit); err != nil {
				return nil, err
			}
		}
	}

	if skipped > 0 {
		zap.L().Warn("attribution: skipped pings with unparseable coordinates",
			zap.Int("skipped", skipped),
		)
	}
	zap.L().Info("attribution: visit table built",
		zap.Int("pings", pings.Len()),
		zap.Int("venues", venues.Len()),
		zap.Int("visits", out.Len()),
		zap.Float64("radius_m", e.Radius),
		zap.String("projection", e.Proj.Code()),
	)
	return out, nil
}

// indexVenues projects every venue and inserts its buffered bounding box into
// an r-tree. An unparseable venue coordinate here means the caller skipped
// FilterVenues; that is a contract breach, not recoverable data noise.
func (e *Engine) indexVenues(venues *frame.Frame) (*rtreego.Rtree, error) {
	latIdx := venues.Index(e.LatCol)
	lngIdx := venues.Index(e.LngCol)

	tree := rtreego.NewTree(2, 25, 50)
	for i := 0; i < venues.Len(); i++ {
		row := venues.Row(i)
		lat, err1 := strconv.ParseFloat(row[latIdx], 64)
		lng, err2 := strconv.ParseFloat(row[lngIdx], 64)
		if err1 != nil || err2 != nil {
			return nil, eris.Wrapf(frame.ErrUnparseableValue,
				"attribution: venue row %d has a non-numeric coordinate; run the venue filter first", i)
		}

		p := e.Proj.Project(lng, lat)
		half := e.Radius + rectPad
		rect, err := rtreego.NewRect(
			rtreego.Point{p[0] - half, p[1] - half},
			[]float64{2 * half, 2 * half},
		)
		if err != nil {
			return nil, eris.Wrapf(err, "attribution: venue row %d bounding box", i)
		}
		tree.Insert(&venueDisk{bounds: rect, row: i, x: p[0], y: p[1]})
	}
	return tree, nil
}

// pingField tags output slots sourced from the ping side.
type pingField int

const (
	pingFieldNone pingField = iota
	pingFieldDevice
	pingFieldTimestamp
	pingFieldLat
	pingFieldLng
)

// visitSource maps one output column to its side of the join.
type visitSource struct {
	pingField pingField
	venueIdx  int
}

// visitFrame declares the output schema and the per-column source mapping.
// Collision resolution is explicit here: a venue column named like one of the
// four ping-side output columns takes over that slot (venue-side wins).
func (e *Engine) visitFrame(venues *frame.Frame) (*frame.Frame, []visitSource, error) {
	cols := []string{PingDeviceCol, PingTimestampCol, VisitLatCol, VisitLngCol}
	sources := []visitSource{
		{pingField: pingFieldDevice},
		{pingField: pingFieldTimestamp},
		{pingField: pingFieldLat},
		{pingField: pingFieldLng},
	}

	slot := make(map[string]int, len(cols))
	for j, c := range cols {
		slot[c] = j
	}

	for j, vc := range venues.Columns() {
		if at, collides := slot[vc]; collides {
			sources[at] = visitSource{venueIdx: j}
			continue
		}
		slot[vc] = len(cols)
		cols = append(cols, vc)
		sources = append(sources, visitSource{venueIdx: j})
	}

	out, err := frame.New(cols)
	if err != nil {
		return nil, nil, err
	}
	return out, sources, nil
}
