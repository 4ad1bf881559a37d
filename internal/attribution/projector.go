// Package attribution joins mobility pings to venues by projected proximity.
// It owns the venue coordinate filter, the WGS84-to-UTM projection, and the
// buffered containment join that produces the visit table.
package attribution

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// WGS84 ellipsoid and transverse Mercator constants.
const (
	semiMajor    = 6378137.0
	flattening   = 1.0 / 298.257223563
	scaleFactor  = 0.9996
	falseEasting = 500000.0
	southOffset  = 10000000.0
)

// Projector converts WGS84 degrees into planar UTM meters for a fixed zone.
// Distance and buffer arithmetic is only meaningful after projection;
// degree-based distance is not locally uniform.
type Projector struct {
	code  string
	zone  int
	south bool
	lon0  float64 // central meridian, radians
}

// NewProjector builds a projector from an EPSG code of the form "epsg:326xx"
// (UTM north) or "epsg:327xx" (UTM south). Any other code is a configuration
// error: attribution must fail loudly rather than proceed unprojected.
func NewProjector(code string) (*Projector, error) {
	s := strings.ToLower(strings.TrimSpace(code))
	s = strings.TrimPrefix(s, "epsg:")

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, eris.Errorf("attribution: projection %q is not an EPSG code", code)
	}

	var zone int
	var south bool
	switch {
	case n >= 32601 && n <= 32660:
		zone = n - 32600
	case n >= 32701 && n <= 32760:
		zone = n - 32700
		south = true
	default:
		return nil, eris.Errorf("attribution: projection %q is not a UTM zone (want epsg:326xx or epsg:327xx)", code)
	}

	lon0 := float64((zone-1)*6-180+3) * math.Pi / 180
	return &Projector{code: code, zone: zone, south: south, lon0: lon0}, nil
}

// Code returns the EPSG code the projector was built from.
func (p *Projector) Code() string { return p.code }

// Project converts a lng/lat pair (decimal degrees) to easting/northing meters.
// Transverse Mercator series expansion (USGS Professional Paper 1395),
// sub-millimeter within a UTM zone.
func (p *Projector) Project(lng, lat float64) geom.Coord {
	e2 := flattening * (2 - flattening)
	ep2 := e2 / (1 - e2)

	phi := lat * math.Pi / 180
	lam := lng * math.Pi / 180

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	tanPhi := math.Tan(phi)

	nu := semiMajor / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := (lam - p.lon0) * cosPhi

	e4 := e2 * e2
	e6 := e4 * e2
	m := semiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x := scaleFactor*nu*(a+(1-t+c)*a3/6+(5-18*t+t*t+72*c-58*ep2)*a5/120) + falseEasting
	y := scaleFactor * (m + nu*tanPhi*(a2/2+(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*ep2)*a6/720))
	if p.south {
		y += southOffset
	}

	return geom.Coord{x, y}
}
