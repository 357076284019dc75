package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/spacetime/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Index positions are plain Cartesian metres. Geographic input is projected
// to Web Mercator (EPSG:3857) so one index unit stays one metre near the
// equator; elevation passes through unchanged.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParsePosition parses "x,y" or "x,y,z" into a position. A missing z is 0.
// NaN and infinite components are rejected.
func ParsePosition(coords string) (core.Position3D, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Position3D{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, coords)
	}

	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return core.Position3D{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, coords)
		}
		v[i] = f
	}
	return core.Position3D{X: v[0], Y: v[1], Z: v[2]}, nil
}

// ProjectLonLat converts a WGS84 longitude/latitude in degrees plus an
// elevation in metres to an index position.
func ProjectLonLat(longitude, latitude, elevation float64) (core.Position3D, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return core.Position3D{}, fmt.Errorf("%w: lon %g lat %g", ErrInvalidCoordinates, longitude, latitude)
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return core.Position3D{X: x, Y: y, Z: elevation}, nil
}

// ParseLonLat parses "lon,lat" or "lon,lat,elev" and projects it.
func ParseLonLat(coords string) (core.Position3D, error) {
	p, err := ParsePosition(coords)
	if err != nil {
		return core.Position3D{}, err
	}
	return ProjectLonLat(p.X, p.Y, p.Z)
}

// ToPoint converts a position to an XYZ point.
func ToPoint(p core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

// ToMultiPoint collects positions into an XYZ multipoint, e.g. for WKT output.
func ToMultiPoint(ps []core.Position3D) geom.MultiPoint {
	points := make([]geom.Point, len(ps))
	for i, p := range ps {
		points[i] = ToPoint(p)
	}
	return geom.NewMultiPoint(points)
}

// LocationsWKT renders positions as a WKT MULTIPOINT Z.
func LocationsWKT(ps []core.Position3D) string {
	if len(ps) == 0 {
		return "MULTIPOINT Z EMPTY"
	}
	return ToMultiPoint(ps).AsText()
}
