// Package geo provides coordinates and great-circle distance for delivery checks.
package geo

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID for WGS 84 longitude/latitude.
const SRID = 4326

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90],
// longitudes outside [-180, 180], or non-finite values.
var ErrInvalidCoordinate = eris.New("geo: invalid coordinate")

// Coordinate is a point in signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate checks the latitude and longitude ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return eris.Wrapf(ErrInvalidCoordinate, "latitude %v out of range", c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return eris.Wrapf(ErrInvalidCoordinate, "longitude %v out of range", c.Lng)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Point returns the coordinate as a go-geom point (X = lng, Y = lat).
func (c Coordinate) Point() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}).SetSRID(SRID)
}

// EWKB encodes the coordinate as little-endian EWKB with SRID 4326.
func (c Coordinate) EWKB() ([]byte, error) {
	data, err := ewkb.Marshal(c.Point(), ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}
