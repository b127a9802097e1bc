package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		ok    bool
	}{
		{"city center", gaboroneCenter, true},
		{"north pole", Coordinate{Lat: 90, Lng: 0}, true},
		{"date line", Coordinate{Lat: 0, Lng: -180}, true},
		{"lat too high", Coordinate{Lat: 90.0001, Lng: 0}, false},
		{"lat too low", Coordinate{Lat: -91, Lng: 0}, false},
		{"lng too high", Coordinate{Lat: 0, Lng: 180.5}, false},
		{"lng too low", Coordinate{Lat: 0, Lng: -200}, false},
		{"nan lat", Coordinate{Lat: math.NaN(), Lng: 0}, false},
		{"inf lng", Coordinate{Lat: 0, Lng: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCoordinate))
		})
	}
}

func TestCoordinate_Point(t *testing.T) {
	p := bontleng.Point()
	assert.Equal(t, SRID, p.SRID())
	assert.Equal(t, geom.XY, p.Layout())
	assert.InDelta(t, bontleng.Lng, p.X(), 1e-12)
	assert.InDelta(t, bontleng.Lat, p.Y(), 1e-12)
}

func TestCoordinate_EWKB(t *testing.T) {
	data, err := block9.EWKB()
	require.NoError(t, err)

	g, err := ewkb.Unmarshal(data)
	require.NoError(t, err)
	p, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, SRID, p.SRID())
	assert.InDelta(t, block9.Lat, p.Y(), 1e-12)
}

func TestCoordinate_String(t *testing.T) {
	assert.Equal(t, "-24.628200,25.908600", gaboroneCenter.String())
}
