package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/delivery-cli/internal/geo"
)

func TestCheckMany_PreservesOrder(t *testing.T) {
	e := newTestEvaluator(t)
	center := DefaultServiceArea().Center
	points := []geo.Coordinate{
		center,
		geo.Destination(center, 0, 200),
		{Lat: 123, Lng: 0},
		{Lat: -24.6544, Lng: 25.9079},
	}

	out, err := e.CheckMany(context.Background(), points, 2)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, points[0], out[0].Point)
	assert.True(t, out[0].Result.InDeliveryRange)
	assert.False(t, out[1].Result.InCityArea)
	assert.True(t, errors.Is(out[2].Err, geo.ErrInvalidCoordinate))
	require.NotNil(t, out[3].Result.NearestBranch)
	assert.Equal(t, "bontleng", out[3].Result.NearestBranch.Key)
}

func TestCheckMany_Cancelled(t *testing.T) {
	e := newTestEvaluator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.CheckMany(ctx, []geo.Coordinate{DefaultServiceArea().Center}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCheckMany_Empty(t *testing.T) {
	e := newTestEvaluator(t)
	out, err := e.CheckMany(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}
