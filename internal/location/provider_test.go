package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/delivery-cli/internal/geo"
)

var bontleng = geo.Coordinate{Lat: -24.6544, Lng: 25.9079}

func TestRequest_Static(t *testing.T) {
	c, err := Request(context.Background(), Static{Coordinate: bontleng}, 0)
	require.NoError(t, err)
	assert.Equal(t, bontleng, c)
}

func TestRequest_NilProvider(t *testing.T) {
	_, err := Request(context.Background(), nil, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
	assert.Equal(t, KindUnsupported, KindOf(err))
}

func TestRequest_DefaultTimeoutApplied(t *testing.T) {
	var deadline time.Time
	p := ProviderFunc(func(ctx context.Context) (geo.Coordinate, error) {
		deadline, _ = ctx.Deadline()
		return bontleng, nil
	})

	start := time.Now()
	_, err := Request(context.Background(), p, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(DefaultTimeout), deadline, time.Second)
}

func TestRequest_Timeout(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context) (geo.Coordinate, error) {
		<-ctx.Done()
		return geo.Coordinate{}, ctx.Err()
	})

	_, err := Request(context.Background(), p, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestRequest_ProviderErrorKeptAsIs(t *testing.T) {
	p := ProviderFunc(func(context.Context) (geo.Coordinate, error) {
		return geo.Coordinate{}, newError(KindPermissionDenied, nil)
	})

	_, err := Request(context.Background(), p, time.Second)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
	assert.Equal(t, "Location access denied. Please enable location access and try again.", err.Error())
}

func TestRequest_UnknownError(t *testing.T) {
	cause := errors.New("gps exploded")
	p := ProviderFunc(func(context.Context) (geo.Coordinate, error) {
		return geo.Coordinate{}, cause
	})

	_, err := Request(context.Background(), p, time.Second)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
}

func TestRequest_InvalidCoordinate(t *testing.T) {
	_, err := Request(context.Background(), Static{Coordinate: geo.Coordinate{Lat: 100}}, time.Second)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.True(t, errors.Is(err, geo.ErrInvalidCoordinate))
}

func TestRequest_NoCaching(t *testing.T) {
	calls := 0
	p := ProviderFunc(func(context.Context) (geo.Coordinate, error) {
		calls++
		return geo.Coordinate{Lat: float64(calls), Lng: 0}, nil
	})

	first, err := Request(context.Background(), p, time.Second)
	require.NoError(t, err)
	second, err := Request(context.Background(), p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first, second)
}

func TestKind_Strings(t *testing.T) {
	assert.Equal(t, "permission_denied", KindPermissionDenied.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "Unable to get your location", KindUnknown.Message())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
