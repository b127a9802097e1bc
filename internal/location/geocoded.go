package location

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/pkg/geocode"
)

// Geocoded locates a street address through a geocoding client.
type Geocoded struct {
	client  geocode.Client
	address geocode.AddressInput
}

// NewGeocoded creates a Provider for address.
func NewGeocoded(client geocode.Client, address geocode.AddressInput) *Geocoded {
	return &Geocoded{client: client, address: address}
}

// Locate implements Provider.
func (g *Geocoded) Locate(ctx context.Context) (geo.Coordinate, error) {
	if g.client == nil {
		return geo.Coordinate{}, newError(KindUnsupported, nil)
	}

	res, err := g.client.Geocode(ctx, g.address)
	switch {
	case err == nil:
	case errors.Is(err, geocode.ErrNotConfigured):
		return geo.Coordinate{}, newError(KindUnsupported, err)
	case errors.Is(err, geocode.ErrRequestDenied):
		return geo.Coordinate{}, newError(KindPermissionDenied, err)
	case errors.Is(err, context.DeadlineExceeded):
		return geo.Coordinate{}, newError(KindTimeout, err)
	default:
		return geo.Coordinate{}, newError(KindUnknown, err)
	}

	if res == nil || !res.Matched {
		return geo.Coordinate{}, newError(KindUnknown, eris.New("address not found"))
	}
	return geo.Coordinate{Lat: res.Latitude, Lng: res.Longitude}, nil
}
