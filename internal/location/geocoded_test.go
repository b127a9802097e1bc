package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/delivery-cli/pkg/geocode"
	"github.com/sells-group/delivery-cli/pkg/geocode/mocks"
)

var blockNine = geocode.AddressInput{Suburb: "Block 9", City: "Gaborone", Country: "Botswana"}

func TestGeocoded_Matched(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, blockNine).
		Return(&geocode.Result{Latitude: -24.6418, Longitude: 25.9213, Matched: true}, nil)

	c, err := Request(context.Background(), NewGeocoded(client, blockNine), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, -24.6418, c.Lat, 1e-9)
	assert.InDelta(t, 25.9213, c.Lng, 1e-9)
}

func TestGeocoded_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"no key", geocode.ErrNotConfigured, KindUnsupported},
		{"denied", eris.Wrap(geocode.ErrRequestDenied, "bad key"), KindPermissionDenied},
		{"deadline", eris.Wrap(context.DeadlineExceeded, "google request"), KindTimeout},
		{"other", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient(t)
			client.On("Geocode", mock.Anything, blockNine).Return(nil, tt.err)

			_, err := NewGeocoded(client, blockNine).Locate(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestGeocoded_NotMatched(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, blockNine).Return(&geocode.Result{Matched: false}, nil)

	_, err := NewGeocoded(client, blockNine).Locate(context.Background())
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Contains(t, err.Error(), "address not found")
}

func TestGeocoded_NilClient(t *testing.T) {
	_, err := NewGeocoded(nil, blockNine).Locate(context.Background())
	assert.Equal(t, KindUnsupported, KindOf(err))
}
