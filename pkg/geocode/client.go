// Package geocode resolves street addresses to coordinates via the Google Geocoding API.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/delivery-cli/internal/resilience"
)

var (
	// ErrNotConfigured is returned when no API key was supplied.
	ErrNotConfigured = eris.New("geocode: api key not configured")
	// ErrRequestDenied is returned when the API refuses the key or request.
	ErrRequestDenied = eris.New("geocode: request denied")
	// ErrOverQueryLimit is returned when the API quota is exhausted.
	ErrOverQueryLimit = eris.New("geocode: over query limit")
)

// Client geocodes addresses.
type Client interface {
	// Geocode geocodes a single address. An unmatched address is not an
	// error; the result has Matched=false.
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)

	// BatchGeocode geocodes multiple addresses, preserving input order.
	BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error)
}

// AddressInput represents an address to geocode.
type AddressInput struct {
	ID      string // Optional identifier for batch correlation
	Street  string
	Suburb  string
	City    string
	Country string
}

// Result holds the geocoding output for an address.
type Result struct {
	ID               string
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Quality          string // "rooftop", "range", "centroid", "approximate"
	Matched          bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

// WithRegion biases results towards a ccTLD region code (e.g. "bw").
func WithRegion(region string) Option {
	return func(g *geocoder) {
		g.region = strings.ToLower(strings.TrimSpace(region))
	}
}

// WithBatchConcurrency sets the max parallel calls for BatchGeocode.
func WithBatchConcurrency(n int) Option {
	return func(g *geocoder) {
		if n > 0 {
			g.batchConcurrency = n
		}
	}
}

// WithRetry sets the retry policy for transient API failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *geocoder) {
		g.retry = cfg
	}
}

type geocoder struct {
	httpClient       *http.Client
	apiKey           string
	region           string
	limiter          *rate.Limiter
	batchConcurrency int
	retry            resilience.RetryConfig
}

// NewClient creates a geocoding Client for the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	g := &geocoder{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		apiKey:           strings.TrimSpace(apiKey),
		limiter:          rate.NewLimiter(10, 10),
		batchConcurrency: 4,
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 200 * time.Millisecond,
			OnRetry:        resilience.RetryLogger("geocode"),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode implements Client.
func (g *geocoder) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if formatOneLine(addr) == "" {
		return &Result{ID: addr.ID, Matched: false}, nil
	}
	r, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*Result, error) {
		return g.geocodeGoogle(ctx, addr)
	})
	if err != nil {
		return nil, err
	}
	r.ID = addr.ID
	return r, nil
}

// BatchGeocode implements Client. Individual failures become unmatched
// results; a missing API key or a cancelled context fails the batch.
func (g *geocoder) BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	results := make([]Result, len(addrs))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.batchConcurrency)

	for i, addr := range addrs {
		if addr.ID == "" {
			addr.ID = fmt.Sprintf("%d", i)
		}
		eg.Go(func() error {
			r, err := g.Geocode(gCtx, addr)
			if err != nil || r == nil {
				results[i] = Result{ID: addr.ID, Matched: false}
				return nil //nolint:nilerr // individual geocode failures don't fail the batch
			}
			results[i] = *r
			return nil
		})
	}

	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "geocode: batch")
	}
	return results, nil
}

func formatOneLine(addr AddressInput) string {
	parts := []string{addr.Street, addr.Suburb, addr.City, addr.Country}
	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
