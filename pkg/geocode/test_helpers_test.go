package geocode

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/delivery-cli/internal/resilience"
)

// newTestGeocoder points a geocoder at srv instead of the Google endpoint.
func newTestGeocoder(t *testing.T, srv *httptest.Server, key string) *geocoder {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return &geocoder{
		httpClient:       &http.Client{Transport: &redirectTransport{target: target}},
		apiKey:           key,
		region:           "bw",
		limiter:          rate.NewLimiter(rate.Inf, 1),
		batchConcurrency: 2,
		retry:            resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	}
}

// redirectTransport sends every request to target, keeping path and query.
type redirectTransport struct {
	target *url.URL
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(out)
}
