// Package location obtains the coordinate a delivery check is evaluated for.
package location

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/geo"
)

// DefaultTimeout bounds a location request when the caller gives none.
const DefaultTimeout = 10 * time.Second

// Provider supplies a single fresh coordinate per call.
type Provider interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (geo.Coordinate, error)

// Locate implements Provider.
func (f ProviderFunc) Locate(ctx context.Context) (geo.Coordinate, error) { return f(ctx) }

// Request asks p for a coordinate once, bounded by timeout (DefaultTimeout
// when zero or negative). It never retries and never reuses a previous fix.
// Every failure is returned as an *Error.
func Request(ctx context.Context, p Provider, timeout time.Duration) (geo.Coordinate, error) {
	if p == nil {
		return geo.Coordinate{}, newError(KindUnsupported, nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := p.Locate(ctx)
	if err != nil {
		var le *Error
		switch {
		case errors.As(err, &le):
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			le = newError(KindTimeout, err)
		default:
			le = newError(KindUnknown, err)
		}
		zap.L().Debug("location: request failed",
			zap.String("kind", le.Kind.String()),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return geo.Coordinate{}, le
	}

	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, newError(KindUnknown, err)
	}
	return c, nil
}

// Static always returns the same coordinate, e.g. one given on the command line.
type Static struct {
	Coordinate geo.Coordinate
}

// Locate implements Provider.
func (s Static) Locate(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	return s.Coordinate, nil
}
