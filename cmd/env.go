package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/backend"
	"github.com/sells-group/delivery-cli/internal/checkout"
	"github.com/sells-group/delivery-cli/internal/db"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/resilience"
	"github.com/sells-group/delivery-cli/pkg/geocode"
)

// appEnv holds the initialized dependencies shared by the commands that talk
// to the backend.
type appEnv struct {
	Evaluator *delivery.Evaluator
	Backend   backend.Backend
	Checkout  *checkout.Service
}

// Close releases the backend connection.
func (e *appEnv) Close() {
	if e.Backend == nil {
		return
	}
	if err := e.Backend.Close(); err != nil {
		zap.L().Warn("close backend", zap.Error(err))
	}
}

func openBackend(ctx context.Context) (backend.Backend, error) {
	be, err := backend.Open(ctx, cfg.Backend.Driver, cfg.Backend.DatabaseURL, backend.Options{
		Pool: db.PoolConfig{MaxConns: cfg.Backend.MaxConns},
	})
	if err != nil {
		return nil, eris.Wrap(err, "open backend")
	}
	return be, nil
}

func initEnv(ctx context.Context) (*appEnv, error) {
	ev, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}
	be, err := openBackend(ctx)
	if err != nil {
		return nil, err
	}

	policy := resilience.NewPolicy("backend",
		cfg.Backend.RetryAttempts,
		cfg.Backend.BreakerThreshold,
		cfg.Backend.BreakerResetSecs,
	)

	zap.L().Info("environment ready",
		zap.String("city", cfg.ServiceArea.CityName),
		zap.Int("branches", ev.Registry().Len()),
		zap.String("backend", cfg.Backend.Driver),
	)

	return &appEnv{
		Evaluator: ev,
		Backend:   be,
		Checkout:  checkout.NewService(ev, be, policy),
	}, nil
}

func newGeocoder() geocode.Client {
	return geocode.NewClient(cfg.Geocode.GoogleAPIKey,
		geocode.WithRegion(cfg.Geocode.Region),
		geocode.WithRateLimit(cfg.Geocode.RateLimit),
		geocode.WithBatchConcurrency(cfg.Batch.Concurrency),
	)
}
