package backend

import (
	"context"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/review"
)

// Unconfigured is used when no backend is set up: listings are empty and
// writes fail with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) CreateOrder(context.Context, OrderRequest) (*OrderReceipt, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) InsertReview(context.Context, review.Submission) (*review.Review, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) ListReviews(context.Context, review.Filter) ([]review.Review, error) {
	return []review.Review{}, nil
}

func (Unconfigured) SyncBranches(context.Context, []branch.Branch) error {
	return ErrNotConfigured
}

func (Unconfigured) Migrate(context.Context) error { return ErrNotConfigured }

func (Unconfigured) Ping(context.Context) error { return nil }

func (Unconfigured) Close() error { return nil }
