// Package backend is the typed contract with the order and review service.
// Postgres talks to the hosted database, SQLite is a local stand-in and
// Unconfigured answers when no backend is set up.
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/db"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/review"
)

// Backend submits orders and stores reviews.
type Backend interface {
	// CreateOrder submits an order. Resubmitting the same IdempotencyKey
	// returns the original receipt.
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderReceipt, error)
	InsertReview(ctx context.Context, sub review.Submission) (*review.Review, error)
	ListReviews(ctx context.Context, f review.Filter) ([]review.Review, error)
	// SyncBranches publishes the branch list so orders can reference it.
	SyncBranches(ctx context.Context, branches []branch.Branch) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// OrderRequest is an order ready for submission. A nil Location means pickup.
type OrderRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	CustomerName   string          `json:"customer_name"`
	Phone          string          `json:"phone"`
	BranchKey      string          `json:"branch_key"`
	Location       *geo.Coordinate `json:"location,omitempty"`
	Lines          []cart.Line     `json:"lines"`
	Total          int             `json:"total"`
}

// Validate checks the request is complete and the total adds up.
func (r OrderRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.IdempotencyKey) == "" {
		problems = append(problems, "idempotency key is required")
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		problems = append(problems, "customer name is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		problems = append(problems, "phone is required")
	}
	if strings.TrimSpace(r.BranchKey) == "" {
		problems = append(problems, "branch is required")
	}
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(r.Lines) == 0 {
		problems = append(problems, "order has no lines")
	}
	sum := 0
	for i, l := range r.Lines {
		if l.Quantity <= 0 || l.UnitPrice <= 0 {
			problems = append(problems, "line "+itoa(i)+" needs a positive quantity and price")
		}
		sum += l.Subtotal()
	}
	if len(r.Lines) > 0 && sum != r.Total {
		problems = append(problems, "total does not match lines")
	}
	if len(problems) > 0 {
		return eris.Wrap(ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// IsDelivery reports whether the order is delivered rather than collected.
func (r OrderRequest) IsDelivery() bool { return r.Location != nil }

// OrderReceipt acknowledges a submitted order.
type OrderReceipt struct {
	OrderID        string    `json:"order_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	Status         string    `json:"status"`
	Total          int       `json:"total"`
	CreatedAt      time.Time `json:"created_at"`
}

// Options tunes Open.
type Options struct {
	Pool db.PoolConfig
}

// Open returns the backend for driver: "postgres", "sqlite", or "none"/"" for
// Unconfigured.
func Open(ctx context.Context, driver, dsn string, opts Options) (Backend, error) {
	switch driver {
	case "", "none":
		zap.L().Warn("no order backend configured; reviews are empty and orders are refused")
		return Unconfigured{}, nil
	case "postgres":
		return NewPostgres(ctx, dsn, opts.Pool)
	case "sqlite":
		if dsn == "" {
			dsn = "delivery.db"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("backend: unknown driver %q", driver)
	}
}
