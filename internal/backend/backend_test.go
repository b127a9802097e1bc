package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/review"
)

func validOrder() OrderRequest {
	return OrderRequest{
		IdempotencyKey: "4b7c1c1e-9f5e-4a43-9d0b-0d7f7b2f0f11",
		CustomerName:   "Kago",
		Phone:          "+267 71 234 567",
		BranchKey:      "bontleng",
		Location:       &geo.Coordinate{Lat: -24.65, Lng: 25.91},
		Lines: []cart.Line{
			{Name: "Margherita", Size: "Small (8\")", UnitPrice: 65, Quantity: 2},
			{Name: "Pepperoni", Size: "Large (12\")", UnitPrice: 140, Quantity: 1},
		},
		Total: 270,
	}
}

func TestOrderRequest_Validate(t *testing.T) {
	assert.NoError(t, validOrder().Validate())

	pickup := validOrder()
	pickup.Location = nil
	assert.NoError(t, pickup.Validate())
	assert.False(t, pickup.IsDelivery())

	tests := []struct {
		name   string
		mutate func(*OrderRequest)
		want   string
	}{
		{"no key", func(r *OrderRequest) { r.IdempotencyKey = "" }, "idempotency key is required"},
		{"no name", func(r *OrderRequest) { r.CustomerName = " " }, "customer name is required"},
		{"no phone", func(r *OrderRequest) { r.Phone = "" }, "phone is required"},
		{"no branch", func(r *OrderRequest) { r.BranchKey = "" }, "branch is required"},
		{"bad location", func(r *OrderRequest) { r.Location = &geo.Coordinate{Lat: 91} }, "invalid coordinate"},
		{"no lines", func(r *OrderRequest) { r.Lines = nil }, "order has no lines"},
		{"zero quantity", func(r *OrderRequest) { r.Lines[0].Quantity = 0; r.Total = 140 }, "line 0"},
		{"wrong total", func(r *OrderRequest) { r.Total = 1 }, "total does not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validOrder()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, "none", "", Options{})
	require.NoError(t, err)
	assert.IsType(t, Unconfigured{}, b)

	b, err = Open(ctx, "", "", Options{})
	require.NoError(t, err)
	assert.IsType(t, Unconfigured{}, b)

	_, err = Open(ctx, "mongo", "", Options{})
	assert.Error(t, err)
}

func TestUnconfigured(t *testing.T) {
	ctx := context.Background()
	var b Backend = Unconfigured{}

	reviews, err := b.ListReviews(ctx, review.Filter{})
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.NotNil(t, reviews)

	_, err = b.CreateOrder(ctx, validOrder())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = b.InsertReview(ctx, review.Submission{CustomerName: "Kago", Rating: 5})
	assert.True(t, errors.Is(err, ErrNotConfigured))

	assert.True(t, errors.Is(b.Migrate(ctx), ErrNotConfigured))
	assert.True(t, errors.Is(b.SyncBranches(ctx, nil), ErrNotConfigured))
	assert.NoError(t, b.Ping(ctx))
	assert.NoError(t, b.Close())
}
