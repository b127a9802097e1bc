package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/delivery-cli/internal/backend"
	"github.com/sells-group/delivery-cli/internal/backend/mocks"
	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/menu"
	"github.com/sells-group/delivery-cli/internal/resilience"
	"github.com/sells-group/delivery-cli/internal/review"
)

var (
	bontleng = geo.Coordinate{Lat: -24.6544, Lng: 25.9079}
	items    = []cart.Item{
		{Name: "Margherita", Size: "Small (8\")", Price: 65},
		{Name: "Margherita", Size: "Small (8\")", Price: 65},
		{Name: "Pepperoni", Size: "Large (12\")", Price: 140},
	}
)

func testPolicy() resilience.Policy {
	return resilience.Policy{
		Retry:   resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond},
		Breaker: resilience.NewBreaker(resilience.BreakerConfig{FailureThreshold: 10}),
	}
}

func newTestService(t *testing.T) (*Service, *mocks.MockBackend) {
	t.Helper()
	ev, err := delivery.NewEvaluator(branch.Default(), delivery.DefaultServiceArea())
	require.NoError(t, err)
	be := mocks.NewMockBackend(t)
	return NewService(ev, be, testPolicy()), be
}

func receipt(key string) *backend.OrderReceipt {
	return &backend.OrderReceipt{OrderID: "ORD-1", IdempotencyKey: key, Status: "received", Total: 270}
}

func TestPlaceOrder_DeliveryNearestBranch(t *testing.T) {
	svc, be := newTestService(t)

	be.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r backend.OrderRequest) bool {
		return r.BranchKey == "bontleng" &&
			r.Total == 270 &&
			len(r.Lines) == 2 && r.Lines[0].Quantity == 2 &&
			r.Location != nil && *r.Location == bontleng &&
			r.IdempotencyKey != "" &&
			r.CustomerName == "Kago"
	})).Return(receipt("k"), nil).Once()

	placed, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: " Kago ",
		Phone:        "71234567",
		Mode:         Delivery,
		Location:     &bontleng,
		Items:        items,
	})
	require.NoError(t, err)
	assert.Equal(t, "bontleng", placed.Branch)
	assert.Equal(t, "ORD-1", placed.Receipt.OrderID)
	require.NotNil(t, placed.Eligibility)
	assert.True(t, placed.Eligibility.InDeliveryRange)
}

func TestPlaceOrder_DefaultsToDelivery(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), Request{CustomerName: "Kago", Phone: "1", Items: items})
	assert.True(t, errors.Is(err, ErrLocationRequired))
}

func TestPlaceOrder_ExplicitBranchInRange(t *testing.T) {
	svc, be := newTestService(t)

	be.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r backend.OrderRequest) bool {
		return r.BranchKey == "block9"
	})).Return(receipt("k"), nil).Once()

	placed, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Mode: Delivery, Location: &bontleng, BranchKey: "block9", Items: items,
	})
	require.NoError(t, err)
	assert.Equal(t, "block9", placed.Branch)
}

func TestPlaceOrder_ExplicitBranchOutOfRange(t *testing.T) {
	center := geo.Coordinate{Lat: -24.6282, Lng: 25.9086}
	reg, err := branch.NewRegistry([]branch.Branch{
		{Key: "near", Name: "Near", Location: center},
		{Key: "far", Name: "Far", Location: geo.Destination(center, 90, 20)},
	})
	require.NoError(t, err)
	ev, err := delivery.NewEvaluator(reg, delivery.DefaultServiceArea())
	require.NoError(t, err)
	svc := NewService(ev, mocks.NewMockBackend(t), testPolicy())

	_, err = svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &center, BranchKey: "far", Items: items,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, "far", oor.Result.NearestBranch.Key)
	assert.Contains(t, oor.Result.Reason, "Far is 20.0 km away")
}

func TestPlaceOrder_OutOfRange(t *testing.T) {
	svc, _ := newTestService(t)
	far := geo.Destination(bontleng, 180, 15.1)

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Mode: Delivery, Location: &far, Items: items,
	})
	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.True(t, oor.Result.InCityArea)
	assert.Contains(t, oor.Error(), "We deliver within 15 km")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), Request{CustomerName: "Kago", Phone: "1", Location: &bontleng})
	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestPlaceOrder_MispricedItemRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &bontleng,
		Items: []cart.Item{{Name: "Pepperoni", Size: "Large (12\")", Price: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrValidation))
	assert.Contains(t, err.Error(), "costs P140, got P1")
}

func TestPlaceOrder_OffMenuItemRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &bontleng,
		Items: []cart.Item{{Name: "Free Lunch", Size: "XXL", Price: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrValidation))
	assert.True(t, errors.Is(err, menu.ErrUnknownItem))
}

func TestPlaceOrder_PricesFromMenuKeys(t *testing.T) {
	svc, be := newTestService(t)

	be.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r backend.OrderRequest) bool {
		return r.Total == 140 && len(r.Lines) == 1 &&
			r.Lines[0].Name == "Pepperoni" && r.Lines[0].Size == "Large (12\")" && r.Lines[0].UnitPrice == 140
	})).Return(receipt("k"), nil).Once()

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &bontleng,
		Items: []cart.Item{{Name: "pepperoni", Size: "large"}},
	})
	require.NoError(t, err)
}

func TestPlaceOrder_CustomMenu(t *testing.T) {
	ev, err := delivery.NewEvaluator(branch.Default(), delivery.DefaultServiceArea())
	require.NoError(t, err)
	m, err := menu.New([]menu.Item{{Key: "pap", Name: "Pap", Sizes: []menu.Size{{Key: "bowl", Label: "Bowl", Price: 20}}}})
	require.NoError(t, err)
	be := mocks.NewMockBackend(t)
	svc := NewService(ev, be, testPolicy(), WithMenu(m))

	_, err = svc.PlaceOrder(context.Background(), Request{CustomerName: "Kago", Phone: "1", Location: &bontleng, Items: items})
	assert.True(t, errors.Is(err, menu.ErrUnknownItem))
}

func TestPlaceOrder_Pickup(t *testing.T) {
	svc, be := newTestService(t)

	be.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r backend.OrderRequest) bool {
		return r.BranchKey == "block9" && r.Location == nil && r.IdempotencyKey == "fixed-key"
	})).Return(receipt("fixed-key"), nil).Once()

	placed, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Mode: Pickup, BranchKey: "block9", Items: items, IdempotencyKey: "fixed-key",
	})
	require.NoError(t, err)
	assert.Nil(t, placed.Eligibility)

	_, err = svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Mode: Pickup, BranchKey: "mogoditshane", Items: items,
	})
	assert.True(t, errors.Is(err, ErrUnknownBranch))
}

func TestPlaceOrder_UnknownMode(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PlaceOrder(context.Background(), Request{CustomerName: "Kago", Phone: "1", Mode: "drone", Items: items})
	assert.True(t, errors.Is(err, backend.ErrValidation))
}

func TestPlaceOrder_MissingPhone(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PlaceOrder(context.Background(), Request{CustomerName: "Kago", Location: &bontleng, Items: items})
	assert.True(t, errors.Is(err, backend.ErrValidation))
}

func TestPlaceOrder_RetriesTransientFailure(t *testing.T) {
	svc, be := newTestService(t)

	var keys []string
	unavailable := &backend.Error{Kind: backend.ErrUnavailable, Op: "test", Err: resilience.NewTransientError(errors.New("down"), 0)}
	be.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.Get(1).(backend.OrderRequest).IdempotencyKey) }).
		Return(nil, unavailable).Once()
	be.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.Get(1).(backend.OrderRequest).IdempotencyKey) }).
		Return(receipt("k"), nil).Once()

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &bontleng, Items: items,
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1], "retries reuse the idempotency key")
}

func TestPlaceOrder_PermanentFailureNotRetried(t *testing.T) {
	svc, be := newTestService(t)

	be.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, backend.ErrNotConfigured).Once()

	_, err := svc.PlaceOrder(context.Background(), Request{
		CustomerName: "Kago", Phone: "1", Location: &bontleng, Items: items,
	})
	assert.True(t, errors.Is(err, backend.ErrNotConfigured))
}

func TestSubmitReview(t *testing.T) {
	svc, be := newTestService(t)
	sub := review.Submission{CustomerName: "Neo", Rating: 5, Comment: "Great"}

	be.On("InsertReview", mock.Anything, sub).Return(&review.Review{ID: 1, CustomerName: "Neo", Rating: 5}, nil).Once()

	r, err := svc.SubmitReview(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)

	_, err = svc.SubmitReview(context.Background(), review.Submission{CustomerName: "Neo"})
	assert.True(t, errors.Is(err, review.ErrRatingRequired))
}

func TestReviews(t *testing.T) {
	svc, be := newTestService(t)
	f := review.Filter{Rating: 5}

	be.On("ListReviews", mock.Anything, f).Return([]review.Review{{ID: 3, Rating: 5}}, nil).Once()

	got, err := svc.Reviews(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.Reviews(context.Background(), review.Filter{Rating: 9})
	assert.Error(t, err)
}

func TestBackendState(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, "closed", svc.BackendState())

	bare := NewService(nil, nil, resilience.Policy{})
	assert.Equal(t, "closed", bare.BackendState())
}
