// Package mocks provides test doubles for the order backend.
package mocks

import (
	"context"

	backend "github.com/sells-group/delivery-cli/internal/backend"
	branch "github.com/sells-group/delivery-cli/internal/branch"
	review "github.com/sells-group/delivery-cli/internal/review"
	mock "github.com/stretchr/testify/mock"
)

// MockBackend is a mock type for the Backend interface.
type MockBackend struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, req
func (_m *MockBackend) CreateOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderReceipt, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for CreateOrder")
	}

	var r0 *backend.OrderReceipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*backend.OrderReceipt)
	}
	return r0, ret.Error(1)
}

// InsertReview provides a mock function with given fields: ctx, sub
func (_m *MockBackend) InsertReview(ctx context.Context, sub review.Submission) (*review.Review, error) {
	ret := _m.Called(ctx, sub)

	if len(ret) == 0 {
		panic("no return value specified for InsertReview")
	}

	var r0 *review.Review
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*review.Review)
	}
	return r0, ret.Error(1)
}

// ListReviews provides a mock function with given fields: ctx, f
func (_m *MockBackend) ListReviews(ctx context.Context, f review.Filter) ([]review.Review, error) {
	ret := _m.Called(ctx, f)

	if len(ret) == 0 {
		panic("no return value specified for ListReviews")
	}

	var r0 []review.Review
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]review.Review)
	}
	return r0, ret.Error(1)
}

// SyncBranches provides a mock function with given fields: ctx, branches
func (_m *MockBackend) SyncBranches(ctx context.Context, branches []branch.Branch) error {
	ret := _m.Called(ctx, branches)

	if len(ret) == 0 {
		panic("no return value specified for SyncBranches")
	}
	return ret.Error(0)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockBackend) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}
	return ret.Error(0)
}

// Ping provides a mock function with given fields: ctx
func (_m *MockBackend) Ping(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Ping")
	}
	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockBackend) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}
	return ret.Error(0)
}

// NewMockBackend creates a new instance of MockBackend and registers cleanup.
func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	m := &MockBackend{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
