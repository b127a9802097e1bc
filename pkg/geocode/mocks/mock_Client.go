// Package mocks provides test doubles for the geocode client.
package mocks

import (
	"context"

	geocode "github.com/sells-group/delivery-cli/pkg/geocode"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, addr
func (_m *MockClient) Geocode(ctx context.Context, addr geocode.AddressInput) (*geocode.Result, error) {
	ret := _m.Called(ctx, addr)

	if len(ret) == 0 {
		panic("no return value specified for Geocode")
	}

	var r0 *geocode.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*geocode.Result)
	}
	return r0, ret.Error(1)
}

// BatchGeocode provides a mock function with given fields: ctx, addrs
func (_m *MockClient) BatchGeocode(ctx context.Context, addrs []geocode.AddressInput) ([]geocode.Result, error) {
	ret := _m.Called(ctx, addrs)

	if len(ret) == 0 {
		panic("no return value specified for BatchGeocode")
	}

	var r0 []geocode.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]geocode.Result)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient and registers cleanup.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
