package mocks

import (
	"context"
	"time"

	"github.com/godilite/cs-dashboard/pkg/cache"
)

// MockCacher is a mock implementation of the cache interface
// for testing the handler layer. Without GetFunc every lookup is a miss.
type MockCacher struct {
	GetFunc   func(ctx context.Context, key string, dest any) error
	SetFunc   func(ctx context.Context, key string, value any, expiration time.Duration) error
	CloseFunc func() error
}

// Get implements the cache interface
func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return cache.ErrMiss
}

// Set implements the cache interface
func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

// Close implements the cache interface
func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
