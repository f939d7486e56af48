package service

import (
	"context"
	"time"

	"franklin/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockContentGenerator ---
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) Generate(ctx context.Context, parts domain.PromptParts) (string, error) {
	args := m.Called(ctx, parts)
	return args.String(0), args.Error(1)
}

// --- MockFileGateway ---
type MockFileGateway struct {
	mock.Mock
}

func (m *MockFileGateway) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*domain.FileHandle, error) {
	args := m.Called(ctx, fileName, mimeType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileHandle), args.Error(1)
}

func (m *MockFileGateway) Status(ctx context.Context, fileID string) (*domain.FileHandle, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileHandle), args.Error(1)
}

func (m *MockFileGateway) Delete(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

// --- MockRateLimitStore ---
type MockRateLimitStore struct {
	mock.Mock
}

func (m *MockRateLimitStore) Hit(ctx context.Context, clientKey string, window time.Duration, now time.Time) (domain.RateLimitEntry, error) {
	args := m.Called(ctx, clientKey, window, now)
	return args.Get(0).(domain.RateLimitEntry), args.Error(1)
}

// --- MockFileStatusCache ---
type MockFileStatusCache struct {
	mock.Mock
}

func (m *MockFileStatusCache) Get(ctx context.Context, fileID string) (*domain.FileHandle, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileHandle), args.Error(1)
}

func (m *MockFileStatusCache) Put(ctx context.Context, handle *domain.FileHandle, ttl time.Duration) error {
	args := m.Called(ctx, handle, ttl)
	return args.Error(0)
}

func (m *MockFileStatusCache) Invalidate(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}
