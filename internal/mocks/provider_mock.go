package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/authenticare/location-agent/pkg/location"
)

// MockProvider is a mock implementation of the location.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetLocation(ctx context.Context) (location.Sample, error) {
	args := m.Called(ctx)
	return args.Get(0).(location.Sample), args.Error(1)
}

func (m *MockProvider) Watch(ctx context.Context) (<-chan location.Sample, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan location.Sample), args.Error(1)
}

func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
