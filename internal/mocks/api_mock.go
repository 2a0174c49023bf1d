package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/authenticare/location-agent/internal/models"
)

// MockAPIClient is a mock implementation of the api.Client interface
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) UpdateLocation(ctx context.Context, report models.LocationReport) (*models.LocationUpdate, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationUpdate), args.Error(1)
}

func (m *MockAPIClient) CurrentLocation(ctx context.Context) (*models.Position, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Position), args.Error(1)
}

func (m *MockAPIClient) LocationHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

func (m *MockAPIClient) TravelSummary(ctx context.Context) (*models.TravelSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TravelSummary), args.Error(1)
}

func (m *MockAPIClient) TriggerEnvironmentalUpdate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAPIClient) SendHeartbeat(ctx context.Context, heartbeat models.Heartbeat) error {
	args := m.Called(ctx, heartbeat)
	return args.Error(0)
}

func (m *MockAPIClient) LatestVersion(ctx context.Context) (*models.VersionInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VersionInfo), args.Error(1)
}
