package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockTokenManager is a mock implementation of the token.ManagerInterface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) LoadTokens() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTokenManager) SaveTokens(accessToken, refreshToken string) error {
	args := m.Called(accessToken, refreshToken)
	return args.Error(0)
}

func (m *MockTokenManager) AccessToken() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTokenManager) RefreshToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) IsAccessTokenValid() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}
