package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of the notify.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(title, message string) error {
	args := m.Called(title, message)
	return args.Error(0)
}

func (m *MockNotifier) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}
