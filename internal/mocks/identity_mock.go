package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/authenticare/location-agent/pkg/identity"
)

// MockIdentity is a mock implementation of the identity.IdentityInterface
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) LoadIdentity() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockIdentity) SaveAgentID(agentID string) error {
	args := m.Called(agentID)
	return args.Error(0)
}

func (m *MockIdentity) GetUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) GetAgentID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) GetIdentity() *identity.Identity {
	args := m.Called()
	return args.Get(0).(*identity.Identity)
}
