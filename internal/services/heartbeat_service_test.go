package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/authenticare/location-agent/internal/mocks"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/services"
)

// TestHeartbeatService_Start_Success tests the successful start of the HeartbeatService.
func TestHeartbeatService_Start_Success(t *testing.T) {
	// Setup
	mockIdentity := new(mocks.MockIdentity)
	mockAPI := new(mocks.MockAPIClient)
	logger := zerolog.Nop()

	mockIdentity.On("GetAgentID").Return("test-agent-id").Maybe()

	h := services.NewHeartbeatService(1*time.Second, mockIdentity, mockAPI, logger)

	// Execute
	err := h.Start()

	// Assert
	assert.NoError(t, err)

	// Try to start again (should fail)
	err = h.Start()
	assert.Error(t, err)
	assert.Equal(t, "heartbeat service is already running", err.Error())

	// Cleanup
	err = h.Stop()
	assert.NoError(t, err)
}

// TestHeartbeatService_Stop_Success tests the successful stop of the HeartbeatService.
func TestHeartbeatService_Stop_Success(t *testing.T) {
	// Setup
	mockIdentity := new(mocks.MockIdentity)
	mockAPI := new(mocks.MockAPIClient)
	logger := zerolog.Nop()

	mockIdentity.On("GetAgentID").Return("test-agent-id").Maybe()

	h := services.NewHeartbeatService(1*time.Second, mockIdentity, mockAPI, logger)

	// Start the service
	err := h.Start()
	assert.NoError(t, err)

	// Execute
	err = h.Stop()

	// Assert
	assert.NoError(t, err)

	// Try to stop again (should fail)
	err = h.Stop()
	assert.Error(t, err)
	assert.Equal(t, "heartbeat service is not running", err.Error())
}

// TestHeartbeatService_Loop_Success tests the heartbeat loop with successful reporting.
func TestHeartbeatService_Loop_Success(t *testing.T) {
	// Setup
	mockIdentity := new(mocks.MockIdentity)
	mockAPI := new(mocks.MockAPIClient)
	logger := zerolog.Nop()

	mockIdentity.On("GetAgentID").Return("test-agent-id")

	sent := make(chan models.Heartbeat, 4)
	mockAPI.On("SendHeartbeat", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent <- args.Get(1).(models.Heartbeat)
	}).Return(nil)

	h := services.NewHeartbeatService(
		100*time.Millisecond, // Short interval for testing
		mockIdentity,
		mockAPI,
		logger,
	)

	// Start the service
	err := h.Start()
	assert.NoError(t, err)

	// Wait for at least one heartbeat to be reported
	select {
	case heartbeat := <-sent:
		assert.Equal(t, "test-agent-id", heartbeat.AgentID)
		assert.Equal(t, "alive", heartbeat.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for heartbeat")
	}

	// Stop the service
	err = h.Stop()
	assert.NoError(t, err)

	mockIdentity.AssertExpectations(t)
}

// TestHeartbeatService_Loop_SendError tests the heartbeat loop with a reporting error.
func TestHeartbeatService_Loop_SendError(t *testing.T) {
	// Setup
	mockIdentity := new(mocks.MockIdentity)
	mockAPI := new(mocks.MockAPIClient)
	logger := zerolog.Nop()

	mockIdentity.On("GetAgentID").Return("test-agent-id")

	attempted := make(chan struct{}, 4)
	mockAPI.On("SendHeartbeat", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		attempted <- struct{}{}
	}).Return(errors.New("send failed"))

	h := services.NewHeartbeatService(
		100*time.Millisecond, // Short interval for testing
		mockIdentity,
		mockAPI,
		logger,
	)

	// Start the service
	err := h.Start()
	assert.NoError(t, err)

	// Wait for at least one heartbeat to be attempted; the loop keeps going.
	for i := 0; i < 2; i++ {
		select {
		case <-attempted:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for heartbeat attempt")
		}
	}

	// Stop the service
	err = h.Stop()
	assert.NoError(t, err)
}
