package services_test

import (
	"encoding/json"
	"testing"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authenticare/location-agent/internal/mocks"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/services"
)

func okToken() *mocks.MockToken {
	token := &mocks.MockToken{}
	token.On("Wait").Return(true)
	token.On("Error").Return(nil)
	return token
}

// newAlertFixture builds an AlertService wired to mocks and captures the
// subscribed message handler so tests can push messages through it.
func newAlertFixture(t *testing.T) (*services.AlertService, *mocks.MockNotifier, *mqttLib.MessageHandler) {
	mockIdentity := &mocks.MockIdentity{}
	mockIdentity.On("GetUserID").Return("user-1")

	var handler mqttLib.MessageHandler
	mockMqtt := &mocks.MockMQTTClient{}
	mockMqtt.On("Subscribe", "alerts/environment/user-1", byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(mqttLib.MessageHandler)
		}).
		Return(okToken())
	mockMqtt.On("Unsubscribe", []string{"alerts/environment/user-1"}).Return(okToken())

	mockNotifier := &mocks.MockNotifier{}
	service := services.NewAlertService("alerts/environment", 1, mockIdentity, mockMqtt, mockNotifier, zerolog.Nop())

	require.NoError(t, service.Start())
	t.Cleanup(func() {
		if err := service.Stop(); err != nil {
			t.Logf("stop: %v", err)
		}
	})
	require.NotNil(t, handler)
	return service, mockNotifier, &handler
}

func alertPayload(t *testing.T, severity string) []byte {
	payload, err := json.Marshal(models.EnvironmentalAlert{
		AlertID:   "alert-1",
		Severity:  severity,
		Title:     "Air quality warning",
		Message:   "AQI above 150 near your current location",
		City:      "New York",
		AQI:       162,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	return payload
}

func TestAlertService_WarningReachesUser(t *testing.T) {
	_, mockNotifier, handler := newAlertFixture(t)
	mockNotifier.On("Notify", "Air quality warning", "AQI above 150 near your current location").Return(nil)

	(*handler)(nil, mocks.NewMockMessage("alerts/environment/user-1", alertPayload(t, "warning")))

	mockNotifier.AssertCalled(t, "Notify", "Air quality warning", "AQI above 150 near your current location")
}

func TestAlertService_InfoLoggedOnly(t *testing.T) {
	_, mockNotifier, handler := newAlertFixture(t)

	(*handler)(nil, mocks.NewMockMessage("alerts/environment/user-1", alertPayload(t, "info")))

	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestAlertService_MalformedPayloadIgnored(t *testing.T) {
	_, mockNotifier, handler := newAlertFixture(t)

	(*handler)(nil, mocks.NewMockMessage("alerts/environment/user-1", []byte("not json")))

	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestAlertService_DoubleStartFails(t *testing.T) {
	service, _, _ := newAlertFixture(t)
	assert.ErrorContains(t, service.Start(), "already running")
}
