package services

import (
	"encoding/json"
	"errors"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/constants"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/pkg/identity"
	"github.com/authenticare/location-agent/pkg/mqtt"
	"github.com/authenticare/location-agent/pkg/notify"
)

// AlertService listens on the user's alert topic for environmental
// advisories the backend pushes after processing a location change.
type AlertService struct {
	TopicPrefix string
	QOS         int
	Identity    identity.IdentityInterface
	MqttClient  mqtt.MQTTClient
	Notifier    notify.Notifier
	Logger      zerolog.Logger

	topic   string
	running bool
}

// NewAlertService initializes a new AlertService.
func NewAlertService(topicPrefix string, qos int, identity identity.IdentityInterface,
	mqttClient mqtt.MQTTClient, notifier notify.Notifier, logger zerolog.Logger) *AlertService {
	return &AlertService{
		TopicPrefix: topicPrefix,
		QOS:         qos,
		Identity:    identity,
		MqttClient:  mqttClient,
		Notifier:    notifier,
		Logger:      logger,
	}
}

// Start subscribes to the per-user alert topic.
func (a *AlertService) Start() error {
	if a.running {
		a.Logger.Warn().Msg("AlertService is already running")
		return errors.New("alert service is already running")
	}

	a.topic = a.TopicPrefix + "/" + a.Identity.GetUserID()
	token := a.MqttClient.Subscribe(a.topic, byte(a.QOS), a.handleAlertMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		a.Logger.Error().Err(err).Str("topic", a.topic).Msg("Failed to subscribe to alert topic")
		return err
	}

	a.running = true
	a.Logger.Info().Str("topic", a.topic).Msg("AlertService started")
	return nil
}

// Stop unsubscribes from the alert topic.
func (a *AlertService) Stop() error {
	if !a.running {
		a.Logger.Warn().Msg("AlertService is not running")
		return errors.New("alert service is not running")
	}

	token := a.MqttClient.Unsubscribe(a.topic)
	token.Wait()
	if err := token.Error(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to unsubscribe from alert topic")
		return err
	}

	a.running = false
	a.Logger.Info().Msg("AlertService stopped")
	return nil
}

// handleAlertMessage parses and surfaces a pushed advisory.
func (a *AlertService) handleAlertMessage(client mqttLib.Client, msg mqttLib.Message) {
	var alert models.EnvironmentalAlert
	if err := json.Unmarshal(msg.Payload(), &alert); err != nil {
		a.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to parse environmental alert")
		return
	}

	a.Logger.Info().
		Str("alert_id", alert.AlertID).
		Str("severity", alert.Severity).
		Str("city", alert.City).
		Int("aqi", alert.AQI).
		Msg("Environmental alert received")

	// Informational advisories are logged only; warnings and above reach
	// the user.
	if alert.Severity == constants.SeverityInfo {
		return
	}

	if err := a.Notifier.Notify(alert.Title, alert.Message); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to deliver alert notification")
	}
}
