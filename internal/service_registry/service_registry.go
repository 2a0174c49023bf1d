package service_registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/services"
	"github.com/authenticare/location-agent/internal/utils"
	"github.com/authenticare/location-agent/pkg/api"
	"github.com/authenticare/location-agent/pkg/file"
	"github.com/authenticare/location-agent/pkg/identity"
	"github.com/authenticare/location-agent/pkg/location"
	"github.com/authenticare/location-agent/pkg/mqtt"
	"github.com/authenticare/location-agent/pkg/notify"
	"github.com/authenticare/location-agent/pkg/objectstore"
)

// ServiceRegistry manages the lifecycle of the agent's services.
type ServiceRegistry struct {
	services    map[string]services.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	apiClient   api.Client
	fileClient  file.FileOperations
	mqttClient  mqtt.MQTTClient
	notifier    notify.Notifier
	provider    location.Provider
	objectStore objectstore.ObjectStorageClient
	tracker     *services.TrackingService
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(apiClient api.Client, fileClient file.FileOperations, mqttClient mqtt.MQTTClient,
	notifier notify.Notifier, provider location.Provider, objectStore objectstore.ObjectStorageClient,
	logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:    make(map[string]services.Service),
		apiClient:   apiClient,
		fileClient:  fileClient,
		mqttClient:  mqttClient,
		notifier:    notifier,
		provider:    provider,
		objectStore: objectStore,
		Logger:      logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc services.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Tracker returns the tracking service, if registered.
func (sr *ServiceRegistry) Tracker() *services.TrackingService {
	return sr.tracker
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
// The archiver is registered first so the tracker can journal through it.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, agentIdentity identity.IdentityInterface) error {
	var recorder services.Recorder

	if config.Services.Archive.Enabled {
		archive := services.NewArchiveService(
			config.Services.Archive.JournalFile,
			config.Services.Archive.RotateInterval,
			config.Services.Archive.Bucket,
			agentIdentity,
			sr.fileClient,
			sr.objectStore,
			sr.Logger,
		)
		recorder = archive
		sr.RegisterService("archive", archive)
	}

	if config.Services.Tracking.Enabled {
		sr.tracker = services.NewTrackingService(
			config.Services.Tracking.Interval,
			config.Services.Tracking.ThresholdKm,
			config.Services.Tracking.CacheFile,
			config.Services.Tracking.NotifyOnTravel,
			agentIdentity,
			sr.provider,
			sr.apiClient,
			sr.notifier,
			sr.fileClient,
			recorder,
			sr.Logger,
		)
		sr.RegisterService("tracking", sr.tracker)
	}

	if config.Services.Heartbeat.Enabled {
		sr.RegisterService("heartbeat", services.NewHeartbeatService(
			config.Services.Heartbeat.Interval,
			agentIdentity,
			sr.apiClient,
			sr.Logger,
		))
	}

	if config.Services.Alerts.Enabled {
		if sr.mqttClient == nil {
			return errors.New("alert service enabled but no MQTT connection configured")
		}
		sr.RegisterService("alerts", services.NewAlertService(
			config.Services.Alerts.TopicPrefix,
			config.Services.Alerts.QOS,
			agentIdentity,
			sr.mqttClient,
			sr.notifier,
			sr.Logger,
		))
	}

	if config.Services.UpdateCheck.Enabled {
		sr.RegisterService("update_check", services.NewUpdateService(
			config.Services.UpdateCheck.Interval,
			sr.apiClient,
			sr.notifier,
			sr.Logger,
		))
	}

	return nil
}
