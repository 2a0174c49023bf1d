package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/service_registry"
	"github.com/authenticare/location-agent/internal/utils"
	"github.com/authenticare/location-agent/pkg/api"
	"github.com/authenticare/location-agent/pkg/encryption"
	"github.com/authenticare/location-agent/pkg/file"
	"github.com/authenticare/location-agent/pkg/identity"
	"github.com/authenticare/location-agent/pkg/location"
	"github.com/authenticare/location-agent/pkg/mqtt"
	"github.com/authenticare/location-agent/pkg/notify"
	"github.com/authenticare/location-agent/pkg/objectstore"
	"github.com/authenticare/location-agent/pkg/token"
)

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	configPath := os.Getenv("AGENT_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Load user/agent identity
	agentIdentity := identity.NewIdentityService(config.Identity.IdentityFile, fileClient)
	if err := agentIdentity.LoadIdentity(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load identity")
	}
	if agentIdentity.GetAgentID() == "" {
		if err := agentIdentity.SaveAgentID(uuid.New().String()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to persist agent ID")
		}
		logger.Info().Str("agent_id", agentIdentity.GetAgentID()).Msg("Generated new agent ID")
	}

	// Token storage, encrypted at rest
	encryptionManager := encryption.NewEncryptionManager(fileClient)
	if err := encryptionManager.Initialize(config.Security.AESKeyFile); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption manager")
	}
	tokenManager := token.NewManager(config.Security.TokenFile, fileClient, encryptionManager)
	if err := tokenManager.LoadTokens(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load backend tokens")
	}

	// Backend client
	apiClient := api.NewRestClient(config.API.BaseURL, config.API.Timeout, tokenManager, logger)

	// Position source
	provider, err := buildProvider(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize position provider")
	}

	// Notifications, gated on the user's permission grant
	notifier := notify.NewDesktopNotifier(config.Notifications.Enabled, logger)

	// MQTT connection for pushed environmental alerts
	var mqttClient mqtt.MQTTClient
	if config.Services.Alerts.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		mqttService := mqtt.NewMqttService(fileClient)
		if err := mqttService.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		mqttClient = mqttService
		logger.Info().Str("client_id", clientID).Msg("MQTT connection established")
	}

	// Object storage for journal archival
	var store objectstore.ObjectStorageClient
	if config.Services.Archive.Enabled {
		secretKey, err := fileClient.ReadFile(config.Services.Archive.SecretKeyFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to read object storage secret key")
		}
		store = objectstore.NewObjectStorage()
		if err := store.Connect(config.Services.Archive.Endpoint, config.Services.Archive.AccessKey,
			strings.TrimSpace(secretKey), config.Services.Archive.UseSSL); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to object storage")
		}
	}

	// Register and start all enabled services
	registry := service_registry.NewServiceRegistry(apiClient, fileClient, mqttClient, notifier, provider, store, logger)
	if err := registry.RegisterServices(config, agentIdentity); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Surface the backend's resolved place whenever it confirms a change.
	if tracker := registry.Tracker(); tracker != nil {
		tracker.OnLocationChange("resolved-place", func(update *models.LocationUpdate) {
			if update.CurrentLocation == nil {
				return
			}
			logger.Info().
				Str("city", update.CurrentLocation.City).
				Str("state", update.CurrentLocation.State).
				Str("country", update.CurrentLocation.Country).
				Msg("Location change resolved")
		})
	}

	if err := registry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// SIGUSR1 dumps the backend's view of the user's location and travel.
	statusCh := make(chan os.Signal, 1)
	signal.Notify(statusCh, syscall.SIGUSR1)
	go func() {
		for range statusCh {
			if tracker := registry.Tracker(); tracker != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				tracker.LogStatus(ctx)
				cancel()
			}
		}
	}()

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := registry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services failed to stop cleanly")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// buildProvider selects the position source from configuration.
func buildProvider(config *utils.Config) (location.Provider, error) {
	if config.Location.Source == "sensor" {
		return location.NewSensorProvider(config.Location.GPSDevicePort, config.Location.GPSDeviceBaudRate), nil
	}
	return location.NewNetworkProvider(config.Location.MapsAPIKey, config.Location.ModemIndex,
		config.Location.WatchInterval)
}
