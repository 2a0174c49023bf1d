package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/constants"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/status"
	"github.com/authenticare/location-agent/pkg/api"
	"github.com/authenticare/location-agent/pkg/identity"
)

// HeartbeatService reports agent liveness and device vitals so the backend
// can tell a silent agent from a stationary user.
type HeartbeatService struct {
	Interval  time.Duration
	Identity  identity.IdentityInterface
	APIClient api.Client
	Registry  *status.Registry
	Logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeatService initializes a new HeartbeatService with the default
// vital collectors registered.
func NewHeartbeatService(interval time.Duration, identity identity.IdentityInterface,
	apiClient api.Client, logger zerolog.Logger) *HeartbeatService {
	registry := status.NewRegistry()
	registry.Register(&status.CPUCollector{Logger: logger})
	registry.Register(&status.MemoryCollector{Logger: logger})
	registry.Register(&status.UptimeCollector{Logger: logger})

	return &HeartbeatService{
		Interval:  interval,
		Identity:  identity,
		APIClient: apiClient,
		Registry:  registry,
		Logger:    logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
func (h *HeartbeatService) Start() error {
	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeatLoop()
	}()

	h.Logger.Info().Dur("interval", h.Interval).Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop continuously sends heartbeat reports at the specified interval.
func (h *HeartbeatService) runHeartbeatLoop() {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			heartbeat := models.Heartbeat{
				AgentID:   h.Identity.GetAgentID(),
				Timestamp: time.Now(),
				Status:    constants.StatusAlive,
				Vitals:    h.Registry.CollectAll(h.ctx),
			}

			if err := h.APIClient.SendHeartbeat(h.ctx, heartbeat); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to send heartbeat")
			} else {
				h.Logger.Debug().Msg("Heartbeat sent successfully")
			}

		case <-h.ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}
