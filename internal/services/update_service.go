package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/constants"
	"github.com/authenticare/location-agent/pkg/api"
	"github.com/authenticare/location-agent/pkg/notify"
)

// UpdateService periodically compares the running agent version against the
// backend's advertised latest release and surfaces available updates.
type UpdateService struct {
	Interval  time.Duration
	APIClient api.Client
	Notifier  notify.Notifier
	Logger    zerolog.Logger

	current *semver.Version
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewUpdateService initializes a new UpdateService.
func NewUpdateService(interval time.Duration, apiClient api.Client, notifier notify.Notifier,
	logger zerolog.Logger) *UpdateService {
	return &UpdateService{
		Interval:  interval,
		APIClient: apiClient,
		Notifier:  notifier,
		Logger:    logger,
	}
}

// Start parses the build version and launches the check loop.
func (u *UpdateService) Start() error {
	if u.ctx != nil {
		u.Logger.Warn().Msg("UpdateService is already running")
		return errors.New("update service is already running")
	}

	current, err := semver.NewVersion(constants.AgentVersion)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", constants.AgentVersion, err)
	}
	u.current = current

	u.ctx, u.cancel = context.WithCancel(context.Background())

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.runCheckLoop()
	}()

	u.Logger.Info().Str("version", constants.AgentVersion).Msg("UpdateService started successfully")
	return nil
}

// Stop gracefully stops the update service.
func (u *UpdateService) Stop() error {
	if u.ctx == nil {
		u.Logger.Warn().Msg("UpdateService is not running")
		return errors.New("update service is not running")
	}

	u.cancel()
	u.wg.Wait()

	u.ctx = nil
	u.cancel = nil

	u.Logger.Info().Msg("UpdateService stopped successfully")
	return nil
}

// runCheckLoop polls the version endpoint at the specified interval.
func (u *UpdateService) runCheckLoop() {
	ticker := time.NewTicker(u.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.checkOnce()
		case <-u.ctx.Done():
			u.Logger.Info().Msg("UpdateService stopping gracefully")
			return
		}
	}
}

// checkOnce fetches the advertised release and compares versions.
func (u *UpdateService) checkOnce() {
	info, err := u.APIClient.LatestVersion(u.ctx)
	if err != nil {
		u.Logger.Error().Err(err).Msg("Failed to fetch latest agent version")
		return
	}

	latest, err := semver.NewVersion(info.Version)
	if err != nil {
		u.Logger.Error().Err(err).Str("version", info.Version).Msg("Backend advertised an unparsable version")
		return
	}

	if !latest.GreaterThan(u.current) {
		u.Logger.Debug().Str("version", u.current.String()).Msg("Agent is up to date")
		return
	}

	u.Logger.Info().
		Str("current", u.current.String()).
		Str("latest", latest.String()).
		Msg("A newer agent version is available")

	message := fmt.Sprintf("Version %s is available (you are on %s).", latest, u.current)
	if err := u.Notifier.Notify("AuthentiCare agent update available", message); err != nil {
		u.Logger.Error().Err(err).Msg("Failed to deliver update notification")
	}
}
