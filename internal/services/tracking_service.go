package services

import (
	"context"
	"errors"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/constants"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/utils"
	"github.com/authenticare/location-agent/pkg/api"
	"github.com/authenticare/location-agent/pkg/file"
	"github.com/authenticare/location-agent/pkg/identity"
	"github.com/authenticare/location-agent/pkg/location"
	"github.com/authenticare/location-agent/pkg/notify"
)

// ChangeCallback is invoked when the backend confirms a location change.
type ChangeCallback func(update *models.LocationUpdate)

// Recorder receives every accepted sample for journaling.
type Recorder interface {
	Record(sample location.Sample)
}

// TrackingService watches the position source, gates samples on the
// significant-movement threshold, and reports accepted samples to the
// backend. Two mechanisms feed it concurrently: the provider's continuous
// watch subscription and a fixed-interval one-shot re-check. Both funnel
// through the same detect-then-dispatch path.
type TrackingService struct {
	// Configuration fields
	interval       time.Duration
	thresholdKm    float64
	staleness      time.Duration
	cacheFile      string
	notifyOnTravel bool

	// Dependencies
	identity   identity.IdentityInterface
	provider   location.Provider
	apiClient  api.Client
	notifier   notify.Notifier
	fileClient file.FileOperations
	recorder   Recorder
	logger     zerolog.Logger

	// Internal state management
	callbacks  cmap.ConcurrentMap[string, ChangeCallback]
	workerPool *utils.WorkerPool
	mu         sync.Mutex // Guards last
	last       *location.Sample
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// NewTrackingService creates a new TrackingService instance with the provided configuration.
func NewTrackingService(interval time.Duration, thresholdKm float64, cacheFile string, notifyOnTravel bool,
	identity identity.IdentityInterface, provider location.Provider, apiClient api.Client,
	notifier notify.Notifier, fileClient file.FileOperations, recorder Recorder,
	logger zerolog.Logger) *TrackingService {
	return &TrackingService{
		interval:       interval,
		thresholdKm:    thresholdKm,
		staleness:      constants.WatchStaleness,
		cacheFile:      cacheFile,
		notifyOnTravel: notifyOnTravel,
		identity:       identity,
		provider:       provider,
		apiClient:      apiClient,
		notifier:       notifier,
		fileClient:     fileClient,
		recorder:       recorder,
		logger:         logger,
		callbacks:      cmap.New[ChangeCallback](),
		running:        false,
	}
}

// OnLocationChange registers a callback invoked on every confirmed location change.
func (t *TrackingService) OnLocationChange(id string, callback ChangeCallback) {
	t.callbacks.Set(id, callback)
}

// RemoveLocationCallback unregisters a previously registered callback.
func (t *TrackingService) RemoveLocationCallback(id string) {
	t.callbacks.Remove(id)
}

// Start begins tracking: the watch subscription and the interval re-check.
func (t *TrackingService) Start() error {
	if t.running {
		t.logger.Warn().Msg("TrackingService is already running")
		return errors.New("tracking service is already running")
	}

	t.loadCachedLocation()

	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.workerPool = utils.NewWorkerPool(2, 16)
	t.running = true

	watchCh, err := t.provider.Watch(t.ctx)
	if err != nil {
		// The interval re-check still runs without the subscription.
		t.logger.Warn().Err(err).Msg("Watch subscription unavailable, falling back to interval checks only")
	} else {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.runWatchLoop(watchCh)
		}()
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.runPollLoop()
	}()

	t.logger.Info().
		Dur("interval", t.interval).
		Float64("threshold_km", t.thresholdKm).
		Msg("TrackingService started")
	return nil
}

// Stop halts both sampling mechanisms. After Stop returns, no further
// dispatch or callback fires even if a tick was already scheduled.
func (t *TrackingService) Stop() error {
	if !t.running {
		t.logger.Warn().Msg("TrackingService is not running")
		return errors.New("tracking service is not running")
	}

	t.cancel()
	t.wg.Wait()
	t.workerPool.Shutdown()

	if err := t.provider.Close(); err != nil {
		t.logger.Error().Err(err).Msg("Failed to close position provider")
		return err
	}

	t.running = false
	t.logger.Info().Msg("TrackingService stopped")
	return nil
}

// runWatchLoop consumes the continuous watch subscription.
func (t *TrackingService) runWatchLoop(samples <-chan location.Sample) {
	for {
		select {
		case sample, ok := <-samples:
			if !ok {
				t.logger.Info().Msg("Watch subscription closed")
				return
			}
			// Watch samples can queue behind a slow consumer; anything
			// older than the staleness tolerance is discarded. Poll
			// samples are read on demand and skip this check.
			if t.staleness > 0 && time.Since(sample.Timestamp) > t.staleness {
				t.logger.Debug().Time("sample_time", sample.Timestamp).Msg("Discarding stale watch sample")
				continue
			}
			t.handleSample(sample)
		case <-t.ctx.Done():
			return
		}
	}
}

// runPollLoop re-samples position on a fixed interval as a fallback to the
// watch subscription.
func (t *TrackingService) runPollLoop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fixCtx, cancel := context.WithTimeout(t.ctx, constants.FixTimeout)
			sample, err := t.provider.GetLocation(fixCtx)
			cancel()
			if err != nil {
				t.logger.Error().Err(err).Msg("Failed to get position fix")
				continue
			}
			t.handleSample(sample)
		case <-t.ctx.Done():
			t.logger.Info().Msg("TrackingService is stopping")
			return
		}
	}
}

// handleSample runs the change detector against the last accepted sample and
// dispatches when the movement is significant. Every accepted sample becomes
// the new baseline for the next comparison.
func (t *TrackingService) handleSample(sample location.Sample) {
	t.mu.Lock()
	if !location.Significant(t.last, sample, t.thresholdKm) {
		t.mu.Unlock()
		return
	}
	accepted := sample
	t.last = &accepted
	t.mu.Unlock()

	if err := t.fileClient.WriteJsonFile(t.cacheFile, accepted); err != nil {
		t.logger.Error().Err(err).Msg("Failed to persist last known location")
	}

	if t.recorder != nil {
		t.recorder.Record(accepted)
	}

	t.dispatch(accepted)
}

// dispatch reports the accepted sample to the backend. Failures are logged
// and tracking continues; there is no retry or backoff.
func (t *TrackingService) dispatch(sample location.Sample) {
	// Stop gates dispatch: a sample accepted while shutdown is in
	// progress is kept as baseline but never reported.
	if t.ctx.Err() != nil {
		return
	}

	report := models.LocationReport{
		UserID:    t.identity.GetUserID(),
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Accuracy:  sample.Accuracy,
		Timestamp: sample.Timestamp,
	}

	update, err := t.apiClient.UpdateLocation(t.ctx, report)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to report location update")
		return
	}

	t.logger.Info().
		Float64("distance_moved_km", update.DistanceMovedKm).
		Bool("travel_detected", update.TravelDetected).
		Msg("Location update accepted by backend")

	if update.LocationChangeDetected {
		t.fanOutCallbacks(update)
	}

	if update.TravelDetected {
		t.onTravelDetected(update)
	}
}

// fanOutCallbacks runs registered callbacks off the sampling goroutine.
func (t *TrackingService) fanOutCallbacks(update *models.LocationUpdate) {
	for entry := range t.callbacks.IterBuffered() {
		callback := entry.Val
		t.workerPool.Submit(func() {
			callback(update)
		})
	}
}

// onTravelDetected notifies the user and asks the backend to refresh
// environmental guidance for the new location.
func (t *TrackingService) onTravelDetected(update *models.LocationUpdate) {
	if t.notifyOnTravel && t.notifier.Enabled() {
		place := "a new area"
		if update.CurrentLocation != nil && update.CurrentLocation.City != "" {
			place = update.CurrentLocation.City
		}
		if err := t.notifier.Notify("Travel detected", "Air quality guidance updated for "+place); err != nil {
			t.logger.Error().Err(err).Msg("Failed to deliver travel notification")
		}
	}

	if err := t.apiClient.TriggerEnvironmentalUpdate(t.ctx); err != nil {
		t.logger.Error().Err(err).Msg("Failed to trigger environmental update")
	}
}

// LastKnown returns the current baseline sample, if any.
func (t *TrackingService) LastKnown() *location.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	sample := *t.last
	return &sample
}

// LogStatus fetches and logs the backend's view of the user's location and
// travel history. Wired to SIGUSR1 for operator inspection.
func (t *TrackingService) LogStatus(ctx context.Context) {
	if current, err := t.apiClient.CurrentLocation(ctx); err != nil {
		t.logger.Error().Err(err).Msg("Failed to fetch current location")
	} else {
		t.logger.Info().
			Float64("lat", current.Latitude).
			Float64("lon", current.Longitude).
			Str("city", current.City).
			Str("country", current.Country).
			Msg("Current location")
	}

	if summary, err := t.apiClient.TravelSummary(ctx); err != nil {
		t.logger.Error().Err(err).Msg("Failed to fetch travel summary")
	} else {
		t.logger.Info().
			Float64("total_distance_km", summary.TotalDistanceKm).
			Int("locations_visited", summary.LocationsVisited).
			Float64("travel_time_hours", summary.TravelTimeHours).
			Strs("cities_visited", summary.CitiesVisited).
			Bool("is_traveling", summary.IsTraveling).
			Msg("Travel summary")
	}

	if history, err := t.apiClient.LocationHistory(ctx, 10); err != nil {
		t.logger.Error().Err(err).Msg("Failed to fetch location history")
	} else {
		t.logger.Info().Int("entries", len(history)).Msg("Recent location history")
	}
}

// loadCachedLocation restores the persisted baseline, if present.
func (t *TrackingService) loadCachedLocation() {
	exists, err := t.fileClient.IsFileExists(t.cacheFile)
	if err != nil || !exists {
		return
	}

	var cached location.Sample
	if err := t.fileClient.ReadJsonFile(t.cacheFile, &cached); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to read cached location, starting fresh")
		return
	}

	t.mu.Lock()
	t.last = &cached
	t.mu.Unlock()

	t.logger.Info().
		Float64("lat", cached.Latitude).
		Float64("lon", cached.Longitude).
		Msg("Restored last known location from cache")
}
