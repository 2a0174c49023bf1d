package services_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/authenticare/location-agent/internal/mocks"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/internal/services"
	"github.com/authenticare/location-agent/pkg/location"
	"github.com/authenticare/location-agent/pkg/notify"
)

var (
	nycSample  = location.Sample{Latitude: 40.7128, Longitude: -74.0060}
	farSample  = location.Sample{Latitude: 40.7300, Longitude: -73.9950} // ~2.3 km from NYC
	nearSample = location.Sample{Latitude: 40.7135, Longitude: -74.0065} // ~0.09 km from NYC
)

// trackerFixture bundles the mocks a tracking service test needs.
type trackerFixture struct {
	provider *mocks.MockProvider
	api      *mocks.MockAPIClient
	samples  chan location.Sample
	reports  chan models.LocationReport
}

func newTrackerFixture(t *testing.T, update *models.LocationUpdate) (*services.TrackingService, *trackerFixture) {
	t.Helper()

	fixture := &trackerFixture{
		provider: new(mocks.MockProvider),
		api:      new(mocks.MockAPIClient),
		samples:  make(chan location.Sample, 8),
		reports:  make(chan models.LocationReport, 8),
	}

	fixture.provider.On("Watch", mock.Anything).Return((<-chan location.Sample)(fixture.samples), nil)
	fixture.provider.On("GetLocation", mock.Anything).Return(location.Sample{}, assert.AnError).Maybe()
	fixture.provider.On("Close").Return(nil)

	fixture.api.On("UpdateLocation", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		fixture.reports <- args.Get(1).(models.LocationReport)
	}).Return(update, nil).Maybe()
	fixture.api.On("TriggerEnvironmentalUpdate", mock.Anything).Return(nil).Maybe()

	mockIdentity := new(mocks.MockIdentity)
	mockIdentity.On("GetUserID").Return("user-1").Maybe()

	fileOps := new(mocks.MockFileOperations)
	fileOps.On("IsFileExists", mock.Anything).Return(false, nil)
	fileOps.On("WriteJsonFile", mock.Anything, mock.Anything).Return(nil).Maybe()

	tracker := services.NewTrackingService(
		time.Hour, // Keep the interval re-check out of the way
		1.0,
		"last_location.json",
		false,
		mockIdentity,
		fixture.provider,
		fixture.api,
		notify.NopNotifier{},
		fileOps,
		nil,
		zerolog.Nop(),
	)

	return tracker, fixture
}

// send stamps a sample fresh and feeds it through the watch subscription.
func (f *trackerFixture) send(sample location.Sample) {
	sample.Timestamp = time.Now()
	f.samples <- sample
}

// waitReport blocks until a dispatch reaches the backend mock.
func (f *trackerFixture) waitReport(t *testing.T) models.LocationReport {
	t.Helper()
	select {
	case report := <-f.reports:
		return report
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for location dispatch")
		return models.LocationReport{}
	}
}

// assertNoReport verifies that no dispatch happens within the grace window.
func (f *trackerFixture) assertNoReport(t *testing.T) {
	t.Helper()
	select {
	case report := <-f.reports:
		t.Fatalf("unexpected dispatch: %+v", report)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestTrackingService_StartStop tests double start and double stop handling.
func TestTrackingService_StartStop(t *testing.T) {
	tracker, _ := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())

	err := tracker.Start()
	assert.Error(t, err)
	assert.Equal(t, "tracking service is already running", err.Error())

	assert.NoError(t, tracker.Stop())

	err = tracker.Stop()
	assert.Error(t, err)
	assert.Equal(t, "tracking service is not running", err.Error())
}

// TestTrackingService_FirstFixAlwaysDispatched verifies the first-ever sample
// is reported regardless of coordinates.
func TestTrackingService_FirstFixAlwaysDispatched(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	fixture.send(nycSample)

	report := fixture.waitReport(t)
	assert.Equal(t, "user-1", report.UserID)
	assert.InDelta(t, nycSample.Latitude, report.Latitude, 1e-9)
	assert.InDelta(t, nycSample.Longitude, report.Longitude, 1e-9)
}

// TestTrackingService_WithinThresholdNotDispatched verifies movement within
// 1 km of the baseline does not trigger a dispatch.
func TestTrackingService_WithinThresholdNotDispatched(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	fixture.send(nycSample)
	fixture.waitReport(t)

	fixture.send(nearSample)
	fixture.assertNoReport(t)

	fixture.api.AssertNumberOfCalls(t, "UpdateLocation", 1)

	// The baseline is unchanged, so the original far sample still dispatches.
	fixture.send(farSample)
	fixture.waitReport(t)
}

// TestTrackingService_BeyondThresholdDispatched verifies movement beyond 1 km
// triggers a dispatch and becomes the new baseline.
func TestTrackingService_BeyondThresholdDispatched(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	fixture.send(nycSample)
	fixture.waitReport(t)

	fixture.send(farSample)
	report := fixture.waitReport(t)
	assert.InDelta(t, farSample.Latitude, report.Latitude, 1e-9)

	baseline := tracker.LastKnown()
	assert.NotNil(t, baseline)
	assert.InDelta(t, farSample.Latitude, baseline.Latitude, 1e-9)
}

// TestTrackingService_StaleSamplesDropped verifies watch samples older than
// the staleness tolerance are discarded.
func TestTrackingService_StaleSamplesDropped(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	stale := nycSample
	stale.Timestamp = time.Now().Add(-3 * time.Minute)
	fixture.samples <- stale

	fixture.assertNoReport(t)
	fixture.api.AssertNumberOfCalls(t, "UpdateLocation", 0)
}

// TestTrackingService_NoDispatchAfterStop verifies that stopping tracking
// prevents any further dispatches even for samples already queued.
func TestTrackingService_NoDispatchAfterStop(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, &models.LocationUpdate{LocationUpdated: true})

	assert.NoError(t, tracker.Start())

	fixture.send(nycSample)
	fixture.waitReport(t)

	assert.NoError(t, tracker.Stop())

	fixture.send(farSample)
	fixture.assertNoReport(t)
	fixture.api.AssertNumberOfCalls(t, "UpdateLocation", 1)
}

// TestTrackingService_CallbacksInvoked verifies registered callbacks fire on
// a confirmed location change.
func TestTrackingService_CallbacksInvoked(t *testing.T) {
	update := &models.LocationUpdate{
		LocationUpdated:        true,
		LocationChangeDetected: true,
		DistanceMovedKm:        2.3,
	}
	tracker, fixture := newTrackerFixture(t, update)

	received := make(chan *models.LocationUpdate, 1)
	tracker.OnLocationChange("test", func(u *models.LocationUpdate) {
		received <- u
	})

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	fixture.send(nycSample)
	fixture.waitReport(t)

	select {
	case u := <-received:
		assert.InDelta(t, 2.3, u.DistanceMovedKm, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

// TestTrackingService_TravelTriggersEnvironmentalUpdate verifies a travel
// detection asks the backend to refresh environmental guidance.
func TestTrackingService_TravelTriggersEnvironmentalUpdate(t *testing.T) {
	update := &models.LocationUpdate{
		LocationUpdated: true,
		TravelDetected:  true,
		CurrentLocation: &models.Position{City: "Boston"},
	}
	tracker, fixture := newTrackerFixture(t, update)

	assert.NoError(t, tracker.Start())

	fixture.send(nycSample)
	fixture.waitReport(t)

	assert.NoError(t, tracker.Stop())
	fixture.api.AssertCalled(t, "TriggerEnvironmentalUpdate", mock.Anything)
}

// TestTrackingService_DispatchFailureKeepsTracking verifies a failed dispatch
// is logged and tracking continues with the accepted baseline.
func TestTrackingService_DispatchFailureKeepsTracking(t *testing.T) {
	tracker, fixture := newTrackerFixture(t, nil)

	// Replace the default expectation with a failing backend.
	fixture.api.ExpectedCalls = nil
	fixture.api.On("UpdateLocation", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		fixture.reports <- args.Get(1).(models.LocationReport)
	}).Return(nil, assert.AnError)

	assert.NoError(t, tracker.Start())
	defer tracker.Stop()

	fixture.send(nycSample)
	fixture.waitReport(t)

	// The sample was accepted as baseline even though dispatch failed.
	baseline := tracker.LastKnown()
	assert.NotNil(t, baseline)
	assert.InDelta(t, nycSample.Latitude, baseline.Latitude, 1e-9)

	// Movement beyond the threshold still attempts a dispatch.
	fixture.send(farSample)
	fixture.waitReport(t)
	fixture.api.AssertNumberOfCalls(t, "UpdateLocation", 2)
}
