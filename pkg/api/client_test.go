package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/authenticare/location-agent/internal/mocks"
	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/pkg/api"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.RestClient, *mocks.MockTokenManager, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := new(mocks.MockTokenManager)
	client := api.NewRestClient(server.URL, 5*time.Second, tokens, zerolog.Nop())
	return client, tokens, server
}

// TestRestClient_UpdateLocation verifies request shape and response parsing.
func TestRestClient_UpdateLocation(t *testing.T) {
	var received models.LocationReport

	mux := http.NewServeMux()
	mux.HandleFunc("/location/update", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(models.LocationUpdate{
			LocationUpdated:        true,
			LocationChangeDetected: true,
			DistanceMovedKm:        2.3,
			TravelDetected:         false,
			CurrentLocation:        &models.Position{City: "New York", Country: "US"},
		})
	})

	client, tokens, _ := newTestClient(t, mux)
	tokens.On("AccessToken").Return("test-token")

	report := models.LocationReport{
		UserID:    "user-1",
		Latitude:  40.7300,
		Longitude: -73.9950,
		Timestamp: time.Now().UTC(),
	}

	update, err := client.UpdateLocation(context.Background(), report)
	assert.NoError(t, err)
	assert.True(t, update.LocationChangeDetected)
	assert.InDelta(t, 2.3, update.DistanceMovedKm, 1e-9)
	assert.Equal(t, "New York", update.CurrentLocation.City)

	assert.Equal(t, "user-1", received.UserID)
	assert.InDelta(t, 40.7300, received.Latitude, 1e-9)
}

// TestRestClient_TravelSummary verifies the aggregate response parsing.
func TestRestClient_TravelSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/travel-summary-test", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.TravelSummary{
			TotalDistanceKm:  123.4,
			LocationsVisited: 7,
			TravelTimeHours:  5.5,
			CitiesVisited:    []string{"New York", "Boston"},
			IsTraveling:      true,
		})
	})

	client, tokens, _ := newTestClient(t, mux)
	tokens.On("AccessToken").Return("test-token")

	summary, err := client.TravelSummary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, summary.LocationsVisited)
	assert.Equal(t, []string{"New York", "Boston"}, summary.CitiesVisited)
	assert.True(t, summary.IsTraveling)
}

// TestRestClient_RefreshOnUnauthorized verifies the 401 refresh-and-retry path.
func TestRestClient_RefreshOnUnauthorized(t *testing.T) {
	attempts := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/location/history", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]models.HistoryEntry{{City: "New York"}})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-refresh", body["refresh_token"])

		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
		})
	})

	client, tokens, _ := newTestClient(t, mux)
	tokens.On("AccessToken").Return("stale-token")
	tokens.On("RefreshToken").Return("old-refresh", nil)
	tokens.On("SaveTokens", "new-access", "new-refresh").Return(nil)

	history, err := client.LocationHistory(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, 2, attempts)
	tokens.AssertCalled(t, "SaveTokens", "new-access", "new-refresh")
}

// TestRestClient_ServerErrorSurfaced verifies non-2xx responses become errors.
func TestRestClient_ServerErrorSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/trigger-environmental-update", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, tokens, _ := newTestClient(t, mux)
	tokens.On("AccessToken").Return("test-token")

	err := client.TriggerEnvironmentalUpdate(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
