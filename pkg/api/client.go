package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/authenticare/location-agent/internal/models"
	"github.com/authenticare/location-agent/pkg/token"
)

// Client defines the operations the agent performs against the AuthentiCare backend.
type Client interface {
	UpdateLocation(ctx context.Context, report models.LocationReport) (*models.LocationUpdate, error)
	CurrentLocation(ctx context.Context) (*models.Position, error)
	LocationHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	TravelSummary(ctx context.Context) (*models.TravelSummary, error)
	TriggerEnvironmentalUpdate(ctx context.Context) error
	SendHeartbeat(ctx context.Context, heartbeat models.Heartbeat) error
	LatestVersion(ctx context.Context) (*models.VersionInfo, error)
}

// RestClient is the HTTP implementation of Client.
type RestClient struct {
	baseURL      string
	httpClient   *http.Client
	tokenManager token.ManagerInterface
	logger       zerolog.Logger
}

// NewRestClient creates a RestClient for the given base URL.
func NewRestClient(baseURL string, timeout time.Duration, tokenManager token.ManagerInterface,
	logger zerolog.Logger) *RestClient {
	return &RestClient{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// UpdateLocation submits a position report and returns the backend's interpretation.
func (c *RestClient) UpdateLocation(ctx context.Context, report models.LocationReport) (*models.LocationUpdate, error) {
	var update models.LocationUpdate
	if err := c.doJSON(ctx, http.MethodPost, "/location/update", report, &update); err != nil {
		return nil, fmt.Errorf("failed to submit location update: %w", err)
	}
	return &update, nil
}

// CurrentLocation fetches the backend's last resolved location for the user.
func (c *RestClient) CurrentLocation(ctx context.Context) (*models.Position, error) {
	var position models.Position
	if err := c.doJSON(ctx, http.MethodGet, "/location/current-test", nil, &position); err != nil {
		return nil, fmt.Errorf("failed to fetch current location: %w", err)
	}
	return &position, nil
}

// LocationHistory fetches up to limit stored locations, newest first.
func (c *RestClient) LocationHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	path := "/location/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var history []models.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, fmt.Errorf("failed to fetch location history: %w", err)
	}
	return history, nil
}

// TravelSummary fetches the server-derived travel aggregate.
func (c *RestClient) TravelSummary(ctx context.Context) (*models.TravelSummary, error) {
	var summary models.TravelSummary
	if err := c.doJSON(ctx, http.MethodGet, "/location/travel-summary-test", nil, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch travel summary: %w", err)
	}
	return &summary, nil
}

// TriggerEnvironmentalUpdate asks the backend to recompute environmental
// guidance for the user's current location.
func (c *RestClient) TriggerEnvironmentalUpdate(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/location/trigger-environmental-update", nil, nil); err != nil {
		return fmt.Errorf("failed to trigger environmental update: %w", err)
	}
	return nil
}

// SendHeartbeat reports agent liveness and device vitals.
func (c *RestClient) SendHeartbeat(ctx context.Context, heartbeat models.Heartbeat) error {
	if err := c.doJSON(ctx, http.MethodPost, "/agent/heartbeat", heartbeat, nil); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}
	return nil
}

// LatestVersion fetches the backend's advertised latest agent release.
func (c *RestClient) LatestVersion(ctx context.Context) (*models.VersionInfo, error) {
	var info models.VersionInfo
	if err := c.doJSON(ctx, http.MethodGet, "/agent/version", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch latest version: %w", err)
	}
	return &info, nil
}

// doJSON performs an authenticated JSON request. On a 401 response it
// refreshes the access token once and repeats the request.
func (c *RestClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.refreshTokens(ctx); err != nil {
			return fmt.Errorf("token refresh failed: %w", err)
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, string(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// send builds and executes a single request with the current access token.
func (c *RestClient) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.tokenManager.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	return c.httpClient.Do(req)
}

// refreshTokens exchanges the refresh token for a new token pair.
func (c *RestClient) refreshTokens(ctx context.Context) error {
	refresh, err := c.tokenManager.RefreshToken()
	if err != nil {
		return err
	}
	if refresh == "" {
		return fmt.Errorf("no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": refresh})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	if err := c.tokenManager.SaveTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return err
	}

	c.logger.Info().Msg("Access token refreshed")
	return nil
}
