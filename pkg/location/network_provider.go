package location

import (
	"context"
	"time"

	"googlemaps.github.io/maps"

	"github.com/authenticare/location-agent/internal/constants"
)

// NetworkProvider resolves position through the Google Maps Geolocation API
// using nearby WiFi access points and cell towers. It is the fallback for
// devices without a GPS receiver.
type NetworkProvider struct {
	client        *maps.Client  // Maps API client for making geolocation requests
	modemIndex    int           // ModemManager modem index used for cell tower lookup
	watchInterval time.Duration // Re-sample cadence for watch subscriptions
	fixTimeout    time.Duration // Bound on an individual watch fix
}

// NewNetworkProvider creates a new NetworkProvider instance.
func NewNetworkProvider(apiKey string, modemIndex int, watchInterval time.Duration) (*NetworkProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &NetworkProvider{
		client:        c,
		modemIndex:    modemIndex,
		watchInterval: watchInterval,
		fixTimeout:    constants.WatchFixTimeout,
	}, nil
}

// GetLocation resolves the current position via the Geolocation API. WiFi and
// cell tower data are best effort; the request still carries ConsiderIP when
// neither is available.
func (g *NetworkProvider) GetLocation(ctx context.Context) (Sample, error) {
	req := &maps.GeolocationRequest{
		ConsiderIP: true,
	}

	if wifiAPs, err := getWiFiAccessPoints(ctx); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}
	if cellTowers, err := getCellTowers(ctx, g.modemIndex); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Timestamp: time.Now(),
	}, nil
}

// Watch emulates a continuous subscription by re-sampling on a fixed cadence.
// Each fix is bounded by the fix timeout so one stalled geolocation call
// cannot block the stream. Failed reads are skipped; the next tick tries again.
func (g *NetworkProvider) Watch(ctx context.Context) (<-chan Sample, error) {
	samples := make(chan Sample)

	go func() {
		defer close(samples)

		ticker := time.NewTicker(g.watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fixCtx, cancel := context.WithTimeout(ctx, g.fixTimeout)
				sample, err := g.GetLocation(fixCtx)
				cancel()
				if err != nil {
					continue
				}
				select {
				case samples <- sample:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return samples, nil
}

// Close is a no-op; the Maps client holds no persistent connection.
func (g *NetworkProvider) Close() error {
	return nil
}
