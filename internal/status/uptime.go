package status

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/host"
)

// UptimeCollector reads the host uptime in seconds.
type UptimeCollector struct {
	Logger zerolog.Logger
}

// Name returns the identifier for the uptime collector.
func (u *UptimeCollector) Name() string {
	return "uptime_seconds"
}

// Collect retrieves the host uptime.
func (u *UptimeCollector) Collect(ctx context.Context) *float64 {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		u.Logger.Error().Err(err).Msg("Failed to retrieve host uptime")
		return nil
	}

	seconds := float64(uptime)
	return &seconds
}
