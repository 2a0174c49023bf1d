package status

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
)

// CPUCollector reads the total CPU utilization percentage.
type CPUCollector struct {
	Logger zerolog.Logger
}

// Name returns the identifier for the CPU collector.
func (c *CPUCollector) Name() string {
	return "cpu_percent"
}

// Collect retrieves the total CPU usage percentage.
func (c *CPUCollector) Collect(ctx context.Context) *float64 {
	percentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(percentages) == 0 {
		c.Logger.Error().Err(err).Msg("Failed to retrieve CPU usage")
		return nil
	}

	return &percentages[0]
}
