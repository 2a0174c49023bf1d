package status

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/mem"
)

// MemoryCollector reads the percentage of used virtual memory.
type MemoryCollector struct {
	Logger zerolog.Logger
}

// Name returns the identifier for the memory collector.
func (m *MemoryCollector) Name() string {
	return "memory_used_percent"
}

// Collect retrieves the percentage of used virtual memory.
func (m *MemoryCollector) Collect(ctx context.Context) *float64 {
	memStats, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to retrieve memory statistics")
		return nil
	}

	return &memStats.UsedPercent
}
