package status

import "context"

// Collector reads a single device vital. A nil result means the reading
// failed and the vital is omitted from the report.
type Collector interface {
	// Name is the vital's key in the heartbeat report (e.g., "cpu_percent").
	Name() string
	// Collect reads the current value.
	Collect(ctx context.Context) *float64
}

// Registry manages the set of vital collectors.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a collector to the registry.
func (r *Registry) Register(collector Collector) {
	r.collectors[collector.Name()] = collector
}

// CollectAll reads every registered vital, skipping failed readings.
func (r *Registry) CollectAll(ctx context.Context) map[string]float64 {
	vitals := make(map[string]float64, len(r.collectors))
	for name, collector := range r.collectors {
		if value := collector.Collect(ctx); value != nil {
			vitals[name] = *value
		}
	}
	return vitals
}
