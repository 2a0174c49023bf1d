package location

import "context"

// Provider interface defines the methods for position providers.
type Provider interface {
	// GetLocation returns a single fresh fix. It honors the context
	// deadline and does not retry a failed read.
	GetLocation(ctx context.Context) (Sample, error)

	// Watch delivers a continuous stream of fixes until the context is
	// cancelled. The returned channel is closed when the subscription ends.
	Watch(ctx context.Context) (<-chan Sample, error)

	// Close releases any resources held by the provider.
	Close() error
}
