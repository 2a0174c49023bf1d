package constants

import "time"

// AgentVersion is the semantic version of this agent build.
const AgentVersion = "1.2.0"

// Tracking defaults.
const (
	// DefaultThresholdKm gates network updates: movement below this
	// distance from the last accepted fix is not reported.
	DefaultThresholdKm = 1.0

	// DefaultPollInterval is the fallback re-check cadence alongside the
	// continuous watch subscription.
	DefaultPollInterval = 5 * time.Minute

	// FixTimeout bounds a single one-shot position read.
	FixTimeout = 10 * time.Second

	// WatchFixTimeout bounds an individual fix inside a watch
	// subscription so one hung read cannot stall the stream.
	WatchFixTimeout = 30 * time.Second

	// WatchStaleness is the maximum age of a watch sample before it is
	// discarded instead of compared.
	WatchStaleness = 2 * time.Minute
)

// Heartbeat statuses.
const (
	StatusAlive = "alive"
)

// Alert severities pushed by the backend.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)
