package location

import "time"

// Sample is a single timestamped position fix. Samples are immutable;
// each new fix supersedes the previous one.
type Sample struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
