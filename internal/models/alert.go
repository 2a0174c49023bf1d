package models

import "time"

// EnvironmentalAlert is an air-quality or respiratory-health advisory pushed
// by the backend after it processes a location change.
type EnvironmentalAlert struct {
	AlertID   string    `json:"alert_id"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	City      string    `json:"city,omitempty"`
	AQI       int       `json:"aqi,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionInfo is the backend's advertised latest agent release.
type VersionInfo struct {
	Version      string    `json:"version"`
	ReleaseNotes string    `json:"release_notes,omitempty"`
	PublishedAt  time.Time `json:"published_at,omitempty"`
}
