package models

import "time"

// LocationReport is the payload submitted to the backend when significant
// movement is detected.
type LocationReport struct {
	UserID    string    `json:"user_id,omitempty"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Position is the backend's resolved view of a location, including the
// reverse-geocoded place fields.
type Position struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Country   string    `json:"country,omitempty"`
	Address   string    `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationUpdate is the backend's interpretation of a submitted report.
type LocationUpdate struct {
	LocationUpdated        bool      `json:"location_updated"`
	LocationChangeDetected bool      `json:"location_change_detected"`
	DistanceMovedKm        float64   `json:"distance_moved_km"`
	TravelDetected         bool      `json:"travel_detected"`
	CurrentLocation        *Position `json:"current_location,omitempty"`
}

// TravelSummary aggregates the user's movement history. Derived server-side;
// read-only to the agent.
type TravelSummary struct {
	TotalDistanceKm  float64  `json:"total_distance_km"`
	LocationsVisited int      `json:"locations_visited"`
	TravelTimeHours  float64  `json:"travel_time_hours"`
	CitiesVisited    []string `json:"cities_visited"`
	IsTraveling      bool     `json:"is_traveling"`
}

// HistoryEntry is a single stored location in the user's history.
type HistoryEntry struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	City      string    `json:"city,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
