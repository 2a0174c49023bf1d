package models

import "time"

// Heartbeat represents a periodic device status report sent to the backend.
type Heartbeat struct {
	AgentID   string             `json:"agent_id"`
	Timestamp time.Time          `json:"timestamp"`
	Status    string             `json:"status"`
	Vitals    map[string]float64 `json:"vitals,omitempty"`
}
