package events

import "time"

// Event is a single device activity record. Events live in memory only; they
// exist for operator visibility, not durability.
type Event struct {
	EventID   string    `json:"event_id"`
	DeviceID  string    `json:"device_id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
