package recents

import "time"

// MaxPerAccount bounds the history length. Inserting beyond the cap evicts
// the oldest rows by last_played_at until exactly this many remain.
const MaxPerAccount = 50

// Recent is one play-history entry. Dedup identity is (account, location,
// source): the device is deliberately not part of it, so a play from another
// speaker on the same account merges into the existing row.
type Recent struct {
	RecentID        string    `json:"recent_id"`
	AccountID       string    `json:"account_id"`
	DeviceID        string    `json:"device_id"`
	Location        string    `json:"location"`
	SourceID        string    `json:"source_id"`
	ContentItemType string    `json:"content_item_type"`
	Name            string    `json:"name"`
	LastPlayedAt    time.Time `json:"last_played_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecordPlayInput holds one playback report.
type RecordPlayInput struct {
	AccountID       string
	DeviceID        string
	Location        string
	SourceID        string
	ContentItemType string
	Name            string
	LastPlayedAt    *time.Time // defaults to now
}
