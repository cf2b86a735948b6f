package devices

import "time"

// UnpairedAccountID is the ownership sentinel for devices that have lost
// their pairing. Devices are never deleted from the registry.
const UnpairedAccountID = "unpaired"

// Device is one registered speaker. Created on first network contact or
// explicit pairing, touched on every contact.
type Device struct {
	DeviceID    string    `json:"device_id"`
	DisplayName string    `json:"display_name"`
	IPAddress   string    `json:"ip_address"`
	AccountID   string    `json:"account_id"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	Revision    int       `json:"revision"`
}

// ContactInput holds the fields reported on a network contact.
type ContactInput struct {
	DeviceID  string
	IPAddress string
}

// PairInput holds the fields set on an explicit pairing request.
type PairInput struct {
	DeviceID    string
	AccountID   string
	DisplayName string
	IPAddress   string
}
