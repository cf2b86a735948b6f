package presets

import "time"

// Preset is one favorite-button assignment. Its identity for "is this the
// same content" purposes is the (account, device, location, source,
// content item type) tuple, not the id and not the button number.
type Preset struct {
	PresetID        string    `json:"preset_id"`
	AccountID       string    `json:"account_id"`
	DeviceID        string    `json:"device_id"`
	ButtonNumber    int       `json:"button_number"`
	Location        string    `json:"location"`
	SourceID        string    `json:"source_id"`
	ContentItemType string    `json:"content_item_type"`
	ContainerArt    string    `json:"container_art"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Revision        int       `json:"revision"`
}

// AssignInput holds one preset save request.
type AssignInput struct {
	AccountID       string
	DeviceID        string
	ButtonNumber    int
	Location        string
	SourceID        string
	ContentItemType string
	ContainerArt    string
	Name            string
}
