package credentials

import "time"

// Record is one appended music-provider credential. Rows are never updated
// or deleted: each successful re-auth appends a new row, and the newest row
// per external user is the current credential.
type Record struct {
	CredentialID   string    `json:"credential_id"`
	ExternalUserID string    `json:"external_user_id"`
	DisplayName    string    `json:"display_name"`
	RefreshToken   string    `json:"refresh_token"`
	CreatedAt      time.Time `json:"created_at"`
}

// AppendInput holds the fields for a new credential record.
type AppendInput struct {
	ExternalUserID string
	DisplayName    string
	RefreshToken   string
	CreatedAt      *time.Time // defaults to now
}
