package provider

import (
	"fmt"
	"time"
)

// Credential is the result of a token refresh for one external user.
type Credential struct {
	RefreshToken string    `json:"refresh_token"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Entity is the catalog metadata for one content URI.
type Entity struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// APIError is an error response from the provider API.
type APIError struct {
	ErrorCode  string `json:"errorCode"`
	Reason     string `json:"reason"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api error %s (%d): %s", e.ErrorCode, e.HTTPStatus, e.Reason)
}

type tokenResponse struct {
	RefreshToken string `json:"refresh_token"`
	UpdatedAt    int64  `json:"updated_at"`
	UserName     string `json:"user_name,omitempty"`
}

type entityResponse struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
