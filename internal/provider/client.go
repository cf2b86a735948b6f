package provider

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the external music provider: OAuth token refresh for user
// credentials and catalog lookups with a developer token.
type Client struct {
	tokenURL     string
	catalogURL   string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	tokens       *TokenManager // nil when catalog lookups are not configured
}

// NewClient creates a new provider client. tokens may be nil; LookupEntity
// then fails with a configuration error.
func NewClient(tokenURL, catalogURL, clientID, clientSecret string, timeout time.Duration, tokens *TokenManager) *Client {
	return &Client{
		tokenURL:     tokenURL,
		catalogURL:   strings.TrimRight(catalogURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// RefreshCredential exchanges the user's standing grant for a fresh refresh
// token.
func (c *Client) RefreshCredential(externalUserID string) (*Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("user_id", externalUserID)

	req, err := http.NewRequest(http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.basicAuth())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorCode != "" {
			apiErr.HTTPStatus = resp.StatusCode
			return nil, &apiErr
		}
		return nil, fmt.Errorf("token request failed: %s", resp.Status)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}

	updatedAt := time.Now().UTC()
	if tokenResp.UpdatedAt > 0 {
		updatedAt = time.Unix(tokenResp.UpdatedAt, 0).UTC()
	}

	return &Credential{
		RefreshToken: tokenResp.RefreshToken,
		UpdatedAt:    updatedAt,
	}, nil
}

// LookupEntity resolves a content URI to its display name and artwork URL.
func (c *Client) LookupEntity(uri string) (*Entity, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("catalog lookups are not configured")
	}

	token, err := c.tokens.DeveloperToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, c.catalogURL+"/entity?uri="+url.QueryEscape(uri), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorCode != "" {
			apiErr.HTTPStatus = resp.StatusCode
			return nil, &apiErr
		}
		return nil, fmt.Errorf("entity request failed: %s", resp.Status)
	}

	var entityResp entityResponse
	if err := json.Unmarshal(body, &entityResp); err != nil {
		return nil, fmt.Errorf("parse entity response: %w", err)
	}

	return &Entity{
		Name:     entityResp.Name,
		ImageURL: entityResp.ImageURL,
	}, nil
}

func (c *Client) basicAuth() string {
	auth := c.clientID + ":" + c.clientSecret
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
