package provider

import (
	"fmt"
	"log"

	"github.com/soundtouchd/soundtouch-cloud/internal/credentials"
)

// Service refreshes user credentials against the provider and records them in
// the append-only credential store, where the account reconciler picks them up.
type Service struct {
	client      *Client
	credentials *credentials.Repository
	logger      *log.Logger
}

// NewService creates a new provider Service.
func NewService(client *Client, creds *credentials.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{client: client, credentials: creds, logger: logger}
}

// RefreshCredential fetches a fresh refresh token for the user and appends it
// to the credential store.
func (s *Service) RefreshCredential(externalUserID, displayName string) (*credentials.Record, error) {
	cred, err := s.client.RefreshCredential(externalUserID)
	if err != nil {
		return nil, fmt.Errorf("refresh credential for %s: %w", externalUserID, err)
	}

	record, err := s.credentials.Append(credentials.AppendInput{
		ExternalUserID: externalUserID,
		DisplayName:    displayName,
		RefreshToken:   cred.RefreshToken,
		CreatedAt:      &cred.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("store credential for %s: %w", externalUserID, err)
	}

	s.logger.Printf("Refreshed provider credential for user %s", externalUserID)
	return record, nil
}

// LookupEntity resolves a content URI through the provider catalog.
func (s *Service) LookupEntity(uri string) (*Entity, error) {
	return s.client.LookupEntity(uri)
}

// ListCredentials returns the stored credential history for a user, newest
// first.
func (s *Service) ListCredentials(externalUserID string) ([]credentials.Record, error) {
	return s.credentials.ListByUser(externalUserID)
}
