package recents

import "log"

// EventRecorder receives device activity events.
type EventRecorder interface {
	Record(deviceID, eventType, message string)
}

// Service provides bounded play-history management.
type Service struct {
	logger *log.Logger
	repo   *Repository
	events EventRecorder
}

// NewService creates a new recents service.
func NewService(dbPair DBPair, logger *log.Logger, events EventRecorder) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		logger: logger,
		repo:   NewRepository(dbPair),
		events: events,
	}
}

// RecordPlay merges a playback report into the account's history ring.
func (s *Service) RecordPlay(input RecordPlayInput) (*Recent, error) {
	recent, err := s.repo.RecordPlay(input)
	if err != nil {
		return nil, err
	}
	if s.events != nil && input.DeviceID != "" {
		s.events.Record(input.DeviceID, "play", "played "+input.Name)
	}
	return recent, nil
}

// List retrieves an account's recents, newest play first.
func (s *Service) List(accountID string) ([]Recent, error) {
	return s.repo.List(accountID)
}
