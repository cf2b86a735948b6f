package presets

import (
	"fmt"
	"log"
)

// EventRecorder receives device activity events.
type EventRecorder interface {
	Record(deviceID, eventType, message string)
}

// Service provides favorite-button slot management.
type Service struct {
	logger *log.Logger
	repo   *Repository
	events EventRecorder
}

// NewService creates a new presets service.
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

// Assign saves content to a favorite button, reconciling content identity
// against button occupancy.
func (s *Service) Assign(input AssignInput) (*Preset, error) {
	preset, err := s.repo.Assign(input)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Record(input.DeviceID, "preset", fmt.Sprintf("preset %d assigned: %s", input.ButtonNumber, input.Name))
	}
	return preset, nil
}

// Get retrieves the preset occupying a button, or nil.
func (s *Service) Get(accountID, deviceID string, buttonNumber int) (*Preset, error) {
	return s.repo.GetByButton(accountID, deviceID, buttonNumber)
}

// List retrieves a device's presets ordered by button number.
func (s *Service) List(accountID, deviceID string) ([]Preset, error) {
	return s.repo.List(accountID, deviceID)
}
