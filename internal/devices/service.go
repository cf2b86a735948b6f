package devices

import (
	"log"

	"github.com/soundtouchd/soundtouch-cloud/internal/config"
)

// EventRecorder receives device activity events. Implemented by the events
// buffer; kept as an interface so the repository tests don't need one.
type EventRecorder interface {
	Record(deviceID, eventType, message string)
}

// Service provides device registry functionality.
type Service struct {
	cfg    config.Config
	logger *log.Logger
	repo   *Repository
	events EventRecorder
}

// NewService creates a new devices service.
// Accepts a DBPair for optimal SQLite concurrency with separate reader/writer pools.
func NewService(cfg config.Config, dbPair DBPair, logger *log.Logger, events EventRecorder) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		cfg:    cfg,
		logger: logger,
		repo:   NewRepository(dbPair),
		events: events,
	}
}

// RecordContact registers a network contact from a device.
func (s *Service) RecordContact(input ContactInput) (*Device, error) {
	device, err := s.repo.RecordContact(input)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Record(input.DeviceID, "contact", "device contact from "+input.IPAddress)
	}
	return device, nil
}

// Pair assigns a device to an account.
func (s *Service) Pair(input PairInput) (*Device, error) {
	device, err := s.repo.Pair(input)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("device %s paired to account %s", input.DeviceID, input.AccountID)
	if s.events != nil {
		s.events.Record(input.DeviceID, "paired", "device paired to account "+input.AccountID)
	}
	return device, nil
}

// Unpair releases a device from its owning account. Returns nil if the
// device is unknown.
func (s *Service) Unpair(deviceID string) (*Device, error) {
	device, err := s.repo.Unpair(deviceID)
	if err != nil {
		return nil, err
	}
	if device != nil && s.events != nil {
		s.events.Record(deviceID, "unpaired", "device unpaired")
	}
	return device, nil
}

// Get retrieves a device by id, or nil.
func (s *Service) Get(deviceID string) (*Device, error) {
	return s.repo.GetByID(deviceID)
}

// ListByAccount retrieves the devices owned by an account.
func (s *Service) ListByAccount(accountID string) ([]Device, error) {
	return s.repo.ListByAccount(accountID)
}

// Count returns the number of registered devices.
func (s *Service) Count() (int, error) {
	return s.repo.Count()
}
