package pairing

import "log"

// EventRecorder receives device activity events.
type EventRecorder interface {
	Record(deviceID, eventType, message string)
}

// Service enforces the stereo-pair invariants over the group store.
type Service struct {
	logger *log.Logger
	repo   *Repository
	events EventRecorder
}

// NewService creates a new pairing service.
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

// CreateGroup pairs two devices into a stereo group.
func (s *Service) CreateGroup(input CreateGroupInput) (*DeviceGroup, error) {
	group, err := s.repo.Create(input)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("group %s created: %s + %s (master %s)", group.GroupID, group.LeftDeviceID, group.RightDeviceID, group.MasterDeviceID)
	if s.events != nil {
		s.events.Record(group.LeftDeviceID, "grouped", "joined group "+group.GroupID)
		s.events.Record(group.RightDeviceID, "grouped", "joined group "+group.GroupID)
	}
	return group, nil
}

// UpdateGroup changes a group's name and/or master.
func (s *Service) UpdateGroup(accountID, groupID string, input UpdateGroupInput) (*DeviceGroup, error) {
	return s.repo.Update(accountID, groupID, input)
}

// DeleteGroup destroys a group under the owning account.
func (s *Service) DeleteGroup(accountID, groupID string) error {
	group, err := s.repo.GetByID(accountID, groupID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(accountID, groupID); err != nil {
		return err
	}

	if group != nil && s.events != nil {
		s.events.Record(group.LeftDeviceID, "ungrouped", "left group "+groupID)
		s.events.Record(group.RightDeviceID, "ungrouped", "left group "+groupID)
	}
	return nil
}

// GetGroup retrieves a group under an account, or nil.
func (s *Service) GetGroup(accountID, groupID string) (*DeviceGroup, error) {
	return s.repo.GetByID(accountID, groupID)
}

// LookupByDevice finds the account's group containing a device, or nil.
func (s *Service) LookupByDevice(accountID, deviceID string) (*DeviceGroup, error) {
	return s.repo.LookupByDevice(accountID, deviceID)
}

// ListGroups retrieves an account's groups.
func (s *Service) ListGroups(accountID string) ([]DeviceGroup, error) {
	return s.repo.ListByAccount(accountID)
}
