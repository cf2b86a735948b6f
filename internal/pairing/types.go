package pairing

import "time"

// DeviceGroup is one stereo pair. A device may appear as left or right in at
// most one group system-wide, and the master must be one of the two members.
// Left and right are immutable after creation.
type DeviceGroup struct {
	GroupID        string    `json:"group_id"`
	AccountID      string    `json:"account_id"`
	MasterDeviceID string    `json:"master_device_id"`
	Name           string    `json:"name"`
	LeftDeviceID   string    `json:"left_device_id"`
	RightDeviceID  string    `json:"right_device_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Revision       int       `json:"revision"`
}

// CreateGroupInput holds one pairing request.
type CreateGroupInput struct {
	AccountID      string
	MasterDeviceID string
	LeftDeviceID   string
	RightDeviceID  string
	Name           string
}

// UpdateGroupInput holds an update to a group's mutable fields.
type UpdateGroupInput struct {
	MasterDeviceID *string
	Name           *string
}

// InvalidRoleError reports a master device outside the group's members.
type InvalidRoleError struct {
	DeviceID string
}

func (e *InvalidRoleError) Error() string {
	return "master device must be the left or right member: " + e.DeviceID
}

// DeviceBusyError reports the first device found to already belong to a
// group. The busy check runs master, then left, then right.
type DeviceBusyError struct {
	DeviceID string
}

func (e *DeviceBusyError) Error() string {
	return "device already belongs to a group: " + e.DeviceID
}

// GroupNotFoundError reports a missing group. Lookups under the wrong
// account report not-found, never forbidden.
type GroupNotFoundError struct {
	GroupID string
}

func (e *GroupNotFoundError) Error() string {
	return "group not found: " + e.GroupID
}
