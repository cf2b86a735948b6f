package pairing

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}

// Repository handles database operations for device groups.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new pairing Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

const groupColumns = `group_id, account_id, master_device_id, name, left_device_id, right_device_id, created_at, updated_at, revision`

// Create pairs two devices into a stereo group. The master role check runs
// first; the busy check then evaluates master, left, right in order against
// every group in the system, and the first offender is reported. Both checks
// and the insert share one write transaction so concurrent pairings for the
// same device serialize.
func (r *Repository) Create(input CreateGroupInput) (*DeviceGroup, error) {
	if input.MasterDeviceID != input.LeftDeviceID && input.MasterDeviceID != input.RightDeviceID {
		return nil, &InvalidRoleError{DeviceID: input.MasterDeviceID}
	}

	tx, err := r.writer.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	for _, deviceID := range []string{input.MasterDeviceID, input.LeftDeviceID, input.RightDeviceID} {
		var groupID string
		err := tx.QueryRow(`
			SELECT group_id FROM device_groups
			WHERE left_device_id = ? OR right_device_id = ?
		`, deviceID, deviceID).Scan(&groupID)
		if err == nil {
			return nil, &DeviceBusyError{DeviceID: deviceID}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	groupID := uuid.New().String()
	now := nowISO()

	_, err = tx.Exec(`
		INSERT INTO device_groups (group_id, account_id, master_device_id, name, left_device_id, right_device_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, groupID, input.AccountID, input.MasterDeviceID, input.Name, input.LeftDeviceID, input.RightDeviceID, now, now)
	if err != nil {
		return nil, err
	}

	group, err := scanGroup(tx.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups WHERE group_id = ?
	`, groupID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return group, nil
}

// Update changes a group's name and/or master. Left and right members are
// immutable; a new master must be one of them.
func (r *Repository) Update(accountID, groupID string, input UpdateGroupInput) (*DeviceGroup, error) {
	tx, err := r.writer.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	existing, err := scanGroup(tx.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups
		WHERE group_id = ? AND account_id = ?
	`, groupID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &GroupNotFoundError{GroupID: groupID}
		}
		return nil, err
	}

	master := existing.MasterDeviceID
	if input.MasterDeviceID != nil {
		master = *input.MasterDeviceID
		if master != existing.LeftDeviceID && master != existing.RightDeviceID {
			return nil, &InvalidRoleError{DeviceID: master}
		}
	}

	name := existing.Name
	if input.Name != nil {
		name = *input.Name
	}

	_, err = tx.Exec(`
		UPDATE device_groups
		SET master_device_id = ?, name = ?, updated_at = ?, revision = revision + 1
		WHERE group_id = ?
	`, master, name, nowISO(), groupID)
	if err != nil {
		return nil, err
	}

	group, err := scanGroup(tx.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups WHERE group_id = ?
	`, groupID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete destroys a group, scoped to the owning account.
func (r *Repository) Delete(accountID, groupID string) error {
	result, err := r.writer.Exec(`
		DELETE FROM device_groups WHERE group_id = ? AND account_id = ?
	`, groupID, accountID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &GroupNotFoundError{GroupID: groupID}
	}
	return nil
}

// GetByID retrieves a group under an account, or nil.
func (r *Repository) GetByID(accountID, groupID string) (*DeviceGroup, error) {
	group, err := scanGroup(r.reader.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups
		WHERE group_id = ? AND account_id = ?
	`, groupID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

// LookupByDevice finds the group containing a device as left or right,
// scoped to the given account. Returns nil when the device is ungrouped.
func (r *Repository) LookupByDevice(accountID, deviceID string) (*DeviceGroup, error) {
	group, err := scanGroup(r.reader.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups
		WHERE account_id = ? AND (left_device_id = ? OR right_device_id = ?)
	`, accountID, deviceID, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

// LookupByDeviceGlobal finds the group containing a device in any account.
// The create-time busy check runs the same query inside its transaction;
// this variant is the out-of-band read for it.
func (r *Repository) LookupByDeviceGlobal(deviceID string) (*DeviceGroup, error) {
	group, err := scanGroup(r.reader.QueryRow(`
		SELECT `+groupColumns+` FROM device_groups
		WHERE left_device_id = ? OR right_device_id = ?
	`, deviceID, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

// ListByAccount retrieves an account's groups, oldest first.
func (r *Repository) ListByAccount(accountID string) ([]DeviceGroup, error) {
	rows, err := r.reader.Query(`
		SELECT `+groupColumns+` FROM device_groups
		WHERE account_id = ?
		ORDER BY created_at ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []DeviceGroup
	for rows.Next() {
		var group DeviceGroup
		var createdAt, updatedAt string
		if err := rows.Scan(&group.GroupID, &group.AccountID, &group.MasterDeviceID, &group.Name, &group.LeftDeviceID, &group.RightDeviceID, &createdAt, &updatedAt, &group.Revision); err != nil {
			return nil, err
		}
		group.CreatedAt = parseTime(createdAt)
		group.UpdatedAt = parseTime(updatedAt)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if groups == nil {
		groups = []DeviceGroup{}
	}
	return groups, nil
}

func scanGroup(row *sql.Row) (*DeviceGroup, error) {
	var group DeviceGroup
	var createdAt, updatedAt string
	err := row.Scan(
		&group.GroupID,
		&group.AccountID,
		&group.MasterDeviceID,
		&group.Name,
		&group.LeftDeviceID,
		&group.RightDeviceID,
		&createdAt,
		&updatedAt,
		&group.Revision,
	)
	if err != nil {
		return nil, err
	}
	group.CreatedAt = parseTime(createdAt)
	group.UpdatedAt = parseTime(updatedAt)
	return &group, nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, _ = time.Parse("2006-01-02 15:04:05", value)
	}
	return t
}
