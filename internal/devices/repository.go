package devices

import (
	"database/sql"
	"errors"
	"time"
)

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}

// Repository handles database operations for the device registry.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new devices Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

// RecordContact creates the device on first contact or touches last_seen_at
// and ip_address on every subsequent one. The upsert runs in one statement on
// the single writer connection so concurrent contacts for the same device
// serialize cleanly.
func (r *Repository) RecordContact(input ContactInput) (*Device, error) {
	now := nowISO()

	_, err := r.writer.Exec(`
		INSERT INTO devices (device_id, ip_address, account_id, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			ip_address = excluded.ip_address,
			last_seen_at = excluded.last_seen_at,
			revision = revision + 1
	`, input.DeviceID, input.IPAddress, UnpairedAccountID, now, now)
	if err != nil {
		return nil, err
	}

	return r.GetByID(input.DeviceID)
}

// Pair assigns the device to an account and sets its display name, creating
// the registry row if this is the first time the device is seen.
func (r *Repository) Pair(input PairInput) (*Device, error) {
	now := nowISO()

	_, err := r.writer.Exec(`
		INSERT INTO devices (device_id, display_name, ip_address, account_id, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			display_name = excluded.display_name,
			account_id = excluded.account_id,
			last_seen_at = excluded.last_seen_at,
			revision = revision + 1
	`, input.DeviceID, input.DisplayName, input.IPAddress, input.AccountID, now, now)
	if err != nil {
		return nil, err
	}

	return r.GetByID(input.DeviceID)
}

// Unpair sets the device's ownership to the unpaired sentinel. The row is
// kept: pairing loss is not deletion.
func (r *Repository) Unpair(deviceID string) (*Device, error) {
	result, err := r.writer.Exec(`
		UPDATE devices
		SET account_id = ?, last_seen_at = ?, revision = revision + 1
		WHERE device_id = ?
	`, UnpairedAccountID, nowISO(), deviceID)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(deviceID)
}

// GetByID retrieves a device by its natural key, or nil.
func (r *Repository) GetByID(deviceID string) (*Device, error) {
	row := r.reader.QueryRow(`
		SELECT device_id, display_name, ip_address, account_id, first_seen_at, last_seen_at, revision
		FROM devices
		WHERE device_id = ?
	`, deviceID)

	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return device, nil
}

// ListByAccount retrieves the devices owned by an account, oldest first.
func (r *Repository) ListByAccount(accountID string) ([]Device, error) {
	rows, err := r.reader.Query(`
		SELECT device_id, display_name, ip_address, account_id, first_seen_at, last_seen_at, revision
		FROM devices
		WHERE account_id = ?
		ORDER BY first_seen_at ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var device Device
		var firstSeen, lastSeen string
		if err := rows.Scan(&device.DeviceID, &device.DisplayName, &device.IPAddress, &device.AccountID, &firstSeen, &lastSeen, &device.Revision); err != nil {
			return nil, err
		}
		device.FirstSeenAt = parseTime(firstSeen)
		device.LastSeenAt = parseTime(lastSeen)
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// Count returns the number of registered devices.
func (r *Repository) Count() (int, error) {
	var count int
	err := r.reader.QueryRow("SELECT COUNT(*) FROM devices").Scan(&count)
	return count, err
}

func scanDevice(row *sql.Row) (*Device, error) {
	var device Device
	var firstSeen, lastSeen string
	err := row.Scan(&device.DeviceID, &device.DisplayName, &device.IPAddress, &device.AccountID, &firstSeen, &lastSeen, &device.Revision)
	if err != nil {
		return nil, err
	}
	device.FirstSeenAt = parseTime(firstSeen)
	device.LastSeenAt = parseTime(lastSeen)
	return &device, nil
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
