package presets

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

// Repository handles database operations for presets.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new presets Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

const presetColumns = `preset_id, account_id, device_id, button_number, location, source_id, content_item_type, container_art, name, created_at, updated_at, revision`

// Assign saves content to a favorite button. Two independent facts drive the
// decision: an existing preset with the same content identity regardless of
// button (A), and an existing preset occupying the requested button (B).
//
//  1. A exists at the requested button: update display metadata in place.
//  2. A exists at another button: delete B if present, then move A.
//  3. Only B exists: overwrite B's content and metadata, keeping its id.
//  4. Neither exists: insert a new row.
//
// The precedence matters: a same-content same-button save must never be
// treated as a replace-at-button. The whole decision runs in one write
// transaction so concurrent saves for the same slot serialize.
func (r *Repository) Assign(input AssignInput) (*Preset, error) {
	tx, err := r.writer.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	byContent, err := scanPreset(tx.QueryRow(`
		SELECT `+presetColumns+`
		FROM presets
		WHERE account_id = ? AND device_id = ? AND location = ? AND source_id = ? AND content_item_type = ?
	`, input.AccountID, input.DeviceID, input.Location, input.SourceID, input.ContentItemType))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	byButton, err := scanPreset(tx.QueryRow(`
		SELECT `+presetColumns+`
		FROM presets
		WHERE account_id = ? AND device_id = ? AND button_number = ?
	`, input.AccountID, input.DeviceID, input.ButtonNumber))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := nowISO()
	var presetID string

	switch {
	case byContent != nil && byContent.ButtonNumber == input.ButtonNumber:
		// Re-saving the same favorite at the same button: metadata only.
		presetID = byContent.PresetID
		_, err = tx.Exec(`
			UPDATE presets
			SET container_art = ?, name = ?, updated_at = ?, revision = revision + 1
			WHERE preset_id = ?
		`, input.ContainerArt, input.Name, now, presetID)
		if err != nil {
			return nil, err
		}

	case byContent != nil:
		// Move: the displaced occupant of the target button is deleted
		// outright before the content moves onto it.
		if byButton != nil {
			if _, err = tx.Exec(`DELETE FROM presets WHERE preset_id = ?`, byButton.PresetID); err != nil {
				return nil, err
			}
		}
		presetID = byContent.PresetID
		_, err = tx.Exec(`
			UPDATE presets
			SET button_number = ?, container_art = ?, name = ?, updated_at = ?, revision = revision + 1
			WHERE preset_id = ?
		`, input.ButtonNumber, input.ContainerArt, input.Name, now, presetID)
		if err != nil {
			return nil, err
		}

	case byButton != nil:
		// Replace: keep the occupant's id and created_at, overwrite the rest.
		presetID = byButton.PresetID
		_, err = tx.Exec(`
			UPDATE presets
			SET location = ?, source_id = ?, content_item_type = ?, container_art = ?, name = ?, updated_at = ?, revision = revision + 1
			WHERE preset_id = ?
		`, input.Location, input.SourceID, input.ContentItemType, input.ContainerArt, input.Name, now, presetID)
		if err != nil {
			return nil, err
		}

	default:
		presetID = uuid.New().String()
		_, err = tx.Exec(`
			INSERT INTO presets (preset_id, account_id, device_id, button_number, location, source_id, content_item_type, container_art, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, presetID, input.AccountID, input.DeviceID, input.ButtonNumber, input.Location, input.SourceID, input.ContentItemType, input.ContainerArt, input.Name, now, now)
		if err != nil {
			return nil, err
		}
	}

	saved, err := scanPreset(tx.QueryRow(`
		SELECT `+presetColumns+`
		FROM presets
		WHERE preset_id = ?
	`, presetID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetByButton retrieves the preset occupying a button, or nil.
func (r *Repository) GetByButton(accountID, deviceID string, buttonNumber int) (*Preset, error) {
	preset, err := scanPreset(r.reader.QueryRow(`
		SELECT `+presetColumns+`
		FROM presets
		WHERE account_id = ? AND device_id = ? AND button_number = ?
	`, accountID, deviceID, buttonNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return preset, nil
}

// List retrieves a device's presets ordered by button number.
func (r *Repository) List(accountID, deviceID string) ([]Preset, error) {
	rows, err := r.reader.Query(`
		SELECT `+presetColumns+`
		FROM presets
		WHERE account_id = ? AND device_id = ?
		ORDER BY button_number ASC
	`, accountID, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		preset, err := scanPresetRows(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *preset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if presets == nil {
		presets = []Preset{}
	}
	return presets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row *sql.Row) (*Preset, error) {
	return scanPresetFrom(row)
}

func scanPresetRows(rows *sql.Rows) (*Preset, error) {
	return scanPresetFrom(rows)
}

func scanPresetFrom(scanner rowScanner) (*Preset, error) {
	var preset Preset
	var createdAt, updatedAt string
	err := scanner.Scan(
		&preset.PresetID,
		&preset.AccountID,
		&preset.DeviceID,
		&preset.ButtonNumber,
		&preset.Location,
		&preset.SourceID,
		&preset.ContentItemType,
		&preset.ContainerArt,
		&preset.Name,
		&createdAt,
		&updatedAt,
		&preset.Revision,
	)
	if err != nil {
		return nil, err
	}
	preset.CreatedAt = parseTime(createdAt)
	preset.UpdatedAt = parseTime(updatedAt)
	return &preset, nil
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
