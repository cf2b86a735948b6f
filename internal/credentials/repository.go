package credentials

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

// Repository handles database operations for provider credentials.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new credentials Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

// Append writes a new credential record. Existing records for the same user
// are left in place; readers pick the newest by created_at.
func (r *Repository) Append(input AppendInput) (*Record, error) {
	credentialID := uuid.New().String()

	createdAt := time.Now().UTC()
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	_, err := r.writer.Exec(`
		INSERT INTO provider_credentials (credential_id, external_user_id, display_name, refresh_token, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, credentialID, input.ExternalUserID, input.DisplayName, input.RefreshToken, createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return &Record{
		CredentialID:   credentialID,
		ExternalUserID: input.ExternalUserID,
		DisplayName:    input.DisplayName,
		RefreshToken:   input.RefreshToken,
		CreatedAt:      createdAt,
	}, nil
}

// Latest returns the newest credential record for an external user, or nil.
func (r *Repository) Latest(externalUserID string) (*Record, error) {
	row := r.reader.QueryRow(`
		SELECT credential_id, external_user_id, display_name, refresh_token, created_at
		FROM provider_credentials
		WHERE external_user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, externalUserID)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// LatestAll returns the newest credential record per external user, keyed by
// external user id. The reconciler uses this to patch snapshot sources in one
// pass.
func (r *Repository) LatestAll() (map[string]Record, error) {
	rows, err := r.reader.Query(`
		SELECT credential_id, external_user_id, display_name, refresh_token, created_at
		FROM provider_credentials
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[string]Record)
	for rows.Next() {
		var record Record
		var createdAt string
		if err := rows.Scan(&record.CredentialID, &record.ExternalUserID, &record.DisplayName, &record.RefreshToken, &createdAt); err != nil {
			return nil, err
		}
		record.CreatedAt = parseTime(createdAt)
		// Ascending scan: later rows overwrite earlier ones.
		latest[record.ExternalUserID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return latest, nil
}

// ListByUser returns all credential records for a user, newest first.
func (r *Repository) ListByUser(externalUserID string) ([]Record, error) {
	rows, err := r.reader.Query(`
		SELECT credential_id, external_user_id, display_name, refresh_token, created_at
		FROM provider_credentials
		WHERE external_user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, externalUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var createdAt string
		if err := rows.Scan(&record.CredentialID, &record.ExternalUserID, &record.DisplayName, &record.RefreshToken, &createdAt); err != nil {
			return nil, err
		}
		record.CreatedAt = parseTime(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var record Record
	var createdAt string
	err := row.Scan(&record.CredentialID, &record.ExternalUserID, &record.DisplayName, &record.RefreshToken, &createdAt)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = parseTime(createdAt)
	return &record, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, _ = time.Parse("2006-01-02 15:04:05", value)
	}
	return t
}
