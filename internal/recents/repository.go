package recents

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

// Repository handles database operations for recents.
// Uses separate reader/writer connections for optimal SQLite concurrency.
type Repository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewRepository creates a new recents Repository.
func NewRepository(dbPair DBPair) *Repository {
	return &Repository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

const recentColumns = `recent_id, account_id, device_id, location, source_id, content_item_type, name, last_played_at, created_at, updated_at`

// RecordPlay merges a playback report into the account's history. A row with
// the same dedup key is updated in place (latest player wins, no eviction
// check). A new row is inserted and then the account is trimmed back to the
// cap, oldest last_played_at first. Runs in one write transaction.
func (r *Repository) RecordPlay(input RecordPlayInput) (*Recent, error) {
	tx, err := r.writer.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	playedAt := time.Now().UTC()
	if input.LastPlayedAt != nil {
		playedAt = input.LastPlayedAt.UTC()
	}
	now := nowISO()

	existing, err := scanRecent(tx.QueryRow(`
		SELECT `+recentColumns+`
		FROM recents
		WHERE account_id = ? AND location = ? AND source_id = ?
	`, input.AccountID, input.Location, input.SourceID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var recentID string
	if existing != nil {
		recentID = existing.RecentID
		_, err = tx.Exec(`
			UPDATE recents
			SET device_id = ?, content_item_type = ?, name = ?, last_played_at = ?, updated_at = ?
			WHERE recent_id = ?
		`, input.DeviceID, input.ContentItemType, input.Name, playedAt.Format(time.RFC3339), now, recentID)
		if err != nil {
			return nil, err
		}
	} else {
		recentID = uuid.New().String()
		_, err = tx.Exec(`
			INSERT INTO recents (recent_id, account_id, device_id, location, source_id, content_item_type, name, last_played_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, recentID, input.AccountID, input.DeviceID, input.Location, input.SourceID, input.ContentItemType, input.Name, playedAt.Format(time.RFC3339), now, now)
		if err != nil {
			return nil, err
		}

		// Trim the account back to the cap. rowid breaks last_played_at ties
		// so the delete is deterministic.
		_, err = tx.Exec(`
			DELETE FROM recents
			WHERE account_id = ?
			  AND recent_id NOT IN (
				SELECT recent_id FROM recents
				WHERE account_id = ?
				ORDER BY last_played_at DESC, rowid DESC
				LIMIT ?
			  )
		`, input.AccountID, input.AccountID, MaxPerAccount)
		if err != nil {
			return nil, err
		}
	}

	saved, err := scanRecent(tx.QueryRow(`
		SELECT `+recentColumns+`
		FROM recents
		WHERE recent_id = ?
	`, recentID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// List retrieves an account's recents, newest play first, at most the cap.
func (r *Repository) List(accountID string) ([]Recent, error) {
	rows, err := r.reader.Query(`
		SELECT `+recentColumns+`
		FROM recents
		WHERE account_id = ?
		ORDER BY last_played_at DESC, rowid DESC
		LIMIT ?
	`, accountID, MaxPerAccount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recents []Recent
	for rows.Next() {
		recent, err := scanRecentRows(rows)
		if err != nil {
			return nil, err
		}
		recents = append(recents, *recent)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if recents == nil {
		recents = []Recent{}
	}
	return recents, nil
}

// CountByAccount returns the number of stored recents for an account.
func (r *Repository) CountByAccount(accountID string) (int, error) {
	var count int
	err := r.reader.QueryRow("SELECT COUNT(*) FROM recents WHERE account_id = ?", accountID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecent(row *sql.Row) (*Recent, error) {
	return scanRecentFrom(row)
}

func scanRecentRows(rows *sql.Rows) (*Recent, error) {
	return scanRecentFrom(rows)
}

func scanRecentFrom(scanner rowScanner) (*Recent, error) {
	var recent Recent
	var lastPlayed, createdAt, updatedAt string
	err := scanner.Scan(
		&recent.RecentID,
		&recent.AccountID,
		&recent.DeviceID,
		&recent.Location,
		&recent.SourceID,
		&recent.ContentItemType,
		&recent.Name,
		&lastPlayed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	recent.LastPlayedAt = parseTime(lastPlayed)
	recent.CreatedAt = parseTime(createdAt)
	recent.UpdatedAt = parseTime(updatedAt)
	return &recent, nil
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
