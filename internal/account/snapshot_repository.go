package account

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

// SnapshotRepository persists one opaque per-account document. A snapshot
// either exists or it does not; there is no partial state and no TTL.
type SnapshotRepository struct {
	reader *sql.DB
	writer *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(dbPair DBPair) *SnapshotRepository {
	return &SnapshotRepository{reader: dbPair.Reader(), writer: dbPair.Writer()}
}

// Get returns the raw cached document for an account and whether it exists.
func (r *SnapshotRepository) Get(accountID string) ([]byte, bool, error) {
	var raw []byte
	err := r.reader.QueryRow(`
		SELECT raw_document FROM account_snapshots WHERE account_id = ?
	`, accountID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// Put stores the raw document, overwriting any previous snapshot wholesale.
// Concurrent writers for the same account are fine: last writer wins.
func (r *SnapshotRepository) Put(accountID string, raw []byte) error {
	_, err := r.writer.Exec(`
		INSERT INTO account_snapshots (account_id, raw_document, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			raw_document = excluded.raw_document,
			fetched_at = excluded.fetched_at
	`, accountID, raw, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Count returns the number of cached snapshots.
func (r *SnapshotRepository) Count() (int, error) {
	var count int
	err := r.reader.QueryRow("SELECT COUNT(*) FROM account_snapshots").Scan(&count)
	return count, err
}
