package recents

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/soundtouchd/soundtouch-cloud/internal/db"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	dbPair, err := db.Init(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { dbPair.Close() })

	return NewRepository(dbPair)
}

func playAt(n int, playedAt time.Time) RecordPlayInput {
	return RecordPlayInput{
		AccountID:       "acct-1",
		DeviceID:        "dev-1",
		Location:        fmt.Sprintf("track:%d", n),
		SourceID:        "spotify-user",
		ContentItemType: "tracklisturl",
		Name:            fmt.Sprintf("Track %d", n),
		LastPlayedAt:    &playedAt,
	}
}

func TestRecordPlay_Insert(t *testing.T) {
	repo := setupTestDB(t)

	recent, err := repo.RecordPlay(playAt(1, time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, recent.RecentID)
	require.Equal(t, "track:1", recent.Location)
	require.Equal(t, "Track 1", recent.Name)
}

func TestRecordPlay_DedupUpdatesInPlace(t *testing.T) {
	repo := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	first, err := repo.RecordPlay(playAt(1, base))
	require.NoError(t, err)

	// Same content played again from a different speaker keeps the row.
	input := playAt(1, base.Add(time.Hour))
	input.DeviceID = "dev-2"
	input.Name = "Track 1 (remaster)"

	second, err := repo.RecordPlay(input)
	require.NoError(t, err)
	require.Equal(t, first.RecentID, second.RecentID)
	require.Equal(t, "dev-2", second.DeviceID)
	require.Equal(t, "Track 1 (remaster)", second.Name)
	require.True(t, second.LastPlayedAt.After(first.LastPlayedAt))

	count, err := repo.CountByAccount("acct-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecordPlay_TrimsToCap(t *testing.T) {
	repo := setupTestDB(t)

	base := time.Now().Add(-100 * time.Hour)
	for n := 1; n <= MaxPerAccount+5; n++ {
		_, err := repo.RecordPlay(playAt(n, base.Add(time.Duration(n)*time.Hour)))
		require.NoError(t, err)
	}

	count, err := repo.CountByAccount("acct-1")
	require.NoError(t, err)
	require.Equal(t, MaxPerAccount, count)

	// The five oldest plays are gone; the newest survives at the top.
	recents, err := repo.List("acct-1")
	require.NoError(t, err)
	require.Len(t, recents, MaxPerAccount)
	require.Equal(t, fmt.Sprintf("track:%d", MaxPerAccount+5), recents[0].Location)
	for _, recent := range recents {
		require.NotEqual(t, "track:1", recent.Location)
		require.NotEqual(t, "track:5", recent.Location)
	}
}

func TestRecordPlay_DedupDoesNotEvict(t *testing.T) {
	repo := setupTestDB(t)

	base := time.Now().Add(-100 * time.Hour)
	for n := 1; n <= MaxPerAccount; n++ {
		_, err := repo.RecordPlay(playAt(n, base.Add(time.Duration(n)*time.Hour)))
		require.NoError(t, err)
	}

	// Replaying existing content at the cap must not trim anything.
	_, err := repo.RecordPlay(playAt(7, time.Now()))
	require.NoError(t, err)

	count, err := repo.CountByAccount("acct-1")
	require.NoError(t, err)
	require.Equal(t, MaxPerAccount, count)
}

func TestList_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	for n := 1; n <= 3; n++ {
		_, err := repo.RecordPlay(playAt(n, base.Add(time.Duration(n)*time.Minute)))
		require.NoError(t, err)
	}

	recents, err := repo.List("acct-1")
	require.NoError(t, err)
	require.Len(t, recents, 3)
	require.Equal(t, "track:3", recents[0].Location)
	require.Equal(t, "track:2", recents[1].Location)
	require.Equal(t, "track:1", recents[2].Location)
}

func TestList_ScopedByAccount(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.RecordPlay(playAt(1, time.Now()))
	require.NoError(t, err)

	other := playAt(2, time.Now())
	other.AccountID = "acct-2"
	_, err = repo.RecordPlay(other)
	require.NoError(t, err)

	recents, err := repo.List("acct-1")
	require.NoError(t, err)
	require.Len(t, recents, 1)
	require.Equal(t, "track:1", recents[0].Location)
}
