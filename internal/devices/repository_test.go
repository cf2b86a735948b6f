package devices

import (
	"path/filepath"
	"testing"

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

func TestRecordContact_FirstContactCreates(t *testing.T) {
	repo := setupTestDB(t)

	device, err := repo.RecordContact(ContactInput{DeviceID: "B0:1234", IPAddress: "192.168.1.40"})
	require.NoError(t, err)
	require.Equal(t, "B0:1234", device.DeviceID)
	require.Equal(t, "192.168.1.40", device.IPAddress)
	require.Equal(t, UnpairedAccountID, device.AccountID)
	require.Equal(t, 1, device.Revision)
	require.False(t, device.FirstSeenAt.IsZero())
}

func TestRecordContact_RepeatContactTouches(t *testing.T) {
	repo := setupTestDB(t)

	first, err := repo.RecordContact(ContactInput{DeviceID: "B0:1234", IPAddress: "192.168.1.40"})
	require.NoError(t, err)

	second, err := repo.RecordContact(ContactInput{DeviceID: "B0:1234", IPAddress: "10.0.0.9"})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.9", second.IPAddress)
	require.Equal(t, first.Revision+1, second.Revision)
	require.Equal(t, first.FirstSeenAt, second.FirstSeenAt)
}

func TestRecordContact_DoesNotResetOwnership(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Pair(PairInput{DeviceID: "B0:1234", AccountID: "acct-1", DisplayName: "Kitchen"})
	require.NoError(t, err)

	device, err := repo.RecordContact(ContactInput{DeviceID: "B0:1234", IPAddress: "10.0.0.9"})
	require.NoError(t, err)
	require.Equal(t, "acct-1", device.AccountID)
}

func TestPairAndUnpair(t *testing.T) {
	repo := setupTestDB(t)

	device, err := repo.Pair(PairInput{DeviceID: "B0:1234", AccountID: "acct-1", DisplayName: "Kitchen"})
	require.NoError(t, err)
	require.Equal(t, "acct-1", device.AccountID)
	require.Equal(t, "Kitchen", device.DisplayName)

	unpaired, err := repo.Unpair("B0:1234")
	require.NoError(t, err)
	require.NotNil(t, unpaired)
	require.Equal(t, UnpairedAccountID, unpaired.AccountID)
	// Registry row survives unpairing.
	require.Equal(t, "Kitchen", unpaired.DisplayName)
}

func TestUnpair_UnknownDevice(t *testing.T) {
	repo := setupTestDB(t)

	device, err := repo.Unpair("B0:none")
	require.NoError(t, err)
	require.Nil(t, device)
}

func TestListByAccount(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Pair(PairInput{DeviceID: "B0:1", AccountID: "acct-1", DisplayName: "Kitchen"})
	require.NoError(t, err)
	_, err = repo.Pair(PairInput{DeviceID: "B0:2", AccountID: "acct-1", DisplayName: "Bedroom"})
	require.NoError(t, err)
	_, err = repo.Pair(PairInput{DeviceID: "B0:3", AccountID: "acct-2", DisplayName: "Office"})
	require.NoError(t, err)

	owned, err := repo.ListByAccount("acct-1")
	require.NoError(t, err)
	require.Len(t, owned, 2)

	count, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
