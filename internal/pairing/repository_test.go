package pairing

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

func livingRoomPair() CreateGroupInput {
	return CreateGroupInput{
		AccountID:      "acct-1",
		MasterDeviceID: "dev-left",
		LeftDeviceID:   "dev-left",
		RightDeviceID:  "dev-right",
		Name:           "Living Room",
	}
}

func TestCreate(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)
	require.NotEmpty(t, group.GroupID)
	require.Equal(t, "dev-left", group.MasterDeviceID)
	require.Equal(t, "dev-left", group.LeftDeviceID)
	require.Equal(t, "dev-right", group.RightDeviceID)
	require.Equal(t, "Living Room", group.Name)
	require.Equal(t, 1, group.Revision)
}

func TestCreate_MasterMustBeMember(t *testing.T) {
	repo := setupTestDB(t)

	input := livingRoomPair()
	input.MasterDeviceID = "dev-elsewhere"

	_, err := repo.Create(input)
	var roleErr *InvalidRoleError
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "dev-elsewhere", roleErr.DeviceID)
}

func TestCreate_BusyDeviceRejected(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	// dev-right is taken; pairing it again must fail whichever side it is on.
	input := CreateGroupInput{
		AccountID:      "acct-1",
		MasterDeviceID: "dev-kitchen",
		LeftDeviceID:   "dev-kitchen",
		RightDeviceID:  "dev-right",
		Name:           "Kitchen",
	}

	_, err = repo.Create(input)
	var busyErr *DeviceBusyError
	require.ErrorAs(t, err, &busyErr)
	require.Equal(t, "dev-right", busyErr.DeviceID)
}

func TestCreate_BusyCheckReportsMasterFirst(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	// Both members are busy. The master is checked first, so it is the one
	// reported even though the right member is busy too.
	input := CreateGroupInput{
		AccountID:      "acct-1",
		MasterDeviceID: "dev-right",
		LeftDeviceID:   "dev-right",
		RightDeviceID:  "dev-left",
		Name:           "Swapped",
	}

	_, err = repo.Create(input)
	var busyErr *DeviceBusyError
	require.ErrorAs(t, err, &busyErr)
	require.Equal(t, "dev-right", busyErr.DeviceID)
}

func TestCreate_ExclusivityIsGlobal(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	// Another account cannot claim a device already paired elsewhere.
	input := CreateGroupInput{
		AccountID:      "acct-2",
		MasterDeviceID: "dev-left",
		LeftDeviceID:   "dev-left",
		RightDeviceID:  "dev-other",
		Name:           "Den",
	}

	_, err = repo.Create(input)
	var busyErr *DeviceBusyError
	require.ErrorAs(t, err, &busyErr)
	require.Equal(t, "dev-left", busyErr.DeviceID)
}

func TestUpdate_SwapMaster(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	master := "dev-right"
	updated, err := repo.Update("acct-1", group.GroupID, UpdateGroupInput{MasterDeviceID: &master})
	require.NoError(t, err)
	require.Equal(t, "dev-right", updated.MasterDeviceID)
	require.Equal(t, group.Revision+1, updated.Revision)
	// Members are untouched.
	require.Equal(t, "dev-left", updated.LeftDeviceID)
	require.Equal(t, "dev-right", updated.RightDeviceID)
}

func TestUpdate_MasterOutsideGroupRejected(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	master := "dev-elsewhere"
	_, err = repo.Update("acct-1", group.GroupID, UpdateGroupInput{MasterDeviceID: &master})
	var roleErr *InvalidRoleError
	require.ErrorAs(t, err, &roleErr)
}

func TestUpdate_Rename(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	name := "Lounge"
	updated, err := repo.Update("acct-1", group.GroupID, UpdateGroupInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Lounge", updated.Name)
	require.Equal(t, group.MasterDeviceID, updated.MasterDeviceID)
}

func TestUpdate_WrongAccountIsNotFound(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	name := "Hijacked"
	_, err = repo.Update("acct-2", group.GroupID, UpdateGroupInput{Name: &name})
	var notFound *GroupNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDelete(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	require.NoError(t, repo.Delete("acct-1", group.GroupID))

	fetched, err := repo.GetByID("acct-1", group.GroupID)
	require.NoError(t, err)
	require.Nil(t, fetched)

	// Members are free again.
	_, err = repo.Create(livingRoomPair())
	require.NoError(t, err)
}

func TestDelete_WrongAccountIsNotFound(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	err = repo.Delete("acct-2", group.GroupID)
	var notFound *GroupNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestLookupByDevice(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	for _, deviceID := range []string{"dev-left", "dev-right"} {
		found, err := repo.LookupByDevice("acct-1", deviceID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, group.GroupID, found.GroupID)
	}

	none, err := repo.LookupByDevice("acct-1", "dev-solo")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestLookupByDeviceGlobal(t *testing.T) {
	repo := setupTestDB(t)

	group, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	// Another account cannot see the group through the scoped lookup but
	// the global read still names the group holding the device, matching
	// what the create-time busy check rejects.
	scoped, err := repo.LookupByDevice("acct-2", "dev-left")
	require.NoError(t, err)
	require.Nil(t, scoped)

	found, err := repo.LookupByDeviceGlobal("dev-left")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, group.GroupID, found.GroupID)
	require.Equal(t, "acct-1", found.AccountID)

	_, err = repo.Create(CreateGroupInput{
		AccountID:      "acct-2",
		MasterDeviceID: "dev-left",
		LeftDeviceID:   "dev-left",
		RightDeviceID:  "dev-other",
		Name:           "Den",
	})
	var busyErr *DeviceBusyError
	require.ErrorAs(t, err, &busyErr)
	require.Equal(t, found.LeftDeviceID, busyErr.DeviceID)

	none, err := repo.LookupByDeviceGlobal("dev-solo")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestListByAccount(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Create(livingRoomPair())
	require.NoError(t, err)

	groups, err := repo.ListByAccount("acct-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	empty, err := repo.ListByAccount("acct-2")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}
