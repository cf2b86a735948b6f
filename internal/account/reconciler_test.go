package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/soundtouchd/soundtouch-cloud/internal/config"
	"github.com/soundtouchd/soundtouch-cloud/internal/credentials"
	"github.com/soundtouchd/soundtouch-cloud/internal/db"
	"github.com/soundtouchd/soundtouch-cloud/internal/presets"
)

const sampleSnapshot = `<account accountID="acct-1">
  <sources>
    <source sourceID="src-1" source="PANDORA" username="alex" displayName="Pandora" updatedOn="2020-01-01T00:00:00Z">stale-token</source>
    <source sourceID="src-2" source="SPOTIFY" username="alex" displayName="Spotify">spotify-token</source>
  </sources>
  <devices>
    <device deviceID="dev-1">
      <name>Kitchen</name>
      <presets>
        <preset id="1">
          <ContentItem source="PANDORA" type="stationurl" location="station:100" itemName="Morning Jazz"/>
          <source source="PANDORA" username="alex">stale-token</source>
        </preset>
        <preset id="2">
          <ContentItem source="TUNEIN" type="stationurl" location="tunein:200" itemName="News Radio"/>
        </preset>
      </presets>
      <recents>
        <recent deviceID="dev-1" utcTime="2020-06-01T12:00:00Z">
          <ContentItem source="PANDORA" type="stationurl" location="station:100" itemName="Morning Jazz"/>
          <source source="PANDORA" username="alex">stale-token</source>
        </recent>
      </recents>
    </device>
  </devices>
</account>`

type fakeForwarder struct {
	calls  int
	status int
	body   []byte
	err    error
}

func (f *fakeForwarder) Forward(ctx context.Context, method, path string, query url.Values, header http.Header) (*ForwardResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ForwardResult{Status: f.status, Body: f.body}, nil
}

func setupService(t *testing.T, forwarder Forwarder) (*Service, *db.DBPair) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	dbPair, err := db.Init(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { dbPair.Close() })

	cfg := config.Config{ProviderSource: "PANDORA"}
	presetService := presets.NewService(dbPair, nil, nil)
	return NewService(cfg, dbPair, nil, presetService, forwarder), dbPair
}

func inboundRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/v1/accounts/acct-1", nil)
}

func TestReconcile_FetchesAndCachesOnMiss(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte(sampleSnapshot)}
	service, _ := setupService(t, forwarder)

	doc, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)
	require.Equal(t, "acct-1", doc.AccountID)
	require.Equal(t, 1, forwarder.calls)

	// The raw bytes are now cached; a second request never hits upstream.
	doc, err = service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)
	require.Equal(t, "acct-1", doc.AccountID)
	require.Equal(t, 1, forwarder.calls)

	raw, hit, err := service.Snapshots().Get("acct-1")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte(sampleSnapshot), raw)
}

func TestReconcile_UpstreamFailureIsNotCached(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusBadGateway, body: []byte("oops")}
	service, _ := setupService(t, forwarder)

	_, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusBadGateway, upstreamErr.Status)

	_, hit, err := service.Snapshots().Get("acct-1")
	require.NoError(t, err)
	require.False(t, hit)

	// Recovery: the next request re-fetches.
	forwarder.status = http.StatusOK
	forwarder.body = []byte(sampleSnapshot)
	_, err = service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)
	require.Equal(t, 2, forwarder.calls)
}

func TestReconcile_EmptyBodyIsUpstreamFailure(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: nil}
	service, _ := setupService(t, forwarder)

	_, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestReconcile_UndecodableFetchIsNotCached(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte("not xml at all <<<")}
	service, _ := setupService(t, forwarder)

	_, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	_, hit, err := service.Snapshots().Get("acct-1")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestReconcile_CacheWriteFailureStillServesDocument(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte(sampleSnapshot)}
	service, dbPair := setupService(t, forwarder)

	// Make every snapshot insert fail so the cache write after a
	// successful fetch errors out.
	_, err := dbPair.Writer().Exec(`CREATE TRIGGER reject_snapshot_writes
		BEFORE INSERT ON account_snapshots
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	doc, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)
	require.Equal(t, "acct-1", doc.AccountID)
	require.Equal(t, 1, forwarder.calls)

	// Nothing was cached, so the next request goes back upstream.
	_, hit, err := service.Snapshots().Get("acct-1")
	require.NoError(t, err)
	require.False(t, hit)

	_, err = service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)
	require.Equal(t, 2, forwarder.calls)
}

func TestReconcile_CorruptCacheIsTerminal(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte(sampleSnapshot)}
	service, _ := setupService(t, forwarder)

	require.NoError(t, service.Snapshots().Put("acct-1", []byte("<account><broken")))

	_, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	// No fallback fetch on a corrupt cache entry.
	require.Equal(t, 0, forwarder.calls)
}

func TestReconcile_PatchesMatchingProviderSources(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte(sampleSnapshot)}
	service, _ := setupService(t, forwarder)

	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := service.Credentials().Append(credentials.AppendInput{
		ExternalUserID: "alex",
		RefreshToken:   "fresh-token",
		CreatedAt:      &createdAt,
	})
	require.NoError(t, err)

	doc, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)

	// The PANDORA source is patched; the SPOTIFY source with the same
	// username is untouched.
	require.Equal(t, "fresh-token", doc.Sources[0].Credential)
	require.Equal(t, "2024-03-01T10:00:00Z", doc.Sources[0].UpdatedOn)
	require.Equal(t, "spotify-token", doc.Sources[1].Credential)

	// Nested per-preset and per-recent sources are patched too.
	require.Equal(t, "fresh-token", doc.Devices[0].Presets[0].Source.Credential)
	require.Equal(t, "fresh-token", doc.Devices[0].Recents[0].Source.Credential)
}

func TestReconcile_OverlaysLocalPresets(t *testing.T) {
	forwarder := &fakeForwarder{status: http.StatusOK, body: []byte(sampleSnapshot)}
	service, _ := setupService(t, forwarder)

	// Local save on button 1 shadows the snapshot's entry; button 2 stays
	// snapshot-only; button 5 is local-only.
	for _, input := range []presets.AssignInput{
		{AccountID: "acct-1", DeviceID: "dev-1", ButtonNumber: 1, Location: "station:900", SourceID: "alex", ContentItemType: "stationurl", Name: "Evening Blues"},
		{AccountID: "acct-1", DeviceID: "dev-1", ButtonNumber: 5, Location: "station:901", SourceID: "alex", ContentItemType: "stationurl", Name: "Late Jazz"},
	} {
		_, err := service.presets.Assign(input)
		require.NoError(t, err)
	}

	doc, err := service.Reconcile(context.Background(), "acct-1", inboundRequest())
	require.NoError(t, err)

	device := doc.Devices[0]
	require.Len(t, device.Presets, 3)
	require.Equal(t, 1, device.Presets[0].ButtonNumber)
	require.Equal(t, "station:900", device.Presets[0].ContentItem.Location)
	require.Equal(t, 2, device.Presets[1].ButtonNumber)
	require.Equal(t, "tunein:200", device.Presets[1].ContentItem.Location)
	require.Equal(t, 5, device.Presets[2].ButtonNumber)
	require.Equal(t, "Late Jazz", device.Presets[2].ContentItem.ItemName)
}
