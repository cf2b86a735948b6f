package account

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/soundtouchd/soundtouch-cloud/internal/config"
	"github.com/soundtouchd/soundtouch-cloud/internal/credentials"
	"github.com/soundtouchd/soundtouch-cloud/internal/presets"
)

// ForwardResult is the upstream response for a forwarded account fetch.
type ForwardResult struct {
	Status int
	Header http.Header
	Body   []byte
}

// Forwarder relays the original inbound request to the legacy upstream on a
// cache miss. Implemented by the gateway client.
type Forwarder interface {
	Forward(ctx context.Context, method, path string, query url.Values, header http.Header) (*ForwardResult, error)
}

// DecodeError reports a snapshot that could not be parsed. Terminal for the
// request on the cache-hit path; suppresses caching on the fetch path.
type DecodeError struct {
	AccountID string
	Err       error
}

func (e *DecodeError) Error() string {
	return "decode snapshot for account " + e.AccountID + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UpstreamError reports a failed fetch from the legacy system: transport
// error, non-2xx status, or an empty body. Nothing is cached.
type UpstreamError struct {
	AccountID string
	Status    int
	Reason    string
}

func (e *UpstreamError) Error() string {
	return "upstream fetch for account " + e.AccountID + " failed: " + e.Reason
}

// Service reconciles the cached upstream snapshot with locally-owned data.
type Service struct {
	cfg         config.Config
	logger      *log.Logger
	snapshots   *SnapshotRepository
	credentials *credentials.Repository
	presets     *presets.Service
	forwarder   Forwarder
}

// NewService creates a new account reconciler service.
func NewService(cfg config.Config, dbPair DBPair, logger *log.Logger, presetService *presets.Service, forwarder Forwarder) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:         cfg,
		logger:      logger,
		snapshots:   NewSnapshotRepository(dbPair),
		credentials: credentials.NewRepository(dbPair),
		presets:     presetService,
		forwarder:   forwarder,
	}
}

// Snapshots exposes the snapshot store for status reporting.
func (s *Service) Snapshots() *SnapshotRepository { return s.snapshots }

// Credentials exposes the credential store for the refresh population path.
func (s *Service) Credentials() *credentials.Repository { return s.credentials }

// Reconcile returns the full account document: cached snapshot when one
// exists, otherwise a fresh fetch through the forwarder which is then cached
// best-effort. Either way the document is patched with the freshest known
// provider credentials and overlaid with locally-owned presets before it is
// returned.
func (s *Service) Reconcile(ctx context.Context, accountID string, inbound *http.Request) (*Document, error) {
	raw, hit, err := s.snapshots.Get(accountID)
	if err != nil {
		return nil, err
	}

	var doc *Document
	if hit {
		doc, err = ParseDocument(raw)
		if err != nil {
			// A corrupt cache entry fails the request; there is no fallback
			// to a fresh fetch.
			return nil, &DecodeError{AccountID: accountID, Err: err}
		}
	} else {
		doc, err = s.fetchAndCache(ctx, accountID, inbound)
		if err != nil {
			return nil, err
		}
	}

	if err := s.patchCredentials(doc); err != nil {
		return nil, err
	}
	if err := s.overlayPresets(accountID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) fetchAndCache(ctx context.Context, accountID string, inbound *http.Request) (*Document, error) {
	result, err := s.forwarder.Forward(ctx, inbound.Method, inbound.URL.Path, inbound.URL.Query(), inbound.Header)
	if err != nil {
		return nil, &UpstreamError{AccountID: accountID, Reason: err.Error()}
	}
	if result.Status < 200 || result.Status >= 300 {
		return nil, &UpstreamError{AccountID: accountID, Status: result.Status, Reason: http.StatusText(result.Status)}
	}
	if len(result.Body) == 0 {
		return nil, &UpstreamError{AccountID: accountID, Status: result.Status, Reason: "empty body"}
	}

	doc, err := ParseDocument(result.Body)
	if err != nil {
		// Never cache bytes we could not decode; the next request should
		// re-fetch rather than serve garbage forever.
		return nil, &DecodeError{AccountID: accountID, Err: err}
	}

	// Cache write is a side effect: a persistence failure must not turn a
	// successful reconciliation into a failed response.
	if err := s.snapshots.Put(accountID, result.Body); err != nil {
		s.logger.Printf("snapshot cache write failed for account %s: %v", accountID, err)
	}

	return doc, nil
}

// patchCredentials overwrites the credential of every music-provider source
// in the document whose username matches a stored credential record. Sources
// for other providers are never touched, regardless of username collisions.
func (s *Service) patchCredentials(doc *Document) error {
	latest, err := s.credentials.LatestAll()
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return nil
	}

	for i := range doc.Sources {
		s.patchSource(&doc.Sources[i], latest)
	}
	for d := range doc.Devices {
		device := &doc.Devices[d]
		for p := range device.Presets {
			if device.Presets[p].Source != nil {
				s.patchSource(device.Presets[p].Source, latest)
			}
		}
		for r := range device.Recents {
			if device.Recents[r].Source != nil {
				s.patchSource(device.Recents[r].Source, latest)
			}
		}
	}
	return nil
}

func (s *Service) patchSource(src *Source, latest map[string]credentials.Record) {
	if src.Provider != s.cfg.ProviderSource {
		return
	}
	record, ok := latest[src.Username]
	if !ok {
		return
	}
	src.Credential = record.RefreshToken
	src.UpdatedOn = record.CreatedAt.UTC().Format(time.RFC3339)
}

// overlayPresets replaces snapshot presets with locally-owned rows, keyed by
// button number. The database wins per slot; snapshot-only slots survive.
func (s *Service) overlayPresets(accountID string, doc *Document) error {
	for d := range doc.Devices {
		device := &doc.Devices[d]

		local, err := s.presets.List(accountID, device.DeviceID)
		if err != nil {
			return err
		}
		if len(local) == 0 {
			continue
		}

		byButton := make(map[int]DocumentPreset, len(device.Presets))
		for _, preset := range device.Presets {
			byButton[preset.ButtonNumber] = preset
		}
		for _, preset := range local {
			byButton[preset.ButtonNumber] = presetToDocument(preset)
		}

		merged := make([]DocumentPreset, 0, len(byButton))
		for _, preset := range byButton {
			merged = append(merged, preset)
		}
		sort.Slice(merged, func(i, j int) bool {
			return merged[i].ButtonNumber < merged[j].ButtonNumber
		})
		device.Presets = merged
	}
	return nil
}
