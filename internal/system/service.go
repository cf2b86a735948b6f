package system

import (
	"database/sql"
	"log"
	"runtime"
	"time"
)

// Version is the service version, set at build time or defaulted.
var Version = "1.0.0"

// DeviceCounter provides the registered device count.
type DeviceCounter interface {
	Count() (int, error)
}

// SnapshotCounter provides the cached account snapshot count.
type SnapshotCounter interface {
	Count() (int, error)
}

// FeedStatusProvider provides the live event feed client count.
type FeedStatusProvider interface {
	ClientCount() int
}

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sql.DB
	Writer() *sql.DB
}

// Service provides system status. Uses the reader connection only as this
// service only performs SELECT queries.
type Service struct {
	logger    *log.Logger
	reader    *sql.DB
	devices   DeviceCounter
	snapshots SnapshotCounter
	feed      FeedStatusProvider
	startTime time.Time
}

// NewService creates a new system service.
func NewService(dbPair DBPair, logger *log.Logger, devices DeviceCounter, snapshots SnapshotCounter, feed FeedStatusProvider) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		logger:    logger,
		reader:    dbPair.Reader(),
		devices:   devices,
		snapshots: snapshots,
		feed:      feed,
		startTime: time.Now(),
	}
}

// Status holds current service status.
type Status struct {
	Version         string  `json:"version"`
	Uptime          int64   `json:"uptime_seconds"`
	MemoryUsageMB   float64 `json:"memory_mb"`
	SQLiteConnected bool    `json:"sqlite_connected"`
	DevicesTotal    int     `json:"devices_total"`
	SnapshotsCached int     `json:"snapshots_cached"`
	FeedClients     int     `json:"feed_clients"`
}

// GetStatus returns current service status.
func (s *Service) GetStatus() (*Status, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sqliteConnected := true
	if err := s.reader.Ping(); err != nil {
		sqliteConnected = false
	}

	devicesTotal := 0
	if s.devices != nil {
		if count, err := s.devices.Count(); err == nil {
			devicesTotal = count
		}
	}

	snapshotsCached := 0
	if s.snapshots != nil {
		if count, err := s.snapshots.Count(); err == nil {
			snapshotsCached = count
		}
	}

	feedClients := 0
	if s.feed != nil {
		feedClients = s.feed.ClientCount()
	}

	return &Status{
		Version:         Version,
		Uptime:          int64(time.Since(s.startTime).Seconds()),
		MemoryUsageMB:   float64(memStats.Alloc) / 1024 / 1024,
		SQLiteConnected: sqliteConnected,
		DevicesTotal:    devicesTotal,
		SnapshotsCached: snapshotsCached,
		FeedClients:     feedClients,
	}, nil
}
