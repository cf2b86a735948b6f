package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultBufferCap bounds the per-device event ring when no cap is configured.
const DefaultBufferCap = 100

// Broadcaster receives every recorded event. The websocket feed implements it.
type Broadcaster interface {
	Broadcast(event Event)
}

type deviceBuffer struct {
	mu         sync.Mutex
	events     []Event
	lastActive time.Time
}

// Buffer holds bounded in-memory event rings keyed by device id. Each device
// gets its own lock so a chatty device never blocks reads for another.
type Buffer struct {
	mu          sync.RWMutex
	buffers     map[string]*deviceBuffer
	cap         int
	idleTimeout time.Duration
	broadcaster Broadcaster
	logger      *log.Logger
	cron        *cron.Cron
}

// NewBuffer creates a new event buffer.
func NewBuffer(bufferCap int, idleTimeout time.Duration, logger *log.Logger) *Buffer {
	if bufferCap <= 0 {
		bufferCap = DefaultBufferCap
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Buffer{
		buffers:     make(map[string]*deviceBuffer),
		cap:         bufferCap,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// SetBroadcaster attaches a live feed. Must be called before the buffer sees
// traffic.
func (b *Buffer) SetBroadcaster(broadcaster Broadcaster) {
	b.broadcaster = broadcaster
}

// Record appends an event to the device's ring, evicting the oldest entry
// when the ring is full.
func (b *Buffer) Record(deviceID, eventType, message string) {
	event := Event{
		EventID:   uuid.New().String(),
		DeviceID:  deviceID,
		EventType: eventType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	buf, ok := b.buffers[deviceID]
	if !ok {
		buf = &deviceBuffer{}
		b.buffers[deviceID] = buf
	}
	b.mu.Unlock()

	buf.mu.Lock()
	buf.events = append(buf.events, event)
	if len(buf.events) > b.cap {
		buf.events = buf.events[len(buf.events)-b.cap:]
	}
	buf.lastActive = event.CreatedAt
	buf.mu.Unlock()

	if b.broadcaster != nil {
		b.broadcaster.Broadcast(event)
	}
}

// List returns the buffered events for a device, oldest first.
func (b *Buffer) List(deviceID string) []Event {
	b.mu.RLock()
	buf, ok := b.buffers[deviceID]
	b.mu.RUnlock()

	if !ok {
		return []Event{}
	}

	buf.mu.Lock()
	defer buf.mu.Unlock()

	out := make([]Event, len(buf.events))
	copy(out, buf.events)
	return out
}

// StartPruning schedules the idle-buffer prune job. schedule is a cron spec
// such as "@every 1h".
func (b *Buffer) StartPruning(schedule string) error {
	b.cron = cron.New()
	_, err := b.cron.AddFunc(schedule, b.prune)
	if err != nil {
		return err
	}
	b.cron.Start()
	b.logger.Printf("Event prune job scheduled: %s", schedule)
	return nil
}

// StopPruning stops the prune job and waits for a running prune to finish.
func (b *Buffer) StopPruning() {
	if b.cron != nil {
		ctx := b.cron.Stop()
		<-ctx.Done()
	}
}

func (b *Buffer) prune() {
	cutoff := time.Now().UTC().Add(-b.idleTimeout)
	pruned := 0

	b.mu.Lock()
	for deviceID, buf := range b.buffers {
		buf.mu.Lock()
		idle := buf.lastActive.Before(cutoff)
		buf.mu.Unlock()
		if idle {
			delete(b.buffers, deviceID)
			pruned++
		}
	}
	b.mu.Unlock()

	if pruned > 0 {
		b.logger.Printf("Pruned %d idle event buffers", pruned)
	}
}
