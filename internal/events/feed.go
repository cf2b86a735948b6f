package events

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const feedPingInterval = 30 * time.Second

type feedClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *feedClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Feed fans recorded events out to connected websocket clients. Slow or dead
// clients are dropped on the first failed write.
type Feed struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	logger  *log.Logger
}

// NewFeed creates a new event feed.
func NewFeed(logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		clients: make(map[*feedClient]struct{}),
		logger:  logger,
	}
}

// AddConnection registers a websocket connection and services it until it
// closes.
func (f *Feed) AddConnection(conn *websocket.Conn) {
	client := &feedClient{conn: conn}

	f.mu.Lock()
	f.clients[client] = struct{}{}
	count := len(f.clients)
	f.mu.Unlock()

	f.logger.Printf("Event feed client connected (%d active)", count)

	go f.pingLoop(client)
	go f.readLoop(client)
}

// Broadcast sends an event to every connected client.
func (f *Feed) Broadcast(event Event) {
	f.mu.RLock()
	clients := make([]*feedClient, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	for _, client := range clients {
		if err := client.writeJSON(event); err != nil {
			f.remove(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects all clients.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for client := range f.clients {
		client.conn.Close()
		delete(f.clients, client)
	}
}

func (f *Feed) pingLoop(client *feedClient) {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for range ticker.C {
		f.mu.RLock()
		_, active := f.clients[client]
		f.mu.RUnlock()
		if !active {
			return
		}

		client.mu.Lock()
		err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		client.mu.Unlock()
		if err != nil {
			f.remove(client)
			return
		}
	}
}

func (f *Feed) readLoop(client *feedClient) {
	// Clients never send application messages; the read loop exists to detect
	// disconnects and service control frames.
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			f.remove(client)
			return
		}
	}
}

func (f *Feed) remove(client *feedClient) {
	f.mu.Lock()
	_, active := f.clients[client]
	if active {
		delete(f.clients, client)
	}
	count := len(f.clients)
	f.mu.Unlock()

	if active {
		client.conn.Close()
		f.logger.Printf("Event feed client disconnected (%d active)", count)
	}
}
