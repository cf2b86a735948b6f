package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard clients connect from any origin
	},
}

// RegisterRoutes wires event routes to the router.
func RegisterRoutes(router chi.Router, buffer *Buffer, feed *Feed) {
	router.Method(http.MethodGet, "/v1/devices/{device_id}/events", api.Handler(listEvents(buffer)))
	router.HandleFunc("/ws/events", websocketHandler(feed))
}

func listEvents(buffer *Buffer) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		deviceID := chi.URLParam(r, "device_id")
		return api.WriteList(w, "/v1/devices/"+deviceID+"/events", buffer.List(deviceID), false)
	}
}

func websocketHandler(feed *Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade failed - error already written to response
			return
		}
		feed.AddConnection(conn)
	}
}
