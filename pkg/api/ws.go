package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		// Same policy as the CORS middleware: the API is public.
		return true
	},
}

// statusWS streams each freshly computed StatusSummary to the client as
// JSON. Slow clients miss updates rather than stalling the check cycle.
func (s *Server) statusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}

	summaries, cancel := s.monitor.Subscribe()
	defer cancel()

	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("api: failed to close websocket: %v", err)
		}
	}()

	// Drain client frames so pings are answered and closure is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for summary := range summaries {
		if err := conn.WriteJSON(summary); err != nil {
			return
		}
	}
}
