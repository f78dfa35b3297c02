package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients. An empty origins list accepts any origin.
func HandleWebSocket(hub *Hub, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns:     origins,
			InsecureSkipVerify: len(origins) == 0,
		})
		if err != nil {
			hub.logger.Warn("accept", "error", err)
			return
		}

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}
