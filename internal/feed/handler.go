package feed

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/JaimeStill/cookbook/pkg/routes"
)

// Handler upgrades HTTP requests to feed connections.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With("handler", "feed"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/feed",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Connect},
		},
	}
}

// Connect upgrades the request and streams event envelopes to the caller
// until either side closes the connection.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h.hub,
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, sendBuffer),
	}

	if !h.hub.join(r.Context(), c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
