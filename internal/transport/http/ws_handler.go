package http

import (
	"log/slog"
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"tpodash/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and registers them with the hub
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a websocket handler
func NewWebSocketHandler(hub *websocket.Hub, upgrader *gorillaws.Upgrader, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With(slog.String("component", "ws_handler")),
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "websocket upgrade requested",
		slog.String("remote_addr", r.RemoteAddr))
	websocket.ServeWS(h.hub, h.upgrader, w, r)
}
