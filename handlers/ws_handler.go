package handlers

import (
	"log/slog"
	"net/http"

	"github.com/coyotecrew/camporee-collator/live"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
	log *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, log *slog.Logger) *WebSocketHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebSocketHandler{hub: hub, log: log}
}

// Scoreboard subscribes the connection to live score events for one game.
func (h *WebSocketHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		notFoundResponse(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed",
			slog.String("game_id", gameID),
			slog.Any("error", err),
		)
		return
	}

	h.hub.NewClient(conn, gameID)
}
