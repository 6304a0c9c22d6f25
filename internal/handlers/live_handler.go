package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/abhinandc/ai-interview/internal/notify"
)

const pingInterval = 30 * time.Second

// LiveHandler relays row-change notifications for one session over a
// websocket, saving clients the cost of tight polling. Polling the
// aggregator remains the fallback when no notifier is configured.
type LiveHandler struct {
	notifier notify.Publisher
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewLiveHandler(notifier notify.Publisher, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
	}
}

func (h *LiveHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	subscriber, ok := h.notifier.(notify.Subscriber)
	if !ok {
		http.Error(w, "live updates not available, use polling", http.StatusNotImplemented)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	changes := subscriber.Subscribe(ctx, sessionID)

	// Drain client frames so close messages are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case change, open := <-changes:
			if !open {
				return
			}
			if err := conn.WriteJSON(change); err != nil {
				h.logger.Debug("websocket write failed",
					zap.String("session_id", sessionID),
					zap.Error(err))
				return
			}
		}
	}
}
