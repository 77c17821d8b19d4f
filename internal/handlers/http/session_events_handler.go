package http

import (
	"net/http"
	"time"

	"vodnet/internal/core/ports"
	"vodnet/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The service binds to loopback on the device; the UI is the only
		// client.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SessionEventsHandler pushes every published session over a websocket so the
// UI re-renders without polling. Each connection gets its own subscription;
// the current session is delivered immediately on connect.
type SessionEventsHandler struct {
	sessions ports.SessionManager
	logger   *zap.SugaredLogger

	pingInterval time.Duration
	writeTimeout time.Duration
}

func NewSessionEventsHandler(sessions ports.SessionManager, logger *zap.SugaredLogger) *SessionEventsHandler {
	return &SessionEventsHandler{
		sessions:     sessions,
		logger:       logger,
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

func (h *SessionEventsHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/api/v1/session/events", h.Events)
}

func (h *SessionEventsHandler) Events(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.sessions.Subscribe()
	defer unsubscribe()

	// Drain the read side to notice the client going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(h.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case session, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			payload := gin.H{
				"type":      "session",
				"session":   sessionResponse(session),
				"timestamp": utils.Now().Unix(),
			}
			if err := conn.WriteJSON(payload); err != nil {
				h.logger.Debugw("session events client write failed", "error", err)
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-clientGone:
			return
		}
	}
}
