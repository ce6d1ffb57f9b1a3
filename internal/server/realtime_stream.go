package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	realtimeHeartbeatInterval = 25 * time.Second
	realtimeWriteTimeout      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtimeStream upgrades to a websocket and forwards every message
// published on the requested channel, with periodic heartbeats.
func (h *httpHandler) handleRealtimeStream(c *gin.Context) {
	channel := c.Query("channel")
	if !validRealtimeChannel(channel) {
		respondError(c, http.StatusBadRequest, "invalid_channel")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade realtime connection", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx, channel)
	defer cleanup()
	h.logger.Debug("realtime client subscribed", zap.String("channel", channel))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("realtime connection closed unexpectedly", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(realtimeHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case message, ok := <-stream:
			if !ok {
				return
			}
			if err := h.writeRealtime(conn, message); err != nil {
				return
			}
		case tick := <-ticker.C:
			heartbeat := RealtimeMessage{
				Channel:   channel,
				EventType: realtimeEventHeartbeat,
				Source:    realtimeSourceBackend,
				Timestamp: tick.UTC(),
			}
			if err := h.writeRealtime(conn, heartbeat); err != nil {
				return
			}
		}
	}
}

func (h *httpHandler) writeRealtime(conn *websocket.Conn, message RealtimeMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(realtimeWriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(message); err != nil {
		h.logger.Debug("failed to write realtime message", zap.Error(err))
		return err
	}
	return nil
}
