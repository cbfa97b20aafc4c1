package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/events"
)

// StreamHandler holds the persistent admin connections that receive
// order-created pushes.
type StreamHandler struct {
	hub    *events.Hub
	logger *zap.Logger
}

func NewStreamHandler(hub *events.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger,
	}
}

// Orders streams orderin events over SSE until the session disconnects or
// falls behind. There is no replay: a reconnecting console re-fetches the
// active list through the normal read boundary.
func (h *StreamHandler) Orders(c *gin.Context) {
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.C:
			if !ok {
				// Hub dropped this session for falling behind.
				return false
			}
			c.SSEvent("orderin", event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
