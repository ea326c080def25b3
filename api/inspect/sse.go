package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/bossarena/cache"
	"go.uber.org/zap"
)

const keepaliveEvery = 30 * time.Second

// Events handles GET /encounter/events[?type=<event type>]. It streams
// this encounter's events as server-sent events named after the event
// type.
func (h *Handler) Events(c *gin.Context) {
	if h.pubsub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream disabled"})
		return
	}
	id := h.src.Snapshot().EncounterID
	only := c.Query("type")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, cache.EventsChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"encounter_id\":%q}\n\n", id)
	c.Writer.Flush()

	ticker := time.NewTicker(keepaliveEvery)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			var head struct {
				EncounterID string `json:"encounter_id"`
				Type        string `json:"type"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &head); err != nil {
				continue
			}
			if head.EncounterID != id || (only != "" && head.Type != only) {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", head.Type, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
