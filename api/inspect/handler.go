// Package inspect serves a read-only HTTP view of a running encounter.
package inspect

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/game/encounter"
	"go.uber.org/zap"
)

// Source is the live encounter being inspected.
type Source interface {
	Snapshot() encounter.Snapshot
}

// Handler serves the inspector endpoints.
type Handler struct {
	src    Source
	cache  cache.Cache
	pubsub cache.PubSub
	logger *zap.Logger
}

// NewHandler creates a Handler. cache and pubsub may be nil, which
// disables the cached snapshot and the event endpoints.
func NewHandler(src Source, c cache.Cache, ps cache.PubSub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{src: src, cache: c, pubsub: ps, logger: logger}
}

// Health handles GET /healthz. snapshot_cached reports whether the loop
// has written a snapshot the cache can serve.
func (h *Handler) Health(c *gin.Context) {
	snap := h.src.Snapshot()
	cached := false
	if h.cache != nil {
		var err error
		cached, err = h.cache.Exists(c.Request.Context(), cache.SnapshotKey(snap.EncounterID))
		if err != nil {
			h.logger.Warn("snapshot lookup failed", zap.String("encounter_id", snap.EncounterID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"encounter_id":    snap.EncounterID,
		"tick":            snap.Tick,
		"over":            snap.Over,
		"snapshot_cached": cached,
	})
}

// Encounter handles GET /encounter. It serves the snapshot last written
// to the cache, or the live one when ?live=1 is given or nothing has been
// cached yet.
func (h *Handler) Encounter(c *gin.Context) {
	live := h.src.Snapshot()
	if h.cache != nil && c.Query("live") != "1" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		raw, err := h.cache.Get(ctx, cache.SnapshotKey(live.EncounterID))
		switch {
		case err == nil:
			c.Header("X-Snapshot-Source", "cache")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
			return
		case !cache.IsNotFound(err):
			h.logger.Warn("cached snapshot read failed", zap.Error(err))
		}
	}
	c.Header("X-Snapshot-Source", "live")
	c.JSON(http.StatusOK, live)
}

// RecentEvents handles GET /encounter/events/recent?limit=N, newest first.
func (h *Handler) RecentEvents(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event history disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	items, err := h.cache.LRange(ctx, cache.RecentEventsKey(h.src.Snapshot().EncounterID), 0, int64(limit-1))
	if err != nil {
		h.logger.Warn("recent events read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event history unavailable"})
		return
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = c.Writer.WriteString("[")
	for i, it := range items {
		if i > 0 {
			_, _ = c.Writer.WriteString(",")
		}
		_, _ = c.Writer.WriteString(it)
	}
	_, _ = c.Writer.WriteString("]")
}
