package inspect

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/bossarena/config"
	"github.com/kasuganosora/bossarena/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter wires the inspector endpoints behind the standard middleware
// chain. ctx bounds the rate limiter's background sweeper.
func NewRouter(ctx context.Context, h *Handler, sec config.SecurityConfig, logger *zap.Logger) (*gin.Engine, error) {
	allow, err := middleware.AllowNetworks(sec.InspectorAllow)
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(
		middleware.TraceID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		allow,
	)
	r.GET("/healthz", h.Health)

	g := r.Group("/encounter", middleware.RateLimit(ctx, rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst))
	g.GET("", h.Encounter)
	g.GET("/events/recent", h.RecentEvents)
	g.GET("/events", h.Events)
	return r, nil
}
