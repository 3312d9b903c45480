package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/adapters/signal"
	"github.com/readhive/liveroom/internal/app"
	"github.com/readhive/liveroom/internal/config"
	"github.com/readhive/liveroom/internal/domain"
)

// SetupRouter wires the websocket endpoint, the diagnostics REST
// surface, and the metrics exporter.
func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := signal.NewEventRateLimiter(cfg.RateLimit, cfg.RateInterval)
	ctl := signal.NewController(coord, limiter, cfg.ReadLimit, cfg.SendBuffer)

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	// Diagnostics: read-only views over coordinator state.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Rooms.List()})
	})

	api.GET("/rooms/:id/members", func(c *gin.Context) {
		members := coord.Rooms.Members(domain.RoomID(c.Param("id")))
		if members == nil {
			members = []domain.IdentityID{}
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	})

	api.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identities": coord.Presence.Statuses()})
	})

	api.GET("/identities/:id/connections", func(c *gin.Context) {
		count := coord.Registry.ActiveConnections(domain.IdentityID(c.Param("id")))
		c.JSON(http.StatusOK, gin.H{"connections": count})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
