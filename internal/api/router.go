package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-ops-backend/config"
	"fleet-ops-backend/internal/auth"
	"fleet-ops-backend/internal/mw"
	"fleet-ops-backend/internal/pipeline"
	"fleet-ops-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, pipe *pipeline.Service, verifier *auth.Verifier, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	// CORS runs globally so preflights are answered even for unrouted paths.
	r.Use(mw.CORS())

	handler := NewHandler(s, pipe, verifier, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Ingestion endpoint (the PTA pipeline) plus its discovery companion.
		api.POST("/status-events", handler.PostStatusEvent)
		api.OPTIONS("/status-events", func(c *gin.Context) {})
		api.GET("/status-events/capability", caching, handler.GetStatusEventCapability)

		// Read endpoints backing the admin and planner screens.
		api.GET("/status-events", handler.ListStatusEvents)
		api.GET("/availability", handler.GetAvailability)
		api.GET("/assignments", caching, handler.ListAssignments)
		api.POST("/assignments", handler.CreateAssignment)

		// Push subscription management.
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
	}

	return r
}
