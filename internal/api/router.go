package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yksanjo/soundraw-podcast-music/internal/api/handlers"
	apimiddleware "github.com/yksanjo/soundraw-podcast-music/internal/api/middleware"
	"github.com/yksanjo/soundraw-podcast-music/internal/config"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
)

func SetupRouter(cfg *config.Config, service handlers.PodcastMusicService, recorder *metrics.Recorder, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg.LLMProvider, cfg.AuthMode)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, cfg.Transport)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		v1.GET("/tools", handlers.ListTools)

		podcastHandler := handlers.NewPodcastHandler(service)
		v1.POST("/podcast/music", podcastHandler.Generate)
		v1.POST("/podcast/music/stream", podcastHandler.GenerateStream)
		v1.GET("/podcast/jobs/:request_id", podcastHandler.JobStatus)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsJWTMode():
		return apimiddleware.JWTAuth(cfg.JWTSecret)
	case cfg.IsGatewayMode():
		return apimiddleware.GatewayAuth()
	default:
		return apimiddleware.NoAuth()
	}
}
