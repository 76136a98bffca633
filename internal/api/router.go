package api

import (
	"net/http"

	"github.com/Conceptual-Machines/wordexpander/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/wordexpander/internal/api/middleware"
	"github.com/Conceptual-Machines/wordexpander/internal/config"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	webhandlers "github.com/Conceptual-Machines/wordexpander/internal/web/handlers"
	"github.com/Conceptual-Machines/wordexpander/pkg/embedded"
	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived services the router wires into handlers
type Dependencies struct {
	Registry    *session.Registry
	Breaker     handlers.BreakerState     // optional
	APIRecorder apimiddleware.APIRecorder // optional
	Generations handlers.GenerationStats  // optional
	Version     string
}

func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.APIRecorder))

	router.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))

	// Browser script
	router.StaticFS("/static", http.FS(embedded.StaticFS()))

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.Breaker, deps.Registry)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.Registry, deps.Generations)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Everything below belongs to a browser session
	browser := router.Group("/")
	browser.Use(apimiddleware.BrowserSession(apimiddleware.NewCookieStore(cfg.SessionSecret, cfg.IsProduction())))

	// Web pages
	webHandler := webhandlers.NewWebHandler(deps.Registry)
	browser.GET("/", webHandler.Home)

	v1 := browser.Group("/api/v1")
	{
		sessionHandler := handlers.NewSessionHandler(deps.Registry)
		v1.GET("/options", handlers.Options)
		v1.POST("/generations", sessionHandler.Start)
		v1.GET("/session", sessionHandler.Snapshot)
		v1.GET("/session/events", sessionHandler.Events)
		v1.GET("/session/output", sessionHandler.Output)
		v1.POST("/session/clear", sessionHandler.Clear)
		v1.POST("/session/cancel", sessionHandler.Cancel)
		v1.POST("/session/dismiss", sessionHandler.Dismiss)
	}

	return router
}
