package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/api"
	"github.com/Conceptual-Machines/wordexpander/internal/config"
	"github.com/Conceptual-Machines/wordexpander/internal/llm"
	"github.com/Conceptual-Machines/wordexpander/internal/metrics"
	"github.com/Conceptual-Machines/wordexpander/internal/observability"
	"github.com/Conceptual-Machines/wordexpander/internal/prompt"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	shutdownTimeout       = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "wordexpander@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Model provider behind a circuit breaker
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	provider, err := factory.GetProvider(ctx, cfg.LLMModel, cfg.LLMProvider)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to create model provider:", err)
	}
	breaker := llm.NewCircuitBreakerProvider(provider, llm.CircuitBreakerConfig{
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerOpenTimeout,
	})
	log.Printf("🤖 Model provider: %s (model: %q)", provider.Name(), cfg.LLMModel)

	// Generation recorders
	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}
	langfuse := observability.InitializeLangfuse(ctx, cfg)
	counters := metrics.NewCounters()
	recorders := session.Recorders{counters, cloudwatch, metrics.NewSentryMetrics(), langfuse}

	builder := prompt.NewPromptBuilder(cfg.LLMModel, cfg.LLMTemperature)
	registry := session.NewRegistry(func(id string) *session.Controller {
		return session.NewController(id, breaker, builder, session.WithRecorder(recorders))
	}, cfg.SessionIdleTTL)
	go registry.Run(ctx, cfg.SessionSweepInterval)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, api.Dependencies{
		Registry:    registry,
		Breaker:     breaker,
		APIRecorder: cloudwatch,
		Generations: counters,
		Version:     GetVersion(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Printf("🚀 Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Abort in-flight generations first so open event streams can finish
	registry.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	langfuse.Flush(shutdownCtx)
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
