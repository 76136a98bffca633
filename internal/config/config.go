package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
// Nothing is persisted; sessions live in memory for the life of the process.
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM
	LLMProvider    string  // "gemini", "openai" or empty to infer from the model
	LLMModel       string  // Empty selects the provider default
	LLMTemperature float32 // Sampling temperature sent with every request
	OpenAIAPIKey   string  // OpenAI API key for GPT models
	GeminiAPIKey   string  // Google Gemini API key

	// Browser sessions
	SessionSecret        string        // Signing key for the session cookie
	SessionIdleTTL       time.Duration // Idle sessions older than this are evicted
	SessionSweepInterval time.Duration

	// Circuit breaker around the model provider
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	CORSAllowedOrigins []string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

const (
	defaultTemperature        = 0.7
	defaultSessionIdleTTL     = 30 * time.Minute
	defaultSessionSweep       = time.Minute
	defaultBreakerMaxFailures = 5
	defaultBreakerOpenTimeout = 30 * time.Second
	developmentSessionSecret  = "wordexpander-development-secret"
)

func Load() *Config {
	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		Port:                 getEnv("PORT", "8080"),
		LLMProvider:          strings.ToLower(getEnv("LLM_PROVIDER", "")),
		LLMModel:             getEnv("LLM_MODEL", ""),
		LLMTemperature:       float32(getEnvFloat("LLM_TEMPERATURE", defaultTemperature)),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		SessionSecret:        getEnv("SESSION_SECRET", developmentSessionSecret),
		SessionIdleTTL:       getEnvDuration("SESSION_IDLE_TTL", defaultSessionIdleTTL),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", defaultSessionSweep),
		BreakerMaxFailures:   uint32(getEnvInt("BREAKER_MAX_FAILURES", defaultBreakerMaxFailures)),
		BreakerOpenTimeout:   getEnvDuration("BREAKER_OPEN_TIMEOUT", defaultBreakerOpenTimeout),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
		SentryDSN:            getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:    getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:    getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:         getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:      getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 32)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
