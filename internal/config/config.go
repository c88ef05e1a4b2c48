// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML pipeline settings file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Run modes.
const (
	ModeBatch = "batch"
	ModeServe = "serve"
)

// DateLayout is the layout of REFERENCE_DATE and of reference_date in
// request bodies and the settings file.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	Mode string

	// Server
	Port     int
	LogLevel string

	// Table sources. SourceURL takes precedence over the file paths.
	ProfilePath    string
	PortfolioPath  string
	TranscriptPath string
	SourceURL      string

	// Batch output
	OutputDir string

	// Pipeline
	PipelineConfigPath string
	Pipeline           Pipeline

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Run store
	RunCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// HTTP server. Run submissions above MaxBodyBytes get 413.
	MaxBodyBytes int64

	// Auth. Empty disables the bearer guard.
	JWTSecret string
}

// Load reads configuration from environment variables with defaults, then
// applies the YAML settings file named by PIPELINE_CONFIG when set.
func Load() (*Config, error) {
	cfg := &Config{
		Mode: getEnv("MODE", ModeBatch),

		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ProfilePath:    getEnv("PROFILE_PATH", "data/profile.json"),
		PortfolioPath:  getEnv("PORTFOLIO_PATH", "data/portfolio.json"),
		TranscriptPath: getEnv("TRANSCRIPT_PATH", "data/transcript.json"),
		SourceURL:      getEnv("SOURCE_URL", ""),

		OutputDir: getEnv("OUTPUT_DIR", "out"),

		PipelineConfigPath: getEnv("PIPELINE_CONFIG", ""),
		Pipeline:           DefaultPipeline(),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 200*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),

		RunCacheTTL: getEnvDuration("RUN_CACHE_TTL", time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 256<<20)),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}

	cfg.Pipeline.Workers = getEnvInt("WORKERS", cfg.Pipeline.Workers)
	if v := os.Getenv("REFERENCE_DATE"); v != "" {
		ref, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("REFERENCE_DATE: %w", err)
		}
		cfg.Pipeline.Reference = ref
	}

	if cfg.PipelineConfigPath != "" {
		if err := cfg.Pipeline.LoadFile(cfg.PipelineConfigPath); err != nil {
			return nil, err
		}
	}

	if cfg.Mode != ModeBatch && cfg.Mode != ModeServe {
		return nil, fmt.Errorf("MODE must be %q or %q, got %q", ModeBatch, ModeServe, cfg.Mode)
	}
	return cfg, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
