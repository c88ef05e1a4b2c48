package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/config"
	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/handler"
	"github.com/boddenberg/offer-prep-go/internal/infra/cache"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/infra/resilience"
	"github.com/boddenberg/offer-prep-go/internal/infra/sink"
	"github.com/boddenberg/offer-prep-go/internal/infra/source"
	"github.com/boddenberg/offer-prep-go/internal/port"
	"github.com/boddenberg/offer-prep-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("mode", cfg.Mode),
		zap.String("log_level", cfg.LogLevel),
		zap.String("source_url", cfg.SourceURL),
		zap.String("pipeline_config", cfg.PipelineConfigPath),
		zap.Int("workers", cfg.Pipeline.Workers),
		zap.Int("sentinel_age", cfg.Pipeline.SentinelAge),
		zap.Int("gender_start", cfg.Pipeline.GenderStart),
		zap.Int("duration_multiplier", cfg.Pipeline.DurationMultiplier),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("auth_enabled", cfg.JWTSecret != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "offer-prep")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Services ---
	pipeline := service.NewPipeline(service.Options{
		Reference:          cfg.Pipeline.Reference,
		SentinelAge:        cfg.Pipeline.SentinelAge,
		GenderStart:        cfg.Pipeline.GenderStart,
		DurationMultiplier: cfg.Pipeline.DurationMultiplier,
		Workers:            cfg.Pipeline.Workers,
	}, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeServe:
		err = serve(ctx, cfg, pipeline, metrics, logger)
	default:
		err = batch(ctx, cfg, pipeline, metrics, logger)
	}
	if err != nil {
		logger.Error("offerprep failed", zap.String("mode", cfg.Mode), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func batch(ctx context.Context, cfg *config.Config, pipeline *service.Pipeline, metrics *observability.Metrics, logger *zap.Logger) error {
	var src port.TableSource
	if cfg.SourceURL != "" {
		logger.Info("loading tables over HTTP", zap.String("source_url", cfg.SourceURL))
		src = source.NewHTTPSource(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SourceURL,
			resilience.NewCircuitBreaker("table-source"),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
		)
	} else {
		logger.Info("loading tables from files",
			zap.String("profile", cfg.ProfilePath),
			zap.String("portfolio", cfg.PortfolioPath),
			zap.String("transcript", cfg.TranscriptPath),
		)
		src = source.NewFileSource(cfg.ProfilePath, cfg.PortfolioPath, cfg.TranscriptPath)
	}

	raw, err := source.LoadAll(ctx, src, metrics, logger)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	res, err := pipeline.Run(ctx, raw, time.Time{})
	if err != nil {
		return err
	}

	if err := sink.WriteResult(cfg.OutputDir, res); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("batch written",
		zap.String("run_id", res.Summary.RunID),
		zap.String("output_dir", cfg.OutputDir),
		zap.Int("offer_rows", len(res.Outcomes)),
		zap.Int("transaction_rows", len(res.Transactions)),
	)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, pipeline *service.Pipeline, metrics *observability.Metrics, logger *zap.Logger) error {
	// --- Run store ---
	store := cache.New[*domain.PipelineResult](cfg.RunCacheTTL)
	defer store.Close()

	runs := service.NewRuns(pipeline, store, resilience.NewBulkhead(cfg.MaxConcurrency), metrics, logger)

	var verifier *service.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = service.NewTokenVerifier(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, /v1 routes are unauthenticated")
	}

	// --- Router ---
	router := handler.NewRouter(runs, verifier, metrics, cfg.MaxBodyBytes, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful shutdown ---
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
