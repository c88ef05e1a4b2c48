package handler

import (
	"net/http"

	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil verifier leaves /v1 open. Run submissions larger than maxBodyBytes
// are rejected; a non-positive limit disables the cap.
func NewRouter(runs *service.Runs, verifier *service.TokenVerifier, metrics *observability.Metrics, maxBodyBytes int64, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(runs))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if verifier != nil {
			r.Use(JWTAuthMiddleware(verifier, logger))
		}

		r.Post("/runs", submitRunHandler(runs, maxBodyBytes, logger))
		r.Get("/runs/{runId}", getRunHandler(runs, logger))
		r.Delete("/runs/{runId}", deleteRunHandler(runs, logger))
		r.Get("/runs/{runId}/offers", listOutcomesHandler(runs, logger))
		r.Get("/runs/{runId}/transactions", listTransactionsHandler(runs, logger))
		r.Get("/runs/{runId}/customers", listCustomersHandler(runs, logger))
		r.Get("/runs/{runId}/portfolio", listPortfolioHandler(runs, logger))

		r.Get("/metrics/pipeline", pipelineMetricsHandler(metrics))
	})

	return r
}

func healthzHandler(runs *service.Runs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, runs.Health())
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func pipelineMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
