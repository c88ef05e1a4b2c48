package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const referenceLayout = "2006-01-02"

// ============================================================
// Runs
// POST   /v1/runs
// GET    /v1/runs/{runId}
// DELETE /v1/runs/{runId}
// ============================================================

func submitRunHandler(runs *service.Runs, maxBodyBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/runs")
		defer span.End()

		body := r.Body
		if maxBodyBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		var req domain.RunRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("run body too large", zap.Int64("limit", tooLarge.Limit))
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var reference time.Time
		if req.ReferenceDate != "" {
			ref, err := time.ParseInLocation(referenceLayout, req.ReferenceDate, time.UTC)
			if err != nil {
				writeError(w, http.StatusBadRequest, "reference_date must be YYYY-MM-DD")
				return
			}
			reference = ref
		}
		span.SetAttributes(
			attribute.Int("rows.profile", len(req.Profile)),
			attribute.Int("rows.portfolio", len(req.Portfolio)),
			attribute.Int("rows.transcript", len(req.Transcript)),
		)

		summary, err := runs.Submit(ctx, &req.RawTables, reference)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		logger.Info("run submitted",
			zap.String("run_id", summary.RunID),
			zap.String("subject", SubjectFromContext(ctx)),
		)
		writeJSON(w, http.StatusCreated, summary)
	}
}

func getRunHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runs.Get(r.Context(), chi.URLParam(r, "runId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res.Summary)
	}
}

func deleteRunHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := runs.Delete(r.Context(), chi.URLParam(r, "runId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Run outputs (paginated)
// GET /v1/runs/{runId}/offers
// GET /v1/runs/{runId}/transactions
// GET /v1/runs/{runId}/customers
// GET /v1/runs/{runId}/portfolio
// ============================================================

func listOutcomesHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return listRunRows(runs, logger, func(res *domain.PipelineResult) []domain.OfferOutcome { return res.Outcomes })
}

func listTransactionsHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return listRunRows(runs, logger, func(res *domain.PipelineResult) []domain.Transaction { return res.Transactions })
}

func listCustomersHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return listRunRows(runs, logger, func(res *domain.PipelineResult) []domain.Customer { return res.Customers })
}

func listPortfolioHandler(runs *service.Runs, logger *zap.Logger) http.HandlerFunc {
	return listRunRows(runs, logger, func(res *domain.PipelineResult) []domain.Offer { return res.Portfolio })
}

func listRunRows[T any](runs *service.Runs, logger *zap.Logger, rows func(*domain.PipelineResult) []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runs.Get(r.Context(), chi.URLParam(r, "runId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		page, pageSize := parsePagination(r)
		writeJSON(w, http.StatusOK, paginate(rows(res), page, pageSize))
	}
}
