package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/infra/resilience"
	"github.com/boddenberg/offer-prep-go/internal/port"

	"go.uber.org/zap"
)

const runsCache = "runs"

// Runs executes submitted batches and keeps their results for later reads.
// At most the bulkhead's capacity of runs execute at once.
type Runs struct {
	pipeline *Pipeline
	store    port.Cache[*domain.PipelineResult]
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewRuns creates the run service.
func NewRuns(
	pipeline *Pipeline,
	store port.Cache[*domain.PipelineResult],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Runs {
	return &Runs{
		pipeline: pipeline,
		store:    store,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// Submit runs the pipeline over raw and stores the result under its run id.
func (r *Runs) Submit(ctx context.Context, raw *domain.RawTables, reference time.Time) (*domain.RunSummary, error) {
	ctx, span := tracer.Start(ctx, "Runs.Submit")
	defer span.End()

	if err := r.bulkhead.Acquire(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &domain.ErrBusy{Resource: "pipeline"}
		}
		return nil, err
	}
	defer r.bulkhead.Release()

	res, err := r.pipeline.Run(ctx, raw, reference)
	if err != nil {
		return nil, err
	}
	r.store.Set(res.Summary.RunID, res)
	return &res.Summary, nil
}

// Get returns a stored run result.
func (r *Runs) Get(ctx context.Context, runID string) (*domain.PipelineResult, error) {
	_, span := tracer.Start(ctx, "Runs.Get")
	defer span.End()

	res, ok := r.store.Get(runID)
	if !ok {
		r.metrics.IncrCacheMiss(runsCache)
		return nil, &domain.ErrNotFound{Resource: "run", ID: runID}
	}
	r.metrics.IncrCacheHit(runsCache)
	return res, nil
}

// Delete drops a stored run result.
func (r *Runs) Delete(ctx context.Context, runID string) error {
	_, span := tracer.Start(ctx, "Runs.Delete")
	defer span.End()

	if _, ok := r.store.Get(runID); !ok {
		return &domain.ErrNotFound{Resource: "run", ID: runID}
	}
	r.store.Delete(runID)
	r.logger.Info("run deleted", zap.String("run_id", runID))
	return nil
}

// Health reports active and stored runs.
func (r *Runs) Health() *domain.HealthStatus {
	return &domain.HealthStatus{
		Status:     "healthy",
		ActiveRuns: r.bulkhead.InUse(),
		CachedRuns: r.store.Len(),
		CheckedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
