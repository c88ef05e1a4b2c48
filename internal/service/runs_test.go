package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/infra/cache"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/infra/resilience"
	"github.com/boddenberg/offer-prep-go/internal/service"
)

func newRuns(t *testing.T, bulkhead *resilience.Bulkhead) (*service.Runs, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	store := cache.New[*domain.PipelineResult](time.Minute)
	t.Cleanup(store.Close)
	p := service.NewPipeline(service.Options{SentinelAge: 118, DurationMultiplier: 1, Workers: 1}, metrics, zap.NewNop())
	return service.NewRuns(p, store, bulkhead, metrics, zap.NewNop()), metrics
}

func TestRuns_SubmitAndGet(t *testing.T) {
	runs, metrics := newRuns(t, resilience.NewBulkhead(2))
	ctx := context.Background()

	summary, err := runs.Submit(ctx, rawTables(), reference)
	require.NoError(t, err)

	res, err := runs.Get(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, *summary, res.Summary)
	assert.Len(t, res.Outcomes, 2)

	_, err = runs.Get(ctx, "nope")
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)

	assert.InDelta(t, 0.5, metrics.Snapshot().RunCacheHitRate, 1e-9)

	h := runs.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, 1, h.CachedRuns)
	assert.Equal(t, 0, h.ActiveRuns)
}

func TestRuns_Delete(t *testing.T) {
	runs, _ := newRuns(t, resilience.NewBulkhead(1))
	ctx := context.Background()

	summary, err := runs.Submit(ctx, rawTables(), reference)
	require.NoError(t, err)
	require.Equal(t, 1, runs.Health().CachedRuns)

	require.NoError(t, runs.Delete(ctx, summary.RunID))
	assert.Equal(t, 0, runs.Health().CachedRuns)

	_, err = runs.Get(ctx, summary.RunID)
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)

	err = runs.Delete(ctx, summary.RunID)
	require.ErrorAs(t, err, &nf)
}

func TestRuns_FailedRunIsNotStored(t *testing.T) {
	runs, _ := newRuns(t, resilience.NewBulkhead(1))
	raw := rawTables()
	raw.Profile[0].BecameMemberOn = "bad"

	_, err := runs.Submit(context.Background(), raw, reference)
	require.Error(t, err)
	assert.Equal(t, 0, runs.Health().CachedRuns)
}

func TestRuns_BusyWhenNoSlot(t *testing.T) {
	bulkhead := resilience.NewBulkhead(1)
	require.NoError(t, bulkhead.Acquire(context.Background()))
	defer bulkhead.Release()

	runs, _ := newRuns(t, bulkhead)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := runs.Submit(ctx, rawTables(), reference)
	var busy *domain.ErrBusy
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, 1, runs.Health().ActiveRuns)
}
