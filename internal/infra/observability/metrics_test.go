package observability_test

import (
	"testing"

	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
)

func TestSnapshot_Rates(t *testing.T) {
	m := observability.NewMetrics()

	m.RecordOutcomes(10, 6, 3)
	m.RecordOutcomes(10, 2, 1)
	m.AddRemovedCustomers(4)
	m.IncrRun("success")
	m.IncrRun("error")
	m.IncrCacheHit("runs")
	m.IncrCacheMiss("runs")
	m.IncrCacheMiss("runs")
	m.IncrCacheMiss("runs")

	s := m.Snapshot()
	if s.Runs != 2 || s.FailedRuns != 1 {
		t.Errorf("expected 2 runs / 1 failed, got %d / %d", s.Runs, s.FailedRuns)
	}
	if s.Received != 20 {
		t.Errorf("expected 20 received, got %d", s.Received)
	}
	if s.ViewRate != 0.4 {
		t.Errorf("expected view rate 0.4, got %f", s.ViewRate)
	}
	if s.CompletionRate != 0.2 {
		t.Errorf("expected completion rate 0.2, got %f", s.CompletionRate)
	}
	if s.RemovedCustomers != 4 {
		t.Errorf("expected 4 removed customers, got %d", s.RemovedCustomers)
	}
	if s.RunCacheHitRate != 0.25 {
		t.Errorf("expected cache hit rate 0.25, got %f", s.RunCacheHitRate)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	s := observability.NewMetrics().Snapshot()
	if s.Runs != 0 || s.ViewRate != 0 || s.RunCacheHitRate != 0 {
		t.Errorf("expected zero snapshot, got %+v", s)
	}
}

func TestNewMetrics_PrivateRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.AddRows("profile", 3)

	families, err := b.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "offerprep_rows_total" {
			t.Fatal("rows recorded on one registry leaked into another")
		}
	}
}
