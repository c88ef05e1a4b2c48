package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/handler"
	"github.com/boddenberg/offer-prep-go/internal/infra/cache"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/infra/resilience"
	"github.com/boddenberg/offer-prep-go/internal/service"

	"go.uber.org/zap"
)

const runBody = `{
  "reference_date": "2018-08-01",
  "profile": [
    {"id": "A", "gender": "F", "age": 35, "income": 50000, "became_member_on": 20170101},
    {"id": "B", "gender": null, "age": 118, "income": null, "became_member_on": 20180101}
  ],
  "portfolio": [
    {"id": "X", "offer_type": "discount", "duration": 10, "difficulty": 10, "reward": 2, "channels": ["email", "web"]},
    {"id": "Y", "offer_type": "bogo", "duration": 5, "difficulty": 5, "reward": 5, "channels": ["mobile"]}
  ],
  "transcript": [
    {"person": "A", "event": "offer received", "value": {"offer id": "X"}, "time": 0},
    {"person": "A", "event": "offer viewed", "value": {"offer id": "X"}, "time": 6},
    {"person": "A", "event": "transaction", "value": {"amount": 9.5}, "time": 30},
    {"person": "A", "event": "offer completed", "value": {"offer_id": "X", "reward": 2}, "time": 30},
    {"person": "B", "event": "transaction", "value": {"amount": 1}, "time": 31},
    {"person": "A", "event": "offer received", "value": {"offer id": "Y"}, "time": 168}
  ]
}`

func newTestRouter(t *testing.T, verifier *service.TokenVerifier) http.Handler {
	t.Helper()
	return newLimitedRouter(t, verifier, 1<<20)
}

func newLimitedRouter(t *testing.T, verifier *service.TokenVerifier, maxBodyBytes int64) http.Handler {
	t.Helper()
	metrics := observability.NewMetrics()
	store := cache.New[*domain.PipelineResult](time.Minute)
	t.Cleanup(store.Close)
	pipeline := service.NewPipeline(service.Options{SentinelAge: 118, DurationMultiplier: 24, Workers: 2}, metrics, zap.NewNop())
	runs := service.NewRuns(pipeline, store, resilience.NewBulkhead(2), metrics, zap.NewNop())
	return handler.NewRouter(runs, verifier, metrics, maxBodyBytes, zap.NewNop())
}

func do(router http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, router http.Handler) domain.RunSummary {
	t.Helper()
	rec := do(router, http.MethodPost, "/v1/runs", runBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return summary
}

func TestSubmitRun_BodyTooLarge(t *testing.T) {
	router := newLimitedRouter(t, nil, 64)

	rec := do(router, http.MethodPost, "/v1/runs", runBody, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitRun_BodyWithinLimit(t *testing.T) {
	router := newLimitedRouter(t, nil, int64(len(runBody)))
	submit(t, router)
}

func TestDeleteRun(t *testing.T) {
	router := newTestRouter(t, nil)
	summary := submit(t, router)

	rec := do(router, http.MethodDelete, "/v1/runs/"+summary.RunID, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/v1/runs/"+summary.RunID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	rec = do(router, http.MethodDelete, "/v1/runs/"+summary.RunID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t, nil)
	submit(t, router)

	rec := do(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "offerprep_runs_total") {
		t.Error("expected offerprep_runs_total in /metrics output")
	}
}

func TestSubmitRun(t *testing.T) {
	router := newTestRouter(t, nil)
	summary := submit(t, router)

	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if summary.Received != 2 || summary.Viewed != 1 || summary.Completed != 1 {
		t.Errorf("unexpected outcome totals: %+v", summary)
	}
	if summary.RemovedCustomers != 1 || summary.TransactionEvents != 1 {
		t.Errorf("unexpected row counts: %+v", summary)
	}

	rec := do(router, http.MethodGet, "/v1/runs/"+summary.RunID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListOffers(t *testing.T) {
	router := newTestRouter(t, nil)
	summary := submit(t, router)

	rec := do(router, http.MethodGet, "/v1/runs/"+summary.RunID+"/offers?page=1&page_size=1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var page domain.ListResponse[domain.OfferOutcome]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 || len(page.Data) != 1 || !page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	first := page.Data[0]
	if first.Viewed != 1 || first.Completed != 1 || first.CompletedCount != 0 {
		t.Errorf("unexpected first outcome: %+v", first)
	}

	rec = do(router, http.MethodGet, "/v1/runs/"+summary.RunID+"/offers?page=2&page_size=1", "", nil)
	page = domain.ListResponse[domain.OfferOutcome]{}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Data) != 1 || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	if second := page.Data[0]; second.CompletedCount != 1 || second.Completed != 0 {
		t.Errorf("unexpected second outcome: %+v", second)
	}
}

func TestListTransactions(t *testing.T) {
	router := newTestRouter(t, nil)
	summary := submit(t, router)

	rec := do(router, http.MethodGet, "/v1/runs/"+summary.RunID+"/transactions", "", nil)
	var page domain.ListResponse[domain.Transaction]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || page.Data[0].Amount != 9.5 || page.Data[0].Age != 35 {
		t.Errorf("unexpected transactions: %+v", page)
	}
}

func TestUnknownRun(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/v1/runs/missing", "/v1/runs/missing/offers", "/v1/runs/missing/transactions"} {
		rec := do(router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestSubmitRun_Rejections(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"bad reference date", `{"reference_date": "08/01/2018"}`, http.StatusBadRequest},
		{"missing reference date", `{"profile": []}`, http.StatusBadRequest},
		{"unknown offer", strings.Replace(runBody, `"offer id": "Y"`, `"offer id": "Z"`, 1), http.StatusUnprocessableEntity},
		{"unknown event", strings.Replace(runBody, `"offer viewed"`, `"offer clicked"`, 1), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/v1/runs", tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPipelineMetrics(t *testing.T) {
	router := newTestRouter(t, nil)
	submit(t, router)

	rec := do(router, http.MethodGet, "/v1/metrics/pipeline", "", nil)
	var stats domain.PipelineStats
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Runs != 1 || stats.Received != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestJWTGuard(t *testing.T) {
	verifier := service.NewTokenVerifier("test-secret")
	router := newTestRouter(t, verifier)

	rec := do(router, http.MethodGet, "/v1/metrics/pipeline", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, "/v1/metrics/pipeline", "", http.Header{"Authorization": {"Basic abc"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: expected 401, got %d", rec.Code)
	}

	token, err := verifier.Sign("analyst", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec = do(router, http.MethodGet, "/v1/metrics/pipeline", "", http.Header{"Authorization": {"Bearer " + token}})
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz stays open: expected 200, got %d", rec.Code)
	}
}
