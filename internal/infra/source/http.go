package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// HTTPSource fetches the three tables from {baseURL}/{table}.json with retry,
// circuit breaker, and tracing.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

func (s *HTTPSource) LoadProfiles(ctx context.Context) ([]domain.RawCustomer, error) {
	return fetch[domain.RawCustomer](ctx, s, TableProfile)
}

func (s *HTTPSource) LoadPortfolio(ctx context.Context) ([]domain.RawOffer, error) {
	return fetch[domain.RawOffer](ctx, s, TablePortfolio)
}

func (s *HTTPSource) LoadTranscript(ctx context.Context) ([]domain.RawEvent, error) {
	return fetch[domain.RawEvent](ctx, s, TableTranscript)
}

func fetch[T any](ctx context.Context, s *HTTPSource, table string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "HTTPSource.Load")
	defer span.End()
	span.SetAttributes(attribute.String("table", table))

	var rows []T

	_, err := s.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.cfg, func() error {
			url := fmt.Sprintf("%s/%s.json", s.baseURL, table)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return resilience.Permanent(err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return resilience.Permanent(&domain.ErrNotFound{Resource: "table", ID: table})
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("table source returned status %d", resp.StatusCode)
			}

			decoded, err := decodeTable[T](table, resp.Body)
			if err != nil {
				return resilience.Permanent(err)
			}
			rows = decoded
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "source/" + table}
		}
		var parseErr *domain.ErrParse
		var notFound *domain.ErrNotFound
		if errors.As(err, &parseErr) || errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "source/" + table, Err: err}
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}
