// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete table sources and result stores.
package port

import (
	"context"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

// TableSource loads the three raw tables of one batch.
type TableSource interface {
	LoadProfiles(ctx context.Context) ([]domain.RawCustomer, error)
	LoadPortfolio(ctx context.Context) ([]domain.RawOffer, error)
	LoadTranscript(ctx context.Context) ([]domain.RawEvent, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Len() int
}
