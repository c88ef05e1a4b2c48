package source

import (
	"context"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadAll loads the three tables concurrently. The first failure cancels the
// other loads.
func LoadAll(ctx context.Context, src port.TableSource, metrics *observability.Metrics, logger *zap.Logger) (*domain.RawTables, error) {
	ctx, span := tracer.Start(ctx, "source.LoadAll")
	defer span.End()

	var raw domain.RawTables
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := src.LoadProfiles(gCtx)
		if err != nil {
			return loadFailed(TableProfile, err, metrics, logger)
		}
		raw.Profile = rows
		return nil
	})
	g.Go(func() error {
		rows, err := src.LoadPortfolio(gCtx)
		if err != nil {
			return loadFailed(TablePortfolio, err, metrics, logger)
		}
		raw.Portfolio = rows
		return nil
	})
	g.Go(func() error {
		rows, err := src.LoadTranscript(gCtx)
		if err != nil {
			return loadFailed(TableTranscript, err, metrics, logger)
		}
		raw.Transcript = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("raw tables loaded",
		zap.Int("profile", len(raw.Profile)),
		zap.Int("portfolio", len(raw.Portfolio)),
		zap.Int("transcript", len(raw.Transcript)),
	)
	return &raw, nil
}

func loadFailed(table string, err error, metrics *observability.Metrics, logger *zap.Logger) error {
	logger.Error("failed to load table", zap.String("table", table), zap.Error(err))
	metrics.IncrSourceError(table)
	return err
}
