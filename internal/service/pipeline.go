package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/infra/observability"
	"github.com/boddenberg/offer-prep-go/internal/transform"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/pipeline")

// Stage names, used as span suffixes and metric labels.
const (
	StageProfiles     = "profiles"
	StagePortfolio    = "portfolio"
	StagePartition    = "partition"
	StageEnrichOffers = "enrich_offers"
	StageAttribute    = "attribute"
	StageTransactions = "transactions"
)

// Options are the transform settings of a Pipeline.
type Options struct {
	// Reference is used when Run is called with a zero reference.
	Reference          time.Time
	SentinelAge        int
	GenderStart        int
	DurationMultiplier int
	Workers            int
}

// Pipeline turns the three raw tables of one batch into the offer outcome
// and transaction tables.
type Pipeline struct {
	opts       Options
	attributor *transform.Attributor
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewPipeline creates the pipeline service with all dependencies injected.
func NewPipeline(opts Options, metrics *observability.Metrics, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		opts:       opts,
		attributor: transform.NewAttributor(opts.Workers),
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes every stage for one batch. Either the full result is returned
// or an error; nothing is returned from a failed run.
func (p *Pipeline) Run(ctx context.Context, raw *domain.RawTables, reference time.Time) (*domain.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", runID))

	if reference.IsZero() {
		reference = p.opts.Reference
	}

	start := time.Now()
	res, err := p.run(ctx, raw, reference)
	if err != nil {
		p.metrics.IncrRun("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("pipeline run failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return nil, err
	}

	res.Summary = summarize(res, runID, reference, time.Since(start))
	p.metrics.IncrRun("success")
	p.metrics.AddRemovedCustomers(len(res.RemovedCustomers))
	p.metrics.RecordOutcomes(res.Summary.Received, res.Summary.Viewed, res.Summary.Completed)

	p.logger.Info("pipeline run completed",
		zap.String("run_id", runID),
		zap.Int("customers", res.Summary.Customers),
		zap.Int("removed_customers", res.Summary.RemovedCustomers),
		zap.Int("offer_events", res.Summary.OfferEvents),
		zap.Int("transaction_events", res.Summary.TransactionEvents),
		zap.Int64("duration_ms", res.Summary.DurationMs),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, raw *domain.RawTables, reference time.Time) (*domain.PipelineResult, error) {
	p.metrics.AddRows("profile", len(raw.Profile))
	p.metrics.AddRows("portfolio", len(raw.Portfolio))
	p.metrics.AddRows("transcript", len(raw.Transcript))

	var profiles *transform.ProfileResult
	err := p.stage(ctx, StageProfiles, func(context.Context) error {
		var err error
		profiles, err = transform.NormalizeProfiles(raw.Profile, transform.ProfileOptions{
			Reference:   reference,
			SentinelAge: p.opts.SentinelAge,
			GenderStart: p.opts.GenderStart,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("normalize profiles: %w", err)
	}

	var portfolio *transform.PortfolioResult
	err = p.stage(ctx, StagePortfolio, func(context.Context) error {
		var err error
		portfolio, err = transform.NormalizePortfolio(raw.Portfolio, transform.PortfolioOptions{
			DurationMultiplier: p.opts.DurationMultiplier,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("normalize portfolio: %w", err)
	}

	var parts *transform.Partition
	err = p.stage(ctx, StagePartition, func(context.Context) error {
		var err error
		parts, err = transform.PartitionEvents(raw.Transcript, profiles.IDs, profiles.Removed)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("partition transcript: %w", err)
	}

	var offerEvents []domain.OfferEvent
	err = p.stage(ctx, StageEnrichOffers, func(context.Context) error {
		var err error
		offerEvents, err = transform.EnrichOfferEvents(parts.Offers, profiles.Customers, portfolio.Offers, portfolio.IDs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("enrich offer events: %w", err)
	}

	var outcomes []domain.OfferOutcome
	err = p.stage(ctx, StageAttribute, func(ctx context.Context) error {
		var err error
		outcomes, err = p.attributor.Attribute(ctx, offerEvents)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("attribute outcomes: %w", err)
	}

	var transactions []domain.Transaction
	err = p.stage(ctx, StageTransactions, func(context.Context) error {
		var err error
		transactions, err = transform.EnrichTransactions(parts.Transactions, profiles.Customers)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("enrich transactions: %w", err)
	}

	p.metrics.AddRows("offer_outcomes", len(outcomes))
	p.metrics.AddRows("transactions", len(transactions))

	return &domain.PipelineResult{
		Outcomes:         outcomes,
		Transactions:     transactions,
		Customers:        profiles.Customers,
		Portfolio:        portfolio.Offers,
		RemovedCustomers: profiles.Removed,
		CustomerIDs:      profiles.IDs.Table(),
		OfferIDs:         portfolio.IDs.Table(),
		Summary:          domain.RunSummary{OfferEvents: len(offerEvents)},
	}, nil
}

// stage runs fn inside its own span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "Pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	p.logger.Debug("stage done", zap.String("stage", name), zap.Duration("took", time.Since(start)))
	return nil
}

func summarize(res *domain.PipelineResult, runID string, reference time.Time, took time.Duration) domain.RunSummary {
	s := domain.RunSummary{
		RunID:             runID,
		ReferenceDate:     reference.Format("2006-01-02"),
		Customers:         len(res.Customers),
		RemovedCustomers:  len(res.RemovedCustomers),
		Offers:            len(res.Portfolio),
		OfferEvents:       res.Summary.OfferEvents,
		Received:          len(res.Outcomes),
		TransactionEvents: len(res.Transactions),
		DurationMs:        took.Milliseconds(),
		CompletedAt:       time.Now().UTC(),
	}
	for _, o := range res.Outcomes {
		s.Viewed += o.Viewed
		s.Completed += o.Completed
	}
	return s
}
