package source

import (
	"context"
	"fmt"
	"os"

	"github.com/boddenberg/offer-prep-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("source")

// FileSource reads the three tables from local files.
type FileSource struct {
	ProfilePath    string
	PortfolioPath  string
	TranscriptPath string
}

// NewFileSource creates a FileSource.
func NewFileSource(profile, portfolio, transcript string) *FileSource {
	return &FileSource{ProfilePath: profile, PortfolioPath: portfolio, TranscriptPath: transcript}
}

func (s *FileSource) LoadProfiles(ctx context.Context) ([]domain.RawCustomer, error) {
	return readFile[domain.RawCustomer](ctx, TableProfile, s.ProfilePath)
}

func (s *FileSource) LoadPortfolio(ctx context.Context) ([]domain.RawOffer, error) {
	return readFile[domain.RawOffer](ctx, TablePortfolio, s.PortfolioPath)
}

func (s *FileSource) LoadTranscript(ctx context.Context) ([]domain.RawEvent, error) {
	return readFile[domain.RawEvent](ctx, TableTranscript, s.TranscriptPath)
}

func readFile[T any](ctx context.Context, table, path string) ([]T, error) {
	_, span := tracer.Start(ctx, "FileSource.Load")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.String("path", path))

	if path == "" {
		return nil, &domain.ErrValidation{Field: table + "_path", Message: "required"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	rows, err := decodeTable[T](table, f)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}
