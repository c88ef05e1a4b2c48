// Package sink writes pipeline results to disk as JSON lines.
package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

// Output file names inside the output directory.
const (
	OffersFile       = "offers.jsonl"
	TransactionsFile = "transactions.jsonl"
	CustomerIDsFile  = "customer_ids.jsonl"
	OfferIDsFile     = "offer_ids.jsonl"
	SummaryFile      = "summary.json"
)

// WriteResult writes every table of res into dir, creating it if needed.
// All files are staged in a hidden directory under dir and moved into place
// only after every table encoded, so a failed write leaves dir untouched.
func WriteResult(dir string, res *domain.PipelineResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(dir, ".staging-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := WriteLines(filepath.Join(staging, OffersFile), res.Outcomes); err != nil {
		return err
	}
	if err := WriteLines(filepath.Join(staging, TransactionsFile), res.Transactions); err != nil {
		return err
	}
	if err := WriteLines(filepath.Join(staging, CustomerIDsFile), res.CustomerIDs); err != nil {
		return err
	}
	if err := WriteLines(filepath.Join(staging, OfferIDsFile), res.OfferIDs); err != nil {
		return err
	}
	summary, err := json.MarshalIndent(res.Summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, SummaryFile), append(summary, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", SummaryFile, err)
	}

	for _, name := range []string{OffersFile, TransactionsFile, CustomerIDsFile, OfferIDsFile, SummaryFile} {
		if err := os.Rename(filepath.Join(staging, name), filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return nil
}

// WriteLines writes one JSON object per row to path. The file is written
// under a temporary name and renamed into place once complete.
func WriteLines[T any](path string, rows []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
