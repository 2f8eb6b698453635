package ports

import (
	"context"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
)

// Aggregator defines the interface for turning per-algorithm digest diff
// records into quality classifications and a cross-algorithm report.
type Aggregator interface {
	// Classify judges a single record against the avalanche thresholds.
	Classify(record domain.DigestDiffRecord) (domain.Classification, error)

	// Aggregate classifies every record in input order and computes the
	// mean avalanche percentage.
	Aggregate(ctx context.Context, records []domain.DigestDiffRecord) (domain.AvalancheReport, error)
}
