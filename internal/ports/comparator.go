package ports

import (
	"context"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
)

// Comparator defines the interface for positional comparison of two
// character sequences.
type Comparator interface {
	// Similarity scores the positional overlap of the two inputs.
	Similarity(ctx context.Context, original, modified string) domain.ComparisonResult

	// Align produces a padded, position-annotated view of the two inputs.
	Align(ctx context.Context, original, modified string) domain.AlignmentResult
}
