package ports

import (
	"context"
	"io"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
)

// Digester defines the input-provider contract: it hashes an input pair
// with every configured algorithm and reports the per-algorithm bit
// differences. The engine core never implements this itself.
type Digester interface {
	// Compare hashes both inputs and returns one record per algorithm.
	Compare(ctx context.Context, original, modified string) ([]domain.DigestDiffRecord, error)

	// Algorithms lists the configured algorithm identifiers in record order.
	Algorithms() []string
}

// StreamDigester produces the same records from two input streams.
type StreamDigester interface {
	CompareReaders(ctx context.Context, original, modified io.Reader) ([]domain.DigestDiffRecord, error)
}
