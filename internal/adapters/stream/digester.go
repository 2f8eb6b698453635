// Package stream computes digest diff records from io.Readers, so large
// inputs can be hashed without buffering them in memory.
package stream

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/pool"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// DefaultChunkSize is the copy buffer size used when feeding the hashes.
const DefaultChunkSize = 64 * 1024

// Digester hashes two input streams with every configured algorithm in a
// single pass per stream.
type Digester struct {
	algorithms []digest.Algorithm
	bufPool    *pool.BufferPool
	logger     ports.Logger
}

// NewDigester creates a streaming digester over the given algorithm registry.
func NewDigester(algorithms []digest.Algorithm, logger ports.Logger) (*Digester, error) {
	if len(algorithms) == 0 {
		return nil, fmt.Errorf("at least one algorithm is required")
	}

	return &Digester{
		algorithms: algorithms,
		bufPool:    pool.NewBufferPool(DefaultChunkSize),
		logger:     logger,
	}, nil
}

// CompareReaders consumes both readers fully and returns one record per
// algorithm, in registry order.
func (d *Digester) CompareReaders(ctx context.Context, original, modified io.Reader) ([]domain.DigestDiffRecord, error) {
	origSums, origBytes, err := d.digestAll(ctx, original)
	if err != nil {
		return nil, fmt.Errorf("hashing original stream: %w", err)
	}
	modSums, modBytes, err := d.digestAll(ctx, modified)
	if err != nil {
		return nil, fmt.Errorf("hashing modified stream: %w", err)
	}

	records := make([]domain.DigestDiffRecord, len(d.algorithms))
	for i, alg := range d.algorithms {
		records[i] = domain.DigestDiffRecord{
			Algorithm:      alg.Name,
			OriginalDigest: hex.EncodeToString(origSums[i]),
			ModifiedDigest: hex.EncodeToString(modSums[i]),
			ChangedBits:    digest.ChangedBits(origSums[i], modSums[i]),
			TotalBits:      len(origSums[i]) * 8,
		}
	}

	d.logger.Debug("Computed streaming digest diffs",
		"algorithms", len(records),
		"original_bytes", origBytes,
		"modified_bytes", modBytes,
	)

	return records, nil
}

// digestAll feeds one reader into every algorithm's hash at once and
// returns the digests in registry order.
func (d *Digester) digestAll(ctx context.Context, r io.Reader) ([][]byte, int64, error) {
	hashes := make([]hash.Hash, len(d.algorithms))
	writers := make([]io.Writer, len(d.algorithms))
	for i, alg := range d.algorithms {
		hashes[i] = alg.New()
		writers[i] = hashes[i]
	}

	buffer := d.bufPool.Get()
	defer d.bufPool.Put(buffer)

	var total int64
	mw := io.MultiWriter(writers...)
	for {
		select {
		case <-ctx.Done():
			return nil, total, ctx.Err()
		default:
			// continue
		}

		n, err := r.Read(*buffer)
		if n > 0 {
			total += int64(n)
			if _, werr := mw.Write((*buffer)[:n]); werr != nil {
				return nil, total, werr
			}
		}
		if err == io.EOF {
			sums := make([][]byte, len(hashes))
			for i, h := range hashes {
				sums[i] = h.Sum(nil)
			}
			return sums, total, nil
		}
		if err != nil {
			return nil, total, err
		}
	}
}
