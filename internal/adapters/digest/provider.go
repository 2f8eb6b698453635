// Package digest implements the input-provider side of the engine: it
// hashes an input pair with a registry of algorithms and reports the
// per-algorithm bit differences as DigestDiffRecords.
package digest

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/bits"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// Algorithm pairs an identifier with a digest constructor.
type Algorithm struct {
	Name string
	New  func() hash.Hash
}

// DefaultAlgorithms returns the standard registry: the MD5/SHA families
// plus SHA-3 and BLAKE2b-256.
func DefaultAlgorithms() []Algorithm {
	return []Algorithm{
		{Name: "md5", New: md5.New},
		{Name: "sha1", New: sha1.New},
		{Name: "sha256", New: sha256.New},
		{Name: "sha512", New: sha512.New},
		{Name: "sha3-256", New: sha3.New256},
		{Name: "sha3-512", New: sha3.New512},
		{Name: "blake2b-256", New: func() hash.Hash {
			h, _ := blake2b.New256(nil) // no error with a nil key
			return h
		}},
	}
}

// ByName returns the subset of the default registry matching the given
// identifiers, in the given order.
func ByName(names ...string) ([]Algorithm, error) {
	registry := make(map[string]Algorithm)
	for _, alg := range DefaultAlgorithms() {
		registry[alg.Name] = alg
	}

	selected := make([]Algorithm, 0, len(names))
	for _, name := range names {
		alg, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown algorithm %q", name)
		}
		selected = append(selected, alg)
	}
	return selected, nil
}

// Provider computes digests and bit differences for an input pair.
type Provider struct {
	algorithms []Algorithm
	logger     ports.Logger
}

// NewProvider creates a digest provider over the given algorithm registry.
func NewProvider(algorithms []Algorithm, logger ports.Logger) (*Provider, error) {
	if len(algorithms) == 0 {
		return nil, errors.New("at least one algorithm is required")
	}
	for _, alg := range algorithms {
		if alg.Name == "" || alg.New == nil {
			return nil, errors.New("algorithm entries need a name and a constructor")
		}
	}

	return &Provider{
		algorithms: algorithms,
		logger:     logger,
	}, nil
}

// Algorithms lists the configured algorithm identifiers in record order.
func (p *Provider) Algorithms() []string {
	names := make([]string, len(p.algorithms))
	for i, alg := range p.algorithms {
		names[i] = alg.Name
	}
	return names
}

// Compare hashes both inputs with every configured algorithm and returns
// one record per algorithm, in registry order.
func (p *Provider) Compare(ctx context.Context, original, modified string) ([]domain.DigestDiffRecord, error) {
	records := make([]domain.DigestDiffRecord, 0, len(p.algorithms))

	for _, alg := range p.algorithms {
		select {
		case <-ctx.Done():
			p.logger.Error("Digest comparison cancelled", "error", ctx.Err())
			return nil, ctx.Err()
		default:
			// continue
		}

		origSum := sum(alg, []byte(original))
		modSum := sum(alg, []byte(modified))

		record := domain.DigestDiffRecord{
			Algorithm:      alg.Name,
			OriginalDigest: hex.EncodeToString(origSum),
			ModifiedDigest: hex.EncodeToString(modSum),
			ChangedBits:    ChangedBits(origSum, modSum),
			TotalBits:      len(origSum) * 8,
		}
		records = append(records, record)

		p.logger.Debug("Computed digest diff",
			"algorithm", alg.Name,
			"changed_bits", record.ChangedBits,
			"total_bits", record.TotalBits,
		)
	}

	return records, nil
}

func sum(alg Algorithm, data []byte) []byte {
	h := alg.New()
	h.Write(data)
	return h.Sum(nil)
}

// ChangedBits counts the differing bits of two equal-width digests via
// XOR and popcount.
func ChangedBits(a, b []byte) int {
	count := 0
	for i := range a {
		count += bits.OnesCount8(a[i] ^ b[i])
	}
	return count
}
