package benchmark

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
	"github.com/rotsutc/go_hash_avalanche/internal/core/avalanche"
	"github.com/rotsutc/go_hash_avalanche/internal/core/compare"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
)

// generateText creates a text of the specified size by repeating a sample text
func generateText(size int) string {
	if size <= 0 {
		return ""
	}

	sample := "The quick brown fox jumps over the lazy dog. This sentence contains all letters of the English alphabet and is commonly used for testing text processing algorithms and systems."
	var sb strings.Builder
	sb.Grow(size)

	for sb.Len() < size {
		sb.WriteString(sample)
		sb.WriteString(" ")
	}

	if sb.Len() > size {
		return sb.String()[:size]
	}

	return sb.String()
}

// mutate flips one character in the middle of the text
func mutate(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return "x"
	}
	mid := len(runes) / 2
	if runes[mid] == 'a' {
		runes[mid] = 'b'
	} else {
		runes[mid] = 'a'
	}
	return string(runes)
}

// BenchmarkHashAlgorithms measures each digest algorithm over 128 bytes of
// pseudo-random input, the message size of the original hash benchmark.
func BenchmarkHashAlgorithms(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 128)
	rng.Read(data)

	for _, alg := range digest.DefaultAlgorithms() {
		b.Run(alg.Name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				h := alg.New()
				h.Write(data)
				h.Sum(nil)
			}
		})
	}
}

// BenchmarkDigestCompare measures the full per-pair record computation.
func BenchmarkDigestCompare(b *testing.B) {
	provider, err := digest.NewProvider(digest.DefaultAlgorithms(), logger.NewNopLogger())
	if err != nil {
		b.Fatalf("failed to create provider: %v", err)
	}

	original := generateText(128)
	modified := mutate(original)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.Compare(ctx, original, modified); err != nil {
			b.Fatalf("compare failed: %v", err)
		}
	}
}

// BenchmarkSimilarity measures the comparator over different input sizes.
func BenchmarkSimilarity(b *testing.B) {
	comparator, err := compare.NewComparator(compare.DefaultConfig(), logger.NewNopLogger())
	if err != nil {
		b.Fatalf("failed to create comparator: %v", err)
	}

	sizes := map[string]int{
		"small":  100,
		"medium": 10000,
		"large":  100000,
	}

	ctx := context.Background()
	for name, size := range sizes {
		original := generateText(size)
		modified := mutate(original)

		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				comparator.Similarity(ctx, original, modified)
			}
		})
	}
}

// BenchmarkAlign measures alignment construction over different input sizes.
func BenchmarkAlign(b *testing.B) {
	comparator, err := compare.NewComparator(compare.DefaultConfig(), logger.NewNopLogger())
	if err != nil {
		b.Fatalf("failed to create comparator: %v", err)
	}

	original := generateText(10000)
	modified := original[:9000]
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		comparator.Align(ctx, original, modified)
	}
}

// BenchmarkAggregate measures report aggregation over a typical record set.
func BenchmarkAggregate(b *testing.B) {
	aggregator, err := avalanche.NewAggregator(avalanche.DefaultThresholds(), logger.NewNopLogger())
	if err != nil {
		b.Fatalf("failed to create aggregator: %v", err)
	}

	records := []domain.DigestDiffRecord{
		{Algorithm: "md5", ChangedBits: 62, TotalBits: 128},
		{Algorithm: "sha1", ChangedBits: 88, TotalBits: 160},
		{Algorithm: "sha256", ChangedBits: 125, TotalBits: 256},
		{Algorithm: "sha512", ChangedBits: 262, TotalBits: 512},
		{Algorithm: "sha3-256", ChangedBits: 139, TotalBits: 256},
		{Algorithm: "sha3-512", ChangedBits: 253, TotalBits: 512},
		{Algorithm: "blake2b-256", ChangedBits: 130, TotalBits: 256},
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := aggregator.Aggregate(ctx, records); err != nil {
			b.Fatalf("aggregate failed: %v", err)
		}
	}
}
