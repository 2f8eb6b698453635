// hashavalanche.go
// Package hashavalanche demonstrates the avalanche effect of hash
// functions: given two near-identical inputs it scores how similar the
// inputs are, shows where they diverge, and judges how thoroughly each
// hash algorithm scrambles its digest bits in response.
//
// This file is the one-call convenience API with default configuration
// and no log output. For custom thresholds, logging or warm-up, use the
// constructors in pkg/compare, pkg/avalanche and pkg/streaming.
package hashavalanche

import (
	"context"
	"sync"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
	"github.com/rotsutc/go_hash_avalanche/internal/core/avalanche"
	"github.com/rotsutc/go_hash_avalanche/internal/core/compare"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
)

// Engine value types, re-exported for callers of the flat API.
type (
	ComparisonResult = domain.ComparisonResult
	AlignmentResult  = domain.AlignmentResult
	AlignedUnit      = domain.AlignedUnit
	DigestDiffRecord = domain.DigestDiffRecord
	Classification   = domain.Classification
	AvalancheReport  = domain.AvalancheReport
	QualityBand      = domain.QualityBand
)

// Quality bands.
const (
	BandIdeal   = domain.BandIdeal
	BandWarning = domain.BandWarning
	BandPoor    = domain.BandPoor
)

// Sentinel errors, matchable with errors.Is.
var (
	ErrInvalidRecord = avalanche.ErrInvalidRecord
	ErrEmptyInput    = avalanche.ErrEmptyInput
)

type engine struct {
	comparator *compare.Comparator
	aggregator *avalanche.Aggregator
	digester   *digest.Provider
}

// defaults builds the shared default engine once. Default configurations
// always validate, so construction cannot fail.
var defaults = sync.OnceValue(func() *engine {
	lg := logger.NewNopLogger()

	comparator, err := compare.NewComparator(compare.DefaultConfig(), lg)
	if err != nil {
		panic(err)
	}
	aggregator, err := avalanche.NewAggregator(avalanche.DefaultThresholds(), lg)
	if err != nil {
		panic(err)
	}
	digester, err := digest.NewProvider(digest.DefaultAlgorithms(), lg)
	if err != nil {
		panic(err)
	}

	return &engine{
		comparator: comparator,
		aggregator: aggregator,
		digester:   digester,
	}
})

// Similarity scores the positional overlap of the two inputs as a
// percentage of the longer length, rounded to one decimal. Two empty
// inputs score 100.0.
func Similarity(original, modified string) ComparisonResult {
	return defaults().comparator.Similarity(context.Background(), original, modified)
}

// Align pads both inputs to the longer length and annotates every
// position as match or mismatch.
func Align(original, modified string) AlignmentResult {
	return defaults().comparator.Align(context.Background(), original, modified)
}

// Classify judges a single digest diff record against the default
// avalanche thresholds.
func Classify(record DigestDiffRecord) (Classification, error) {
	return defaults().aggregator.Classify(record)
}

// Aggregate classifies every record in input order and computes the mean
// avalanche percentage.
func Aggregate(records []DigestDiffRecord) (AvalancheReport, error) {
	return defaults().aggregator.Aggregate(context.Background(), records)
}

// Analyze hashes both inputs with the default algorithm registry and
// aggregates the per-algorithm bit differences into an avalanche report.
func Analyze(original, modified string) (AvalancheReport, error) {
	records, err := defaults().digester.Compare(context.Background(), original, modified)
	if err != nil {
		return AvalancheReport{}, err
	}
	return Aggregate(records)
}
