// Package streaming exposes the stream-based analyzer: digest diff
// records are computed from io.Readers instead of in-memory strings.
package streaming

import (
	"context"
	"fmt"
	"io"

	"github.com/baditaflorin/l"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/stream"
	"github.com/rotsutc/go_hash_avalanche/internal/core/avalanche"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// Analyzer hashes two input streams and aggregates the per-algorithm bit
// differences into an avalanche report.
type Analyzer struct {
	digester   ports.StreamDigester
	aggregator ports.Aggregator
	logger     ports.Logger
}

// Option defines a functional option for configuring the streaming Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	Thresholds avalanche.Thresholds
	Algorithms []digest.Algorithm
	Logger     ports.Logger
}

// WithThresholds sets custom band boundaries.
func WithThresholds(t avalanche.Thresholds) Option {
	return func(cfg *analyzerConfig) {
		cfg.Thresholds = t
	}
}

// WithAlgorithms sets a custom algorithm registry.
func WithAlgorithms(algorithms []digest.Algorithm) Option {
	return func(cfg *analyzerConfig) {
		cfg.Algorithms = algorithms
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *analyzerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// New creates a new streaming Analyzer instance.
func New(opts ...Option) (*Analyzer, error) {
	config := &analyzerConfig{
		Thresholds: avalanche.DefaultThresholds(),
		Algorithms: digest.DefaultAlgorithms(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	// Set up logger if not provided
	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	digester, err := stream.NewDigester(config.Algorithms, config.Logger)
	if err != nil {
		return nil, err
	}

	aggregator, err := avalanche.NewAggregator(config.Thresholds, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		digester:   digester,
		aggregator: aggregator,
		logger:     config.Logger,
	}, nil
}

// Records consumes both readers fully and returns the raw per-algorithm
// records without judging them.
func (a *Analyzer) Records(ctx context.Context, original, modified io.Reader) ([]domain.DigestDiffRecord, error) {
	return a.digester.CompareReaders(ctx, original, modified)
}

// AnalyzeReaders consumes both readers fully and aggregates the
// per-algorithm bit differences into an avalanche report.
func (a *Analyzer) AnalyzeReaders(ctx context.Context, original, modified io.Reader) (domain.AvalancheReport, error) {
	records, err := a.digester.CompareReaders(ctx, original, modified)
	if err != nil {
		return domain.AvalancheReport{}, fmt.Errorf("computing streaming digest diffs: %w", err)
	}

	return a.aggregator.Aggregate(ctx, records)
}
