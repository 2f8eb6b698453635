// Package avalanche exposes the avalanche aggregator and the end-to-end
// analyzer (digest provider + aggregator) behind functional-option
// constructors.
package avalanche

import (
	"context"
	"fmt"

	"github.com/baditaflorin/l"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
	"github.com/rotsutc/go_hash_avalanche/internal/core/avalanche"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
	"github.com/rotsutc/go_hash_avalanche/internal/warmup"
)

// Sentinel errors re-exported for callers matching with errors.Is.
var (
	ErrInvalidRecord = avalanche.ErrInvalidRecord
	ErrEmptyInput    = avalanche.ErrEmptyInput
)

// Thresholds re-exports the band boundaries for external callers.
type Thresholds = avalanche.Thresholds

// DefaultThresholds returns the standard band boundaries.
func DefaultThresholds() Thresholds {
	return avalanche.DefaultThresholds()
}

// Aggregator classifies digest diff records and aggregates them into a
// cross-algorithm report.
type Aggregator struct {
	aggregator ports.Aggregator
	logger     ports.Logger
}

// Option defines a functional option for configuring the Aggregator.
type Option func(*aggregatorConfig)

type aggregatorConfig struct {
	Thresholds avalanche.Thresholds
	Logger     ports.Logger
}

// WithThresholds sets custom band boundaries.
func WithThresholds(t avalanche.Thresholds) Option {
	return func(cfg *aggregatorConfig) {
		cfg.Thresholds = t
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *aggregatorConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// New creates a new Aggregator instance.
func New(opts ...Option) (*Aggregator, error) {
	config := &aggregatorConfig{
		Thresholds: avalanche.DefaultThresholds(),
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

	aggregator, err := avalanche.NewAggregator(config.Thresholds, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		aggregator: aggregator,
		logger:     config.Logger,
	}, nil
}

// Classify judges a single record against the avalanche thresholds.
func (a *Aggregator) Classify(record domain.DigestDiffRecord) (domain.Classification, error) {
	return a.aggregator.Classify(record)
}

// Aggregate classifies every record in input order and computes the mean
// avalanche percentage.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.DigestDiffRecord) (domain.AvalancheReport, error) {
	return a.aggregator.Aggregate(ctx, records)
}

// Analyzer combines a digest provider with an aggregator: it hashes an
// input pair with every configured algorithm and judges the result.
type Analyzer struct {
	digester   ports.Digester
	aggregator ports.Aggregator
	logger     ports.Logger
	warmed     bool
}

// AnalyzerOption defines a functional option for configuring the Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	Thresholds   avalanche.Thresholds
	Algorithms   []digest.Algorithm
	Logger       ports.Logger
	WarmUp       bool
	WarmUpConfig warmup.Config
}

// WithAnalyzerThresholds sets custom band boundaries for the analyzer.
func WithAnalyzerThresholds(t avalanche.Thresholds) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Thresholds = t
	}
}

// WithAlgorithms sets a custom algorithm registry.
func WithAlgorithms(algorithms []digest.Algorithm) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Algorithms = algorithms
	}
}

// WithAnalyzerLogger sets a custom logger for the analyzer.
func WithAnalyzerLogger(lg l.Logger) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithAnalyzerWarmUp enables system warm-up on initialization.
func WithAnalyzerWarmUp(enable bool) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.WarmUp = enable
	}
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	config := &analyzerConfig{
		Thresholds:   avalanche.DefaultThresholds(),
		Algorithms:   digest.DefaultAlgorithms(),
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultConfig(),
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

	digester, err := digest.NewProvider(config.Algorithms, config.Logger)
	if err != nil {
		return nil, err
	}

	aggregator, err := avalanche.NewAggregator(config.Thresholds, config.Logger)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		digester:   digester,
		aggregator: aggregator,
		logger:     config.Logger,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		a.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return a, nil
}

// Algorithms lists the configured algorithm identifiers in record order.
func (a *Analyzer) Algorithms() []string {
	return a.digester.Algorithms()
}

// Records hashes both inputs and returns the raw per-algorithm records
// without judging them.
func (a *Analyzer) Records(ctx context.Context, original, modified string) ([]domain.DigestDiffRecord, error) {
	return a.digester.Compare(ctx, original, modified)
}

// Analyze hashes both inputs and aggregates the per-algorithm bit
// differences into an avalanche report.
func (a *Analyzer) Analyze(ctx context.Context, original, modified string) (domain.AvalancheReport, error) {
	records, err := a.digester.Compare(ctx, original, modified)
	if err != nil {
		return domain.AvalancheReport{}, fmt.Errorf("computing digest diffs: %w", err)
	}

	return a.aggregator.Aggregate(ctx, records)
}

// WarmUp performs system warm-up to optimize performance.
func (a *Analyzer) WarmUp(ctx context.Context, config warmup.Config) {
	if a.warmed {
		a.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(a.logger, config)
	warmupMgr.RegisterAggregator(a.aggregator)
	warmupMgr.RegisterDigester(a.digester)

	warmupMgr.WarmUp(ctx)
	a.warmed = true
}
