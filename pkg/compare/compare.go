// Package compare exposes the sequence comparator behind a
// functional-option constructor.
package compare

import (
	"context"

	"github.com/baditaflorin/l"
	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
	"github.com/rotsutc/go_hash_avalanche/internal/core/compare"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
	"github.com/rotsutc/go_hash_avalanche/internal/warmup"
)

// Comparator provides positional similarity and alignment of two
// character sequences.
type Comparator struct {
	comparator ports.Comparator
	logger     ports.Logger
	warmed     bool
}

// Option defines a functional option for configuring the Comparator.
type Option func(*comparatorConfig)

type comparatorConfig struct {
	Threshold    float64
	Precision    int
	Placeholder  rune
	Logger       ports.Logger
	WarmUp       bool
	WarmUpConfig warmup.Config
}

// WithThreshold sets the score at or above which inputs are judged
// near-identical.
func WithThreshold(th float64) Option {
	return func(cfg *comparatorConfig) {
		cfg.Threshold = th
	}
}

// WithPrecision sets the number of decimals the score is rounded to.
func WithPrecision(p int) Option {
	return func(cfg *comparatorConfig) {
		cfg.Precision = p
	}
}

// WithPlaceholder sets the rune rendered at absent alignment positions.
func WithPlaceholder(r rune) Option {
	return func(cfg *comparatorConfig) {
		cfg.Placeholder = r
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *comparatorConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *comparatorConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.Config) Option {
	return func(cfg *comparatorConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Comparator instance.
func New(opts ...Option) (*Comparator, error) {
	// Default configuration
	defaultConfig := compare.DefaultConfig()

	config := &comparatorConfig{
		Threshold:    defaultConfig.Threshold,
		Precision:    defaultConfig.Precision,
		Placeholder:  defaultConfig.Placeholder,
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

	// Create core comparator
	coreConfig := compare.Config{
		Threshold:   config.Threshold,
		Precision:   config.Precision,
		Placeholder: config.Placeholder,
	}
	comparator, err := compare.NewComparator(coreConfig, config.Logger)
	if err != nil {
		return nil, err
	}

	c := &Comparator{
		comparator: comparator,
		logger:     config.Logger,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		c.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return c, nil
}

// Similarity scores the positional overlap of the two inputs.
func (c *Comparator) Similarity(ctx context.Context, original, modified string) domain.ComparisonResult {
	return c.comparator.Similarity(ctx, original, modified)
}

// Align produces a padded, position-annotated view of the two inputs.
func (c *Comparator) Align(ctx context.Context, original, modified string) domain.AlignmentResult {
	return c.comparator.Align(ctx, original, modified)
}

// WarmUp performs system warm-up to optimize performance.
func (c *Comparator) WarmUp(ctx context.Context, config warmup.Config) {
	if c.warmed {
		c.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(c.logger, config)
	warmupMgr.RegisterComparator(c.comparator)

	warmupMgr.WarmUp(ctx)
	c.warmed = true
}
