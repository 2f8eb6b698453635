package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// Config defines configuration for warming up the system
type Config struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Sample input size for warmup
	SampleSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultConfig returns the default warmup configuration
func DefaultConfig() Config {
	return Config{
		Concurrency: runtime.NumCPU(),
		Iterations:  1000,
		SampleSize:  256,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	comparators []ports.Comparator
	aggregators []ports.Aggregator
	digesters   []ports.Digester
	config      Config
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config Config) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterComparator adds a comparator to be warmed up
func (wm *Manager) RegisterComparator(c ports.Comparator) {
	wm.comparators = append(wm.comparators, c)
}

// RegisterAggregator adds an aggregator to be warmed up
func (wm *Manager) RegisterAggregator(a ports.Aggregator) {
	wm.aggregators = append(wm.aggregators, a)
}

// RegisterDigester adds a digester to be warmed up
func (wm *Manager) RegisterDigester(d ports.Digester) {
	wm.digesters = append(wm.digesters, d)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.comparators)+len(wm.aggregators)+len(wm.digesters),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	// Create a context with timeout if duration is specified
	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	wm.warmUpComparators(warmupCtx)
	wm.warmUpAggregators(warmupCtx)
	wm.warmUpDigesters(warmupCtx)

	// Force garbage collection if configured
	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

func (wm *Manager) warmUpComparators(ctx context.Context) {
	if len(wm.comparators) == 0 {
		return
	}

	wm.logger.Debug("Warming up comparators", "count", len(wm.comparators))

	original := sampleInput(wm.config.SampleSize)
	flipped := flipFirstRune(original)
	truncated := original[:len(original)/2]

	wm.runRoutines(ctx, func(ctx context.Context, iteration int) {
		for _, comparator := range wm.comparators {
			switch iteration % 3 {
			case 0:
				_ = comparator.Similarity(ctx, original, original)
			case 1:
				_ = comparator.Similarity(ctx, original, flipped)
			default:
				_ = comparator.Align(ctx, original, truncated)
			}
		}
	})
}

func (wm *Manager) warmUpAggregators(ctx context.Context) {
	if len(wm.aggregators) == 0 {
		return
	}

	wm.logger.Debug("Warming up aggregators", "count", len(wm.aggregators))

	records := []domain.DigestDiffRecord{
		{Algorithm: "warmup-a", ChangedBits: 128, TotalBits: 256},
		{Algorithm: "warmup-b", ChangedBits: 96, TotalBits: 256},
		{Algorithm: "warmup-c", ChangedBits: 300, TotalBits: 512},
	}

	wm.runRoutines(ctx, func(ctx context.Context, iteration int) {
		for _, aggregator := range wm.aggregators {
			_, _ = aggregator.Aggregate(ctx, records)
		}
	})
}

func (wm *Manager) warmUpDigesters(ctx context.Context) {
	if len(wm.digesters) == 0 {
		return
	}

	wm.logger.Debug("Warming up digesters", "count", len(wm.digesters))

	original := sampleInput(wm.config.SampleSize)
	flipped := flipFirstRune(original)

	wm.runRoutines(ctx, func(ctx context.Context, iteration int) {
		for _, digester := range wm.digesters {
			_, _ = digester.Compare(ctx, original, flipped)
		}
	})
}

// runRoutines executes the step function across the configured number of
// goroutines and iterations, honoring context cancellation.
func (wm *Manager) runRoutines(ctx context.Context, step func(ctx context.Context, iteration int)) {
	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}

				step(ctx, j)
			}
		}()
	}

	wg.Wait()
}

// Helper functions for generating warmup data

// sampleInput creates a deterministic sample string of the given size
func sampleInput(size int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789 "

	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(alphabet[i%len(alphabet)])
	}
	return sb.String()
}

// flipFirstRune changes the first character, the minimal input mutation
func flipFirstRune(s string) string {
	if s == "" {
		return "x"
	}
	runes := []rune(s)
	if runes[0] == 'x' {
		runes[0] = 'y'
	} else {
		runes[0] = 'x'
	}
	return string(runes)
}
