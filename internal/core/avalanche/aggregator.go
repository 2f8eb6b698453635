package avalanche

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// Sentinel errors surfaced by the aggregator. A malformed record fails
// the entire aggregate call; silently dropping an algorithm would
// misrepresent the averaged quality.
var (
	// ErrInvalidRecord reports a record with TotalBits <= 0 or ChangedBits
	// outside [0, TotalBits].
	ErrInvalidRecord = errors.New("invalid digest diff record")

	// ErrEmptyInput reports an aggregate call with zero records: a mean
	// over zero elements is undefined.
	ErrEmptyInput = errors.New("no digest diff records supplied")
)

// Thresholds holds the band boundaries, as percentages of changed bits.
// A well-designed hash flips close to 50% of digest bits for a minimally
// changed input; the further from 50%, the worse the judgment.
type Thresholds struct {
	PoorLow  float64
	WarnLow  float64
	WarnHigh float64
	PoorHigh float64
}

// DefaultThresholds returns the standard band boundaries: Ideal within
// [40,60], Warning within [35,40) or (60,65], Poor outside [35,65].
func DefaultThresholds() Thresholds {
	return Thresholds{
		PoorLow:  35,
		WarnLow:  40,
		WarnHigh: 60,
		PoorHigh: 65,
	}
}

// Validate checks the boundary ordering.
func (t Thresholds) Validate() error {
	if t.PoorLow < 0 || t.PoorHigh > 100 {
		return errors.New("thresholds must be between 0 and 100")
	}
	if !(t.PoorLow <= t.WarnLow && t.WarnLow <= t.WarnHigh && t.WarnHigh <= t.PoorHigh) {
		return errors.New("thresholds must be ordered poorLow <= warnLow <= warnHigh <= poorHigh")
	}
	return nil
}

// band judges an unrounded avalanche percentage. Poor is checked first;
// its range is a strict superset of Warning's outer range.
func (t Thresholds) band(percent float64) domain.QualityBand {
	switch {
	case percent < t.PoorLow || percent > t.PoorHigh:
		return domain.BandPoor
	case percent < t.WarnLow || percent > t.WarnHigh:
		return domain.BandWarning
	default:
		return domain.BandIdeal
	}
}

// Aggregator classifies digest diff records and aggregates them into a
// cross-algorithm report.
type Aggregator struct {
	thresholds Thresholds
	logger     ports.Logger
}

// NewAggregator creates a new avalanche aggregator.
func NewAggregator(thresholds Thresholds, logger ports.Logger) (*Aggregator, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	return &Aggregator{
		thresholds: thresholds,
		logger:     logger,
	}, nil
}

// percent returns the unrounded avalanche percentage after validating the
// record invariants.
func (a *Aggregator) percent(record domain.DigestDiffRecord) (float64, error) {
	if record.TotalBits <= 0 {
		return 0, fmt.Errorf("%w: algorithm %q has total bits %d", ErrInvalidRecord, record.Algorithm, record.TotalBits)
	}
	if record.ChangedBits < 0 || record.ChangedBits > record.TotalBits {
		return 0, fmt.Errorf("%w: algorithm %q has changed bits %d of %d", ErrInvalidRecord, record.Algorithm, record.ChangedBits, record.TotalBits)
	}
	return float64(record.ChangedBits) / float64(record.TotalBits) * 100, nil
}

// Classify judges a single record. The band is assigned from the
// unrounded percentage; only the reported value is rounded.
func (a *Aggregator) Classify(record domain.DigestDiffRecord) (domain.Classification, error) {
	raw, err := a.percent(record)
	if err != nil {
		a.logger.Error("Rejected digest diff record", "error", err)
		return domain.Classification{}, err
	}

	band := a.thresholds.band(raw)

	a.logger.Debug("Classified digest diff record",
		"algorithm", record.Algorithm,
		"avalanche_percent", raw,
		"band", band.String(),
	)

	return domain.Classification{
		Record:           record,
		AvalanchePercent: round2(raw),
		Band:             band,
	}, nil
}

// Aggregate classifies every record in input order and computes the mean
// avalanche percentage over the unrounded per-record values. Any invalid
// record fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.DigestDiffRecord) (domain.AvalancheReport, error) {
	if len(records) == 0 {
		a.logger.Error("Aggregate called with no records")
		return domain.AvalancheReport{}, ErrEmptyInput
	}

	select {
	case <-ctx.Done():
		return domain.AvalancheReport{}, ctx.Err()
	default:
		// continue
	}

	results := make([]domain.Classification, 0, len(records))
	sum := 0.0

	for _, record := range records {
		raw, err := a.percent(record)
		if err != nil {
			a.logger.Error("Rejected digest diff record", "error", err)
			return domain.AvalancheReport{}, err
		}

		results = append(results, domain.Classification{
			Record:           record,
			AvalanchePercent: round2(raw),
			Band:             a.thresholds.band(raw),
		})
		sum += raw
	}

	mean := round2(sum / float64(len(records)))

	a.logger.Debug("Aggregated avalanche report",
		"records", len(records),
		"mean_avalanche_percent", mean,
	)

	return domain.AvalancheReport{
		Results:              results,
		MeanAvalanchePercent: mean,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
