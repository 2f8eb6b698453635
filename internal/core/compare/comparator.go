package compare

import (
	"context"
	"errors"
	"math"

	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/internal/ports"
)

// DefaultPlaceholder marks positions where the shorter sequence is
// exhausted. It never equals a real input unit for comparison purposes:
// padded positions are always mismatches.
const DefaultPlaceholder = '·'

// Config holds configuration for the sequence comparator.
type Config struct {
	// Threshold is the score at or above which the inputs are judged
	// near-identical.
	Threshold float64
	// Precision is the number of decimals the score is rounded to.
	Precision int
	// Placeholder is the rune rendered at absent positions in alignments.
	Placeholder rune
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:   90.0,
		Precision:   1,
		Placeholder: DefaultPlaceholder,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return errors.New("threshold must be between 0 and 100")
	}
	if c.Precision < 0 {
		return errors.New("precision must not be negative")
	}
	if c.Placeholder == 0 {
		return errors.New("placeholder rune must be set")
	}
	return nil
}

// Comparator implements positional comparison of two rune sequences.
// Comparison is per code unit, not per grapheme cluster.
type Comparator struct {
	config Config
	logger ports.Logger
}

// NewComparator creates a new sequence comparator.
func NewComparator(config Config, logger ports.Logger) (*Comparator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Comparator{
		config: config,
		logger: logger,
	}, nil
}

// Similarity scores the positional overlap of the two inputs as a
// percentage of the longer length. Positions beyond the shorter input
// count against the score but can never match.
//
// Two empty inputs score a fixed 100.0: identical empty inputs are
// treated as identical rather than as a division by zero.
func (c *Comparator) Similarity(ctx context.Context, original, modified string) domain.ComparisonResult {
	c.logger.Debug("Starting sequence similarity computation",
		"original", original,
		"modified", modified,
	)

	details := make(map[string]interface{})

	// Check context cancellation.
	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.ComparisonResult{
			Name:    "sequence_similarity",
			Score:   0,
			Passed:  false,
			Details: details,
		}
	default:
		// continue
	}

	origRunes := []rune(original)
	modRunes := []rune(modified)
	origLen := len(origRunes)
	modLen := len(modRunes)

	maxLen := origLen
	minLen := modLen
	if modLen > origLen {
		maxLen = modLen
		minLen = origLen
	}

	c.logger.Debug("Computed sequence lengths",
		"original_length", origLen,
		"modified_length", modLen,
	)

	matches := 0
	for i := 0; i < minLen; i++ {
		if origRunes[i] == modRunes[i] {
			matches++
		}
	}

	var score float64
	if maxLen == 0 {
		// Identical empty inputs.
		score = 100.0
		details["degenerate"] = "both sequences empty"
	} else {
		score = float64(matches) / float64(maxLen) * 100
	}

	factor := math.Pow(10, float64(c.config.Precision))
	score = math.Round(score*factor) / factor

	passed := score >= c.config.Threshold

	details["matches"] = matches
	details["compared_positions"] = maxLen
	details["threshold"] = c.config.Threshold

	c.logger.Debug("Computed sequence similarity",
		"score", score,
		"passed", passed,
		"details", details,
	)

	return domain.ComparisonResult{
		Name:           "sequence_similarity",
		Score:          score,
		Passed:         passed,
		Matches:        matches,
		OriginalLength: origLen,
		ModifiedLength: modLen,
		Threshold:      c.config.Threshold,
		Details:        details,
	}
}

// Align pads both inputs to the longer length and annotates every
// position as match or mismatch. The mismatch set over the shared prefix
// is identical to Similarity's, and every padded position is a mismatch.
func (c *Comparator) Align(ctx context.Context, original, modified string) domain.AlignmentResult {
	origRunes := []rune(original)
	modRunes := []rune(modified)
	origLen := len(origRunes)
	modLen := len(modRunes)

	maxLen := origLen
	if modLen > origLen {
		maxLen = modLen
	}

	select {
	case <-ctx.Done():
		c.logger.Error("Alignment cancelled", "error", ctx.Err())
		return domain.AlignmentResult{}
	default:
		// continue
	}

	alignedOrig := make([]domain.AlignedUnit, maxLen)
	alignedMod := make([]domain.AlignedUnit, maxLen)
	mismatches := 0

	for i := 0; i < maxLen; i++ {
		var a, b domain.AlignedUnit

		if i < origLen {
			a.Value = origRunes[i]
		} else {
			a.Value = c.config.Placeholder
			a.Absent = true
		}
		if i < modLen {
			b.Value = modRunes[i]
		} else {
			b.Value = c.config.Placeholder
			b.Absent = true
		}

		match := !a.Absent && !b.Absent && a.Value == b.Value
		a.Match = match
		b.Match = match
		if !match {
			mismatches++
		}

		alignedOrig[i] = a
		alignedMod[i] = b
	}

	c.logger.Debug("Computed alignment",
		"length", maxLen,
		"mismatches", mismatches,
	)

	return domain.AlignmentResult{
		Original:   alignedOrig,
		Modified:   alignedMod,
		Length:     maxLen,
		Mismatches: mismatches,
	}
}
