package domain

// QualityBand is the categorical judgment of how close an observed
// bit-change ratio is to the ideal 50%.
type QualityBand int

const (
	BandIdeal QualityBand = iota
	BandWarning
	BandPoor
)

// String returns the lower-case label used in reports and JSON output.
func (b QualityBand) String() string {
	switch b {
	case BandIdeal:
		return "ideal"
	case BandWarning:
		return "warning"
	case BandPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// ComparisonResult holds the outcome of a positional similarity computation.
type ComparisonResult struct {
	Name string
	// Score is the similarity percentage in [0,100], rounded to the
	// configured precision.
	Score float64
	// Passed indicates whether the score meets or exceeds the threshold.
	Passed bool
	// Matches is the number of positions where both sequences carry the
	// same unit.
	Matches int
	// OriginalLength and ModifiedLength are the rune counts of the inputs.
	OriginalLength int
	ModifiedLength int
	// Threshold used to determine pass/fail.
	Threshold float64
	// Details holds additional diagnostic information.
	Details map[string]interface{}
}

// AlignedUnit is one position of a padded alignment.
type AlignedUnit struct {
	// Value is the original unit, or the placeholder rune when the
	// sequence was exhausted at this position.
	Value rune
	// Absent marks placeholder positions.
	Absent bool
	// Match is true when both sequences carry the same real unit here.
	Match bool
}

// AlignmentResult is a pair of equal-length annotated sequences.
// Positions beyond the shorter input are always mismatches.
type AlignmentResult struct {
	Original   []AlignedUnit
	Modified   []AlignedUnit
	Length     int
	Mismatches int
}

// DigestDiffRecord carries the per-algorithm bit difference between the
// digests of two inputs. It arrives pre-computed from a digest provider;
// the aggregator re-checks only the bit-count invariants.
type DigestDiffRecord struct {
	Algorithm      string
	OriginalDigest string
	ModifiedDigest string
	ChangedBits    int
	TotalBits      int
}

// Classification is the per-record quality judgment.
type Classification struct {
	Record DigestDiffRecord
	// AvalanchePercent is the changed-bit ratio as a percentage, rounded
	// to two decimals for display. Band assignment and report averaging
	// use the unrounded ratio.
	AvalanchePercent float64
	Band             QualityBand
}

// AvalancheReport aggregates classifications across algorithms in input
// order, with the cross-algorithm mean avalanche percentage.
type AvalancheReport struct {
	Results              []Classification
	MeanAvalanchePercent float64
}
