// hashavalanche_test.go
package hashavalanche

import (
	"errors"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		original string
		modified string
		score    float64
	}{
		{
			name:     "Identical inputs",
			original: "abc",
			modified: "abc",
			score:    100.0,
		},
		{
			// Lengths 11 vs 12: the trailing position can never match
			// but still counts in the denominator.
			name:     "Longer modified input",
			original: "Hello World",
			modified: "Hello World!",
			score:    91.7,
		},
		{
			name:     "Disjoint inputs",
			original: "aaaa",
			modified: "bbbb",
			score:    0.0,
		},
		{
			name:     "Both empty",
			original: "",
			modified: "",
			score:    100.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Similarity(tc.original, tc.modified)
			if result.Score != tc.score {
				t.Errorf("expected score=%v, got %v, details: %v", tc.score, result.Score, result.Details)
			}
		})
	}
}

func TestSimilarityScoreIsSymmetric(t *testing.T) {
	a, b := "Hello World", "Hello World!"
	if Similarity(a, b).Score != Similarity(b, a).Score {
		t.Errorf("score should not depend on argument order")
	}
}

func TestAlignPadsShorterInput(t *testing.T) {
	result := Align("abc", "ab")

	if result.Length != 3 {
		t.Fatalf("expected aligned length 3, got %d", result.Length)
	}
	if result.Mismatches != 1 {
		t.Errorf("expected 1 mismatch, got %d", result.Mismatches)
	}
	if !result.Modified[2].Absent {
		t.Errorf("expected modified side padded at position 2")
	}
	if result.Original[2].Match || result.Modified[2].Match {
		t.Errorf("padded positions must be mismatches")
	}
}

func TestClassify(t *testing.T) {
	c, err := Classify(DigestDiffRecord{Algorithm: "sha256", ChangedBits: 128, TotalBits: 256})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.AvalanchePercent != 50.00 || c.Band != BandIdeal {
		t.Errorf("expected 50.00/ideal, got %v/%v", c.AvalanchePercent, c.Band)
	}

	if _, err := Classify(DigestDiffRecord{ChangedBits: 5, TotalBits: 0}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	report, err := Analyze("Hello Blockchain", "hello Blockchain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 7 {
		t.Fatalf("expected 7 records, got %d", len(report.Results))
	}
	for _, c := range report.Results {
		if c.Record.ChangedBits <= 0 || c.Record.ChangedBits > c.Record.TotalBits {
			t.Errorf("%s: changed bits %d out of range (total %d)",
				c.Record.Algorithm, c.Record.ChangedBits, c.Record.TotalBits)
		}
	}
	if report.MeanAvalanchePercent <= 0 || report.MeanAvalanchePercent >= 100 {
		t.Errorf("mean avalanche percent out of range: %v", report.MeanAvalanchePercent)
	}
}
