package compare

import (
	"context"
	"testing"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/logger"
)

func newTestComparator(t *testing.T) *Comparator {
	t.Helper()
	c, err := NewComparator(DefaultConfig(), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		original string
		modified string
		score    float64
		matches  int
	}{
		{
			name:     "Identical inputs",
			original: "abc",
			modified: "abc",
			score:    100.0,
			matches:  3,
		},
		{
			name:     "Longer modified input",
			original: "Hello World",
			modified: "Hello World!",
			score:    91.7, // 11 matches over 12 positions
			matches:  11,
		},
		{
			name:     "Longer original input",
			original: "Hello World!",
			modified: "Hello World",
			score:    91.7,
			matches:  11,
		},
		{
			name:     "Single substitution",
			original: "Blockchain",
			modified: "blockchain",
			score:    90.0,
			matches:  9,
		},
		{
			name:     "Empty original",
			original: "",
			modified: "xyz",
			score:    0.0,
			matches:  0,
		},
		{
			name:     "Both empty",
			original: "",
			modified: "",
			score:    100.0,
			matches:  0,
		},
		{
			// Comparison is per rune, not per byte.
			name:     "Multibyte runes",
			original: "héllo",
			modified: "hállo",
			score:    80.0,
			matches:  4,
		},
	}

	c := newTestComparator(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := c.Similarity(context.Background(), tc.original, tc.modified)
			if result.Score != tc.score {
				t.Errorf("expected score=%v, got %v, details: %v", tc.score, result.Score, result.Details)
			}
			if result.Matches != tc.matches {
				t.Errorf("expected matches=%d, got %d", tc.matches, result.Matches)
			}
		})
	}
}

func TestSimilarityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 90.0
	c, err := NewComparator(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.Similarity(context.Background(), "Blockchain", "blockchain").Passed {
		t.Errorf("expected 90.0 to pass at threshold 90.0")
	}
	if c.Similarity(context.Background(), "abcd", "abxx").Passed {
		t.Errorf("expected 50.0 to fail at threshold 90.0")
	}
}

func TestSimilarityCancelledContext(t *testing.T) {
	c := newTestComparator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Similarity(ctx, "abc", "abc")
	if result.Score != 0 || result.Passed {
		t.Errorf("expected failed zero result on cancelled context, got %+v", result)
	}
}

func TestSimilarityIdempotent(t *testing.T) {
	c := newTestComparator(t)

	first := c.Similarity(context.Background(), "Hello World", "Hello World!")
	second := c.Similarity(context.Background(), "Hello World", "Hello World!")
	if first.Score != second.Score || first.Matches != second.Matches {
		t.Errorf("expected identical results for identical inputs: %+v vs %+v", first, second)
	}
}

func TestAlign(t *testing.T) {
	c := newTestComparator(t)

	result := c.Align(context.Background(), "abc", "ab")

	if result.Length != 3 {
		t.Fatalf("expected aligned length 3, got %d", result.Length)
	}
	if len(result.Original) != 3 || len(result.Modified) != 3 {
		t.Fatalf("both aligned sequences must have length 3")
	}

	for i := 0; i < 2; i++ {
		if !result.Original[i].Match || !result.Modified[i].Match {
			t.Errorf("position %d should match", i)
		}
	}

	last := result.Modified[2]
	if !last.Absent {
		t.Errorf("expected modified side absent at position 2")
	}
	if last.Value != DefaultPlaceholder {
		t.Errorf("expected placeholder %q, got %q", DefaultPlaceholder, last.Value)
	}
	if result.Original[2].Absent {
		t.Errorf("original side has a real unit at position 2")
	}
	if result.Mismatches != 1 {
		t.Errorf("expected 1 mismatch, got %d", result.Mismatches)
	}
}

// The alignment's mismatch set over the shared prefix must agree with the
// similarity score's match count, and every padded position is a mismatch.
func TestAlignAgreesWithSimilarity(t *testing.T) {
	tests := []struct {
		original string
		modified string
	}{
		{"Hello World", "Hello World!"},
		{"Blockchain", "blockchain"},
		{"abc", ""},
		{"", ""},
		{"héllo", "hállo"},
	}

	c := newTestComparator(t)
	for _, tc := range tests {
		sim := c.Similarity(context.Background(), tc.original, tc.modified)
		align := c.Align(context.Background(), tc.original, tc.modified)

		maxLen := sim.OriginalLength
		if sim.ModifiedLength > maxLen {
			maxLen = sim.ModifiedLength
		}
		if align.Length != maxLen {
			t.Errorf("%q vs %q: aligned length %d, want %d", tc.original, tc.modified, align.Length, maxLen)
		}
		if align.Length-align.Mismatches != sim.Matches {
			t.Errorf("%q vs %q: alignment matches %d, similarity matches %d",
				tc.original, tc.modified, align.Length-align.Mismatches, sim.Matches)
		}
	}
}

// The score is symmetric, but which side carries the placeholder depends
// on argument order. Callers must track which sequence is first.
func TestAlignSidesDependOnArgumentOrder(t *testing.T) {
	c := newTestComparator(t)

	forward := c.Align(context.Background(), "abc", "ab")
	reversed := c.Align(context.Background(), "ab", "abc")

	if !forward.Modified[2].Absent || forward.Original[2].Absent {
		t.Errorf("expected placeholder on the modified side")
	}
	if !reversed.Original[2].Absent || reversed.Modified[2].Absent {
		t.Errorf("expected placeholder on the original side")
	}
	if forward.Mismatches != reversed.Mismatches {
		t.Errorf("mismatch count should not depend on argument order")
	}
}

func TestAlignCustomPlaceholder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Placeholder = '_'
	c, err := NewComparator(cfg, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := c.Align(context.Background(), "ab", "abcd")
	if result.Original[3].Value != '_' {
		t.Errorf("expected custom placeholder, got %q", result.Original[3].Value)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Negative threshold", func(c *Config) { c.Threshold = -1 }},
		{"Threshold above 100", func(c *Config) { c.Threshold = 101 }},
		{"Negative precision", func(c *Config) { c.Precision = -1 }},
		{"Zero placeholder", func(c *Config) { c.Placeholder = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := NewComparator(cfg, logger.NewNopLogger()); err == nil {
				t.Errorf("expected configuration error")
			}
		})
	}
}
