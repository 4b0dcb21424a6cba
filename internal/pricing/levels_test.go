package pricing

import (
	"math"
	"testing"
)

func floatsClose(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestGridLevelsArithmetic(t *testing.T) {
	levels, err := GridLevels(100, 4, 1.0, Arithmetic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{98, 99, 100, 101, 102}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d (%v)", len(want), len(levels), levels)
	}
	for i, w := range want {
		if !floatsClose(levels[i], w, 1e-9) {
			t.Errorf("level %d: expected %v, got %v", i, w, levels[i])
		}
	}
}

func TestGridLevelsGeometric(t *testing.T) {
	levels, err := GridLevels(100, 4, 1.0, Geometric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100 / 1.01^2, 100 / 1.01, 100, 100 * 1.01, 100 * 1.01^2
	want := []float64{98.02960494, 99.00990099, 100, 101, 102.01}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d (%v)", len(want), len(levels), levels)
	}
	for i, w := range want {
		if !floatsClose(levels[i], w, 1e-6) {
			t.Errorf("level %d: expected %v, got %v", i, w, levels[i])
		}
	}
}

func TestGridLevelsOddCount(t *testing.T) {
	levels, err := GridLevels(100, 5, 1.0, Arithmetic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// floor(5/2) = 2 on each side, same count as levelCount=4.
	if len(levels) != 5 {
		t.Fatalf("expected 5 levels, got %d (%v)", len(levels), levels)
	}
}

func TestGridLevelsDiscardsNonPositive(t *testing.T) {
	// Step equals the reference price, so the two lowest candidates are
	// zero and negative.
	levels, err := GridLevels(1, 4, 100.0, Arithmetic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 2, 3}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d (%v)", len(want), len(levels), levels)
	}
	for i, w := range want {
		if !floatsClose(levels[i], w, 1e-9) {
			t.Errorf("level %d: expected %v, got %v", i, w, levels[i])
		}
	}
}

func TestGridLevelsSortedAscending(t *testing.T) {
	levels, err := GridLevels(50000, 10, 2.5, Geometric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] <= levels[i-1] {
			t.Fatalf("levels not strictly ascending at %d: %v", i, levels)
		}
	}
}

func TestGridLevelsInvalidInputs(t *testing.T) {
	cases := []struct {
		name    string
		ref     float64
		count   int
		spacing float64
		mode    SpacingMode
	}{
		{"zero reference price", 0, 4, 1.0, Arithmetic},
		{"negative reference price", -5, 4, 1.0, Arithmetic},
		{"zero level count", 100, 0, 1.0, Arithmetic},
		{"zero spacing", 100, 4, 0, Arithmetic},
		{"unknown mode", 100, 4, 1.0, SpacingMode("FIBONACCI")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := GridLevels(tc.ref, tc.count, tc.spacing, tc.mode); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestParseSpacingMode(t *testing.T) {
	if mode, err := ParseSpacingMode("arithmetic"); err != nil || mode != Arithmetic {
		t.Errorf("expected Arithmetic, got %v (err %v)", mode, err)
	}
	if mode, err := ParseSpacingMode("GEOMETRIC"); err != nil || mode != Geometric {
		t.Errorf("expected Geometric, got %v (err %v)", mode, err)
	}
	if _, err := ParseSpacingMode("linear"); err == nil {
		t.Error("expected an error for unknown mode")
	}
}
