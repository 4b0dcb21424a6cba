package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SpacingMode selects how grid levels are spaced around the reference price.
type SpacingMode string

const (
	// Arithmetic spaces levels by a fixed price step.
	Arithmetic SpacingMode = "ARITHMETIC"
	// Geometric spaces levels by a fixed percentage multiplier.
	Geometric SpacingMode = "GEOMETRIC"
)

// ParseSpacingMode converts a config string into a SpacingMode.
func ParseSpacingMode(s string) (SpacingMode, error) {
	switch SpacingMode(strings.ToUpper(s)) {
	case Arithmetic:
		return Arithmetic, nil
	case Geometric:
		return Geometric, nil
	default:
		return "", fmt.Errorf("unknown spacing mode %q (expected ARITHMETIC or GEOMETRIC)", s)
	}
}

// GridLevels computes the ladder of limit prices around referencePrice,
// sorted ascending. The index range is inclusive on both ends,
// [-floor(n/2), +floor(n/2)], so the produced count is 2*floor(n/2)+1 rather
// than levelCount; for even levelCount this yields one extra level. Callers
// rely on that exact count. Non-positive levels are discarded.
func GridLevels(referencePrice float64, levelCount int, spacingPercent float64, mode SpacingMode) ([]float64, error) {
	if referencePrice <= 0 {
		return nil, fmt.Errorf("reference price must be positive, got %v", referencePrice)
	}
	if levelCount <= 0 {
		return nil, fmt.Errorf("level count must be positive, got %d", levelCount)
	}
	if spacingPercent <= 0 {
		return nil, fmt.Errorf("spacing percent must be positive, got %v", spacingPercent)
	}

	spacing := spacingPercent / 100.0
	half := levelCount / 2
	levels := make([]float64, 0, 2*half+1)

	switch mode {
	case Arithmetic:
		step := referencePrice * spacing
		for i := -half; i <= half; i++ {
			price := referencePrice + float64(i)*step
			if price > 0 {
				levels = append(levels, price)
			}
		}
	case Geometric:
		multiplier := 1 + spacing
		for i := -half; i <= half; i++ {
			price := referencePrice * math.Pow(multiplier, float64(i))
			if price > 0 {
				levels = append(levels, price)
			}
		}
	default:
		return nil, fmt.Errorf("unknown spacing mode %q", mode)
	}

	sort.Float64s(levels)
	return levels, nil
}
