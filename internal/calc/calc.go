// Package calc holds the rounding and ratio helpers shared by every derived metric.
package calc

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to 2 decimal places, half away from zero, on its shortest
// decimal representation. NaN and infinities are returned unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Percent turns a fraction (0.1234) into a rounded percentage (12.34).
func Percent(fraction float64) float64 {
	return Round2(fraction * 100)
}

// PercentChange returns round(((price - base) / base) * 100, 2).
// ok is false when base is zero or the result is not finite.
func PercentChange(price, base float64) (v float64, ok bool) {
	if base == 0 {
		return 0, false
	}
	return finite(Round2(((price - base) / base) * 100))
}

// RatioPercent returns round(num / den * 100, 2); ok is false when the
// division produces NaN or an infinity.
func RatioPercent(num, den float64) (v float64, ok bool) {
	return finite(Round2(num / den * 100))
}

// Ptr returns a pointer to a copy of v.
func Ptr(v float64) *float64 { return &v }

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
