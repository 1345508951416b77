package layout

import (
	"fmt"
	"math"
)

// DefaultAspectPrecision is the number of decimals kept by CalculatePreciseAspectRatio.
const DefaultAspectPrecision = 3

// CalculateAspectRatio returns width/height, or 0 when height is zero.
func CalculateAspectRatio(s Size) float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// PreciseAspectRatio is a rounded ratio plus a reduced "W:H" label.
type PreciseAspectRatio struct {
	Ratio     float64 `json:"ratio"`
	Formatted string  `json:"formatted"`
}

// CalculatePreciseAspectRatio rounds the ratio to precision decimals and
// formats the rounded integer dimensions reduced by their greatest common
// divisor, e.g. 1920x1080 becomes "16:9". A negative precision uses
// DefaultAspectPrecision.
func CalculatePreciseAspectRatio(s Size, precision int) PreciseAspectRatio {
	if precision < 0 {
		precision = DefaultAspectPrecision
	}
	ratio := CalculateAspectRatio(s)
	scale := math.Pow(10, float64(precision))
	out := PreciseAspectRatio{Ratio: math.Round(ratio*scale) / scale}

	w, h := int64(math.Round(s.Width)), int64(math.Round(s.Height))
	if w <= 0 || h <= 0 {
		out.Formatted = "0:0"
		return out
	}
	g := gcd(w, h)
	out.Formatted = fmt.Sprintf("%d:%d", w/g, h/g)
	return out
}

// AspectDrift returns how far size deviates from the constraint, as an
// absolute difference of ratios.
func AspectDrift(s Size, a AspectRatio) float64 {
	return math.Abs(CalculateAspectRatio(s) - a.Ratio)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
