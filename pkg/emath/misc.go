package emath

import(
	"math"

	"gonum.org/v1/gonum/floats"
)

// Some functions that only operate on basic types, that are useful

// GammaExpand_F64 is the sRGB transfer curve, for making linear values
// in [0,1] look right on a monitor.
// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// Linspace returns `n` evenly spaced values over [lo, hi]. The last
// value is exactly `hi`; floats.Span can overshoot it by an ulp, which
// breaks "first value >= x" searches against the top of the range.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}

	vals := floats.Span(make([]float64, n), lo, hi)
	vals[0] = lo
	vals[n-1] = hi
	return vals
}

// RunningMax returns the prefix maximum of `vals`
func RunningMax(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if i > 0 && out[i-1] > v {
			v = out[i-1]
		}
		out[i] = v
	}
	return out
}
