package lut

import(
	"fmt"
	"math"

	"github.com/abworrall/lumcal/pkg/emath"
)

// DefaultLUTRows is the size of a parametric table, when nobody cares
const DefaultLUTRows = 256

// NewLUT builds a parametric greyscale LUT from a pure power-law display
// model: `n` rows evenly spaced over [0,1], corrected intensity x^(1/gamma),
// and luminance k*x^gamma + dark. The first row's luminance is exactly
// `dark`.
//
// These are for tests and simulation; a real display needs measuring.
func NewLUT(n int, gamma, k, dark float64) (*LUT, error) {
	if n < 2 {
		return nil, fmt.Errorf("parametric LUT needs at least 2 rows, got %d", n)
	}
	if !(gamma > 0) {
		return nil, fmt.Errorf("gamma must be positive, got %g", gamma)
	}

	xs := emath.Linspace(0, 1, n)
	l := &LUT{
		IntensityIn:  xs,
		IntensityOut: make([]float64, n),
		Luminance:    make([]float64, n),
		Meta:         Meta{Rows: n},
	}

	for i, x := range xs {
		l.IntensityOut[i] = math.Pow(x, 1.0/gamma)
		l.Luminance[i] = k * math.Pow(x, gamma) + dark
	}
	l.Luminance[0] = dark

	return l, nil
}

// UniformGamma broadcasts one gamma exponent to all three channels
func UniformGamma(gamma float64) emath.Vec3 {
	return emath.Vec3{gamma, gamma, gamma}
}

// NewCLUT builds a parametric CLUT: each channel is corrected with its
// own gamma, and each row carries a color matrix that moves linearly
// from diag(dark) at intensity 0 to `colorMatrix` at intensity 1.
func NewCLUT(n int, gamma emath.Vec3, colorMatrix emath.Mat3, dark emath.Vec3) (*CLUT, error) {
	if n < 2 {
		return nil, fmt.Errorf("parametric CLUT needs at least 2 rows, got %d", n)
	}
	for ch := 0; ch < 3; ch++ {
		if !(gamma[ch] > 0) {
			return nil, fmt.Errorf("gamma must be positive, got %g for channel %d", gamma[ch], ch)
		}
	}

	xs := emath.Linspace(0, 1, n)
	c := &CLUT{
		IntensityIn: xs,
		Matrix:      make([]emath.Mat3, n),
		Meta:        Meta{Rows: n},
	}
	for ch := 0; ch < 3; ch++ {
		c.Out[ch] = make([]float64, n)
	}

	darkMatrix := dark.Diag()
	for i, x := range xs {
		for ch := 0; ch < 3; ch++ {
			c.Out[ch][i] = math.Pow(x, 1.0/gamma[ch])
		}
		c.Matrix[i] = emath.Lerp(darkMatrix, colorMatrix, x)
	}
	c.Matrix[0] = darkMatrix
	c.Matrix[n-1] = colorMatrix

	return c, nil
}
