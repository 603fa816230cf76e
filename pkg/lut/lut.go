// Package lut builds and applies the lookup tables that linearize a
// display's intensity->luminance response.
//
// The pipeline is: photometer Samples are aggregated into a Table (one
// robust mean per distinct intensity), the Table is smoothed, and the
// smoothed Table is linearized into a LUT at a fixed resolution. At draw
// time a LUT (greyscale) or CLUT (RGB) is applied to stimulus arrays by
// piecewise linear interpolation.
package lut

import(
	"errors"
	"fmt"
	"math"
)

var(
	ErrTooFewRows    = errors.New("table needs at least two rows")
	ErrNotIncreasing = errors.New("intensity column is not strictly increasing")
)

// A Sample is one photometer reading, at a requested intensity in
// [0,1]. A failed reading has a NaN luminance.
type Sample struct {
	Intensity float64
	Luminance float64 // cd/m^2, or NaN
}

func (s Sample)Valid() bool { return !math.IsNaN(s.Luminance) }

// A Table maps distinct intensities (strictly increasing) to a
// luminance. Aggregated and Smoothed tables share this shape.
type Table struct {
	Intensity []float64
	Luminance []float64
}

func (t Table)Len() int { return len(t.Intensity) }

func (t Table)String() string {
	if t.Len() == 0 {
		return "Table[empty]"
	}
	n := t.Len()
	return fmt.Sprintf("Table[%d rows, (%.4f, %.4f) .. (%.4f, %.4f)]", n,
		t.Intensity[0], t.Luminance[0], t.Intensity[n-1], t.Luminance[n-1])
}

// Validate checks the column lengths agree, and that intensities are
// strictly increasing.
func (t Table)Validate() error {
	if len(t.Intensity) != len(t.Luminance) {
		return fmt.Errorf("table has %d intensities but %d luminances", len(t.Intensity), len(t.Luminance))
	}
	return checkIncreasing(t.Intensity)
}

// Meta is carried along with a LUT or CLUT, and persisted as comment
// lines ahead of the header so generic table readers skip it.
type Meta struct {
	Rows         int      // rows actually present
	Resolution   int      // bits; zero if the table wasn't built by Linearize
	Deduplicated bool     // whether repeated lookup indices were collapsed
	Notes        []string
}

func (m *Meta)addNote(format string, args ...interface{}) {
	m.Notes = append(m.Notes, fmt.Sprintf(format, args...))
}

// A GammaTable is something the Corrector can interpolate against: a
// shared, strictly increasing domain column, and one output column per
// channel.
type GammaTable interface {
	Channels() int
	Domain() []float64
	Column(ch int) []float64
}

// A LUT is a greyscale lookup table. Looking up IntensityIn (by
// interpolation) gives the IntensityOut to actually send to the display;
// Luminance is the physical response expected at IntensityIn.
type LUT struct {
	IntensityIn  []float64
	IntensityOut []float64
	Luminance    []float64
	Meta
}

func (l *LUT)Channels() int           { return 1 }
func (l *LUT)Domain() []float64       { return l.IntensityIn }
func (l *LUT)Column(ch int) []float64 { return l.IntensityOut }
func (l *LUT)Len() int                { return len(l.IntensityIn) }

func (l *LUT)String() string {
	return fmt.Sprintf("LUT[%d rows, res %d bits, dedup %v]", l.Len(), l.Resolution, l.Deduplicated)
}

// LuminanceAt predicts the luminance (cd/m^2) the display produces for
// a requested intensity, by interpolating the luminance column.
func (l *LUT)LuminanceAt(x float64) (float64, error) {
	f, err := l.LuminanceModel()
	if err != nil {
		return 0, err
	}
	return f(x), nil
}

// LuminanceModel is LuminanceAt with the interpolation fitted once, for
// callers that need a lot of predictions.
func (l *LUT)LuminanceModel() (func(float64) float64, error) {
	if len(l.Luminance) != l.Len() {
		return nil, fmt.Errorf("LUT has no luminance column")
	}
	c, err := newChannelInterp(l.IntensityIn, l.Luminance)
	if err != nil {
		return nil, err
	}
	return c.predict, nil
}

func checkIncreasing(xs []float64) error {
	for i, x := range xs {
		if math.IsNaN(x) {
			return fmt.Errorf("%w: NaN at row %d", ErrNotIncreasing, i)
		}
		if i > 0 && !(x > xs[i-1]) {
			return fmt.Errorf("%w: row %d (%g) follows %g", ErrNotIncreasing, i, x, xs[i-1])
		}
	}
	return nil
}
