package lut

import(
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/lumcal/pkg/emath"
)

const(
	MinResolution = 1
	MaxResolution = 24
)

type LinearizeOptions struct {
	Resolution int   // bits; the LUT gets 2^Resolution rows
	Dedup      bool  // collapse repeated lookup indices (fewer rows, no flat runs)
}

func DefaultLinearizeOptions() LinearizeOptions {
	return LinearizeOptions{Resolution: 12}
}

func (o LinearizeOptions)validate() error {
	if o.Resolution < MinResolution || o.Resolution > MaxResolution {
		return fmt.Errorf("resolution must be in [%d,%d] bits, got %d", MinResolution, MaxResolution, o.Resolution)
	}
	return nil
}

// Linearize inverts a (smoothed) intensity->luminance table at a fixed
// resolution. It picks 2^res luminances evenly spaced between the
// table's min and max, and for each finds the first row whose luminance
// reaches it. The LUT maps evenly spaced intensities (IntensityIn) to the
// measured intensities at those rows (IntensityOut), so evenly spaced
// requests come out as evenly spaced luminance steps.
//
// The table is assumed to have (near) monotonic luminance. Dips are
// tolerated, but noted in the LUT's Meta; so is deduplication. Nothing is
// logged here, callers decide whether to report the notes.
func Linearize(t Table, opts LinearizeOptions) (*LUT, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Len() < 2 {
		return nil, ErrTooFewRows
	}
	for i, lum := range t.Luminance {
		if math.IsNaN(lum) {
			return nil, fmt.Errorf("luminance at row %d (intensity %g) is NaN", i, t.Intensity[i])
		}
	}

	lumMin := floats.Min(t.Luminance)
	lumMax := floats.Max(t.Luminance)
	if !(lumMax > lumMin) {
		return nil, fmt.Errorf("luminance range is empty (%g..%g), can't linearize", lumMin, lumMax)
	}

	n := 1 << uint(opts.Resolution)
	l := &LUT{
		Meta: Meta{Resolution: opts.Resolution, Deduplicated: opts.Dedup},
	}

	if dips := countDips(t.Luminance); dips > 0 {
		l.addNote("luminance not monotonic: %d decreasing steps", dips)
	}

	// The first row whose luminance is >= s is also the first row whose
	// running-max luminance is >= s, and the running max is sorted.
	ceiling := emath.RunningMax(t.Luminance)
	targets := emath.Linspace(lumMin, lumMax, n)
	evenly  := emath.Linspace(0, 1, n)

	prev := -1
	for i, s := range targets {
		idx := sort.SearchFloat64s(ceiling, s)
		if idx == len(ceiling) {
			idx = len(ceiling) - 1
		}
		if opts.Dedup && idx == prev {
			continue
		}
		prev = idx

		l.IntensityIn  = append(l.IntensityIn,  evenly[i])
		l.IntensityOut = append(l.IntensityOut, t.Intensity[idx])
		l.Luminance    = append(l.Luminance,    t.Luminance[idx])
	}
	l.Rows = l.Len()

	if l.Rows < n {
		l.addNote("deduplicated to %d of %d rows", l.Rows, n)
	}
	if l.Rows < 2 {
		return nil, fmt.Errorf("linearized LUT collapsed to %d row: %w", l.Rows, ErrTooFewRows)
	}

	return l, nil
}

func countDips(vals []float64) int {
	n := 0
	for i:=1; i<len(vals); i++ {
		if vals[i] < vals[i-1] {
			n++
		}
	}
	return n
}
