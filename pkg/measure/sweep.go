package measure

import(
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/abworrall/lumcal/pkg/emath"
	"github.com/abworrall/lumcal/pkg/lut"
)

// Intensities is the order a sweep will visit the intensities in
func (c Config)Intensities() []float64 {
	xs := emath.Linspace(c.Min, c.Max, c.Steps)

	if c.Randomize {
		rng := rand.New(rand.NewSource(c.Seed))
		rng.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
	}
	if c.Reverse {
		for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
			xs[i], xs[j] = xs[j], xs[i]
		}
	}
	return xs
}

// Run shows each intensity on the display and takes the configured
// number of photometer readings. If `w` is not nil, each intensity's
// readings are written to it as a row of a measurement file as soon as
// they are taken, so a sweep that dies part way through still leaves
// usable data behind.
//
// Failed readings are recorded as NaN. Run stops early, returning the
// samples so far along with the error, if the context is cancelled or
// the display fails.
func Run(ctx context.Context, cfg Config, d Display, p Photometer, w io.Writer) ([]lut.Sample, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	photometer := Retrying{
		Photometer: p,
		Attempts:   cfg.Attempts,
		Delay:      cfg.Delay,
		Verbosity:  cfg.Verbosity,
	}

	if w != nil {
		if err := lut.WriteSampleHeader(w, cfg.Repeats); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	xs := cfg.Intensities()
	samples := make([]lut.Sample, 0, len(xs) * cfg.Repeats)
	nFailed := 0

	for i, x := range xs {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		if err := d.ShowIntensity(ctx, x); err != nil {
			return samples, fmt.Errorf("show intensity %g: %w", x, err)
		}

		lums := make([]float64, cfg.Repeats)
		for r := range lums {
			lum, err := photometer.ReadLuminance(ctx)
			if err != nil {
				return samples, err
			}
			lums[r] = lum

			s := lut.Sample{Intensity: x, Luminance: lum}
			if !s.Valid() {
				nFailed++
			}
			samples = append(samples, s)
		}

		if w != nil {
			if err := lut.WriteSampleRow(w, x, lums); err != nil {
				return samples, fmt.Errorf("write row %d: %w", i, err)
			}
		}

		if cfg.Verbosity > 0 && (i+1) % 256 == 0 {
			log.Printf("Measured %d of %d intensities (%d failed readings)\n", i+1, len(xs), nFailed)
		}
	}

	if cfg.Verbosity > 0 {
		log.Printf("Sweep done: %d intensities, %d readings, %d failed\n", len(xs), len(samples), nFailed)
	}
	return samples, nil
}
