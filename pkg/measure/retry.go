package measure

import(
	"context"
	"log"
	"math"
	"time"
)

// Retrying wraps a Photometer with a fixed retry policy. When every
// attempt fails it returns NaN and no error: a missing reading is for
// the aggregator to deal with, not a reason to abandon the sweep. Only
// a cancelled context is returned as an error.
type Retrying struct {
	Photometer
	Attempts  int
	Delay     time.Duration  // between attempts
	Verbosity int
}

func (r Retrying)ReadLuminance(ctx context.Context) (float64, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for i:=0; i<attempts; i++ {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
				return math.NaN(), ctx.Err()
			case <-time.After(r.Delay):
			}
		}

		lum, err := r.Photometer.ReadLuminance(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return math.NaN(), ctxErr
		}
		if err == nil && !math.IsNaN(lum) {
			return lum, nil
		}

		if r.Verbosity > 1 {
			log.Printf("photometer attempt %d/%d failed: %v\n", i+1, attempts, err)
		}
	}

	if r.Verbosity > 0 {
		log.Printf("photometer gave up after %d attempts, recording NaN\n", attempts)
	}
	return math.NaN(), nil
}
