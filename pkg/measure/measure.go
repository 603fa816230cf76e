// Package measure drives a display through a sweep of intensities and
// records what a photometer sees, producing the raw samples that the
// lut package turns into a calibration.
package measure

import(
	"context"
	"errors"
)

// ErrReadFailed is what a photometer returns when it couldn't get a
// reading this time (out of range, no sync, timeout); worth retrying.
var ErrReadFailed = errors.New("photometer read failed")

// A Photometer reads the luminance of the patch it is pointed at, in
// cd/m^2.
type Photometer interface {
	ReadLuminance(ctx context.Context) (float64, error)
}

// A Display shows a uniform patch at a normalized intensity in [0,1],
// and returns once it is on screen.
type Display interface {
	ShowIntensity(ctx context.Context, v float64) error
}
