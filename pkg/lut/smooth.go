package lut

import(
	"gonum.org/v1/gonum/stat"
)

// SmoothOptions control the convolution smoother
type SmoothOptions struct {
	Kernel     []float64  // FIR taps
	Order      int        // how many passes of the kernel

	// The legacy tail correction: after smoothing, rescale so the mean
	// of the last TailPoints values matches the unsmoothed mean. This
	// assumes the bright end of the gamma curve is near scale-invariant,
	// which is only an approximation.
	TailAnchor bool
	TailPoints int
}

func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{
		Kernel:     []float64{0.2, 0.2, 0.2, 0.2, 0.2},
		Order:      0,
		TailAnchor: false,
		TailPoints: 20,
	}
}

// Smooth convolves the luminance column with the kernel, `Order` times.
// Each pass pads both ends by replicating the boundary values, and keeps
// only the fully-overlapped part of the convolution, so the output has
// the same length as the input and the ends aren't dragged down.
//
// The intensity column is copied over untouched. Nothing here makes the
// luminances monotonic.
func Smooth(t Table, opts SmoothOptions) Table {
	out := Table{
		Intensity: append([]float64(nil), t.Intensity...),
		Luminance: append([]float64(nil), t.Luminance...),
	}
	if len(out.Luminance) == 0 || len(opts.Kernel) == 0 {
		return out
	}

	for i:=0; i<opts.Order; i++ {
		out.Luminance = convolveValid(padEdges(out.Luminance, len(opts.Kernel)), opts.Kernel)
	}

	if opts.TailAnchor {
		anchorTail(t.Luminance, out.Luminance, opts.TailPoints)
	}

	return out
}

// padEdges replicates the first and last values outwards, so that a
// "valid" convolution with a kernel of width `width` keeps the length.
func padEdges(vals []float64, width int) []float64 {
	left := (width - 1) / 2
	right := width - 1 - left

	padded := make([]float64, 0, len(vals) + left + right)
	for i:=0; i<left; i++ {
		padded = append(padded, vals[0])
	}
	padded = append(padded, vals...)
	for i:=0; i<right; i++ {
		padded = append(padded, vals[len(vals)-1])
	}
	return padded
}

// convolveValid is a "valid" mode convolution: only the output
// points where the (flipped) kernel fully overlaps `a`.
func convolveValid(a, k []float64) []float64 {
	n := len(a) - len(k) + 1
	if n <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	last := len(k) - 1
	for i:=0; i<n; i++ {
		sum := 0.0
		for j:=0; j<len(k); j++ {
			sum += a[i+j] * k[last-j]
		}
		out[i] = sum
	}
	return out
}

// anchorTail rescales `smoothed` in place, so the mean of its last `k`
// points matches that of `orig`.
func anchorTail(orig, smoothed []float64, k int) {
	n := len(smoothed)
	if k <= 0 || k > n {
		k = n
	}

	want := stat.Mean(orig[len(orig)-k:], nil)
	have := stat.Mean(smoothed[n-k:], nil)
	if have == 0 {
		return
	}

	scale := want / have
	for i := range smoothed {
		smoothed[i] *= scale
	}
}
