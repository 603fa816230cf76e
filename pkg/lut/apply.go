package lut

import(
	"fmt"
	"math"

	"github.com/mdouchement/hdr/hdrcolor"
	"gonum.org/v1/gonum/interp"

	"github.com/abworrall/lumcal/pkg/emath"
)

// An Array is a dense, row-major block of intensities in [0,1]. An
// empty Shape is a scalar. For color images the last axis has length 3.
type Array struct {
	Shape []int
	Data  []float64
}

func NewArray(data []float64, shape ...int) (Array, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return Array{}, fmt.Errorf("negative dimension in shape %v", shape)
		}
		size *= d
	}
	if size != len(data) {
		return Array{}, fmt.Errorf("shape %v needs %d values, got %d", shape, size, len(data))
	}
	return Array{Shape: append([]int(nil), shape...), Data: data}, nil
}

func Scalar(v float64) Array { return Array{Data: []float64{v}} }

// Channels is the length of the trailing axis, or 1 for a scalar
func (a Array)Channels() int {
	if len(a.Shape) == 0 {
		return 1
	}
	return a.Shape[len(a.Shape)-1]
}

// channelInterp is one column of a table, ready to interpolate
type channelInterp struct {
	pl interp.PiecewiseLinear
}

func newChannelInterp(xs, ys []float64) (*channelInterp, error) {
	if len(xs) < 2 {
		return nil, ErrTooFewRows
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("domain has %d rows but column has %d", len(xs), len(ys))
	}
	if err := checkIncreasing(xs); err != nil {
		return nil, err
	}
	for i, y := range ys {
		if math.IsNaN(y) {
			return nil, fmt.Errorf("output column has NaN at row %d", i)
		}
	}

	c := channelInterp{}
	if err := c.pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &c, nil
}

// predict does linear interpolation, clamped to the end values outside
// the domain. NaN in, NaN out.
func (c *channelInterp)predict(x float64) float64 {
	if math.IsNaN(x) {
		return x
	}
	return c.pl.Predict(x)
}

// A Corrector applies a gamma table to stimuli. Build one per table and
// reuse it; building validates the table and precomputes the segments.
type Corrector struct {
	channels []*channelInterp
}

// NewCorrector checks the table's domain is strictly increasing and
// fits one interpolator per output column.
func NewCorrector(t GammaTable) (*Corrector, error) {
	if t == nil {
		return nil, fmt.Errorf("no gamma table")
	}
	c := &Corrector{}
	for ch := 0; ch < t.Channels(); ch++ {
		ci, err := newChannelInterp(t.Domain(), t.Column(ch))
		if err != nil {
			return nil, fmt.Errorf("gamma table channel %d: %w", ch, err)
		}
		c.channels = append(c.channels, ci)
	}
	return c, nil
}

func (c *Corrector)Channels() int { return len(c.channels) }

// Value corrects a single intensity on channel `ch`, which must be
// below Channels().
func (c *Corrector)Value(ch int, x float64) (float64, error) {
	if ch < 0 || ch >= len(c.channels) {
		return math.NaN(), fmt.Errorf("no channel %d in a %d channel table", ch, len(c.channels))
	}
	return c.channels[ch].predict(x), nil
}

// Apply corrects every element of `img`, returning a new array of the
// same shape. A greyscale table corrects every element the same way,
// whatever the shape. A color table needs a trailing axis of length 3,
// and corrects each channel against its own column.
//
// The color matrix block of a CLUT is not applied here.
func (c *Corrector)Apply(img Array) (Array, error) {
	out := Array{
		Shape: append([]int(nil), img.Shape...),
		Data:  make([]float64, len(img.Data)),
	}

	switch len(c.channels) {
	case 1:
		ci := c.channels[0]
		for i, v := range img.Data {
			out.Data[i] = ci.predict(v)
		}

	case 3:
		if len(img.Shape) == 0 || img.Channels() != 3 {
			return Array{}, fmt.Errorf("color table needs an image with a trailing axis of 3, got shape %v", img.Shape)
		}
		for i, v := range img.Data {
			out.Data[i] = c.channels[i%3].predict(v)
		}

	default:
		return Array{}, fmt.Errorf("can't apply a %d channel table", len(c.channels))
	}

	return out, nil
}

// ApplyGrid corrects a greyscale grid
func (c *Corrector)ApplyGrid(g emath.FloatGrid) (emath.FloatGrid, error) {
	if len(c.channels) != 1 {
		return emath.FloatGrid{}, fmt.Errorf("greyscale grid needs a greyscale table, have %d channels", len(c.channels))
	}
	out := g.NewFromThis()
	in, dst := g.Values(), out.Values()
	for i, v := range in {
		dst[i] = c.channels[0].predict(v)
	}
	return out, nil
}

// ApplyRGB corrects a single color. A greyscale table is used for all
// three channels.
func (c *Corrector)ApplyRGB(rgb hdrcolor.RGB) hdrcolor.RGB {
	ch := func(i int) *channelInterp {
		if len(c.channels) == 1 {
			return c.channels[0]
		}
		return c.channels[i]
	}
	return hdrcolor.RGB{
		R: ch(0).predict(rgb.R),
		G: ch(1).predict(rgb.G),
		B: ch(2).predict(rgb.B),
	}
}

// Apply is the one-shot form of NewCorrector(t).Apply(img)
func Apply(img Array, t GammaTable) (Array, error) {
	c, err := NewCorrector(t)
	if err != nil {
		return Array{}, err
	}
	return c.Apply(img)
}
