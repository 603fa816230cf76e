package lut

import(
	"fmt"
	"math"
	"sort"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/lumcal/pkg/ecolor"
	"github.com/abworrall/lumcal/pkg/emath"
)

// A CLUT is a color lookup table: a per-channel correction curve over a
// shared intensity domain, plus a 3x3 RGB->XYZ matrix per row that
// records how the display's color (crosstalk, black level chromaticity)
// changes with drive level.
//
// Applying a CLUT to an image only uses the per-channel curves; the
// matrices are there for color analysis (MatrixAt, ToXYZ).
type CLUT struct {
	IntensityIn []float64
	Out         [3][]float64  // R, G, B
	Matrix      []emath.Mat3  // may be empty, if the table was loaded without the matrix block
	Meta
}

func (c *CLUT)Channels() int           { return 3 }
func (c *CLUT)Domain() []float64       { return c.IntensityIn }
func (c *CLUT)Column(ch int) []float64 { return c.Out[ch] }
func (c *CLUT)Len() int                { return len(c.IntensityIn) }

func (c *CLUT)String() string {
	return fmt.Sprintf("CLUT[%d rows, matrix %v]", c.Len(), len(c.Matrix) == c.Len())
}

// MatrixAt linearly interpolates the matrix block at intensity `x`,
// clamping outside the domain.
func (c *CLUT)MatrixAt(x float64) (emath.Mat3, error) {
	n := c.Len()
	if n == 0 || len(c.Matrix) != n {
		return emath.Mat3{}, fmt.Errorf("CLUT has no color matrix block")
	}

	xs := c.IntensityIn
	switch {
	case math.IsNaN(x):
		nan := math.NaN()
		return emath.Mat3{nan, nan, nan, nan, nan, nan, nan, nan, nan}, nil
	case x <= xs[0]:
		return c.Matrix[0], nil
	case x >= xs[n-1]:
		return c.Matrix[n-1], nil
	}

	i := sort.SearchFloat64s(xs, x) // first xs[i] >= x, and i>0 here
	if xs[i] == x {
		return c.Matrix[i], nil
	}
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return emath.Lerp(c.Matrix[i-1], c.Matrix[i], t), nil
}

// ToXYZ predicts the XYZ color the display emits for an RGB drive
// triple, using the matrix in force at drive level `x`.
func (c *CLUT)ToXYZ(rgb hdrcolor.RGB, x float64) (hdrcolor.XYZ, error) {
	m, err := c.MatrixAt(x)
	if err != nil {
		return hdrcolor.XYZ{}, err
	}
	return ecolor.ApplyColorMatrix(rgb, m), nil
}

// Grey projects the CLUT down to a greyscale LUT for one channel, with
// no luminance column.
func (c *CLUT)Grey(ch int) (*LUT, error) {
	if ch < 0 || ch > 2 {
		return nil, fmt.Errorf("no channel %d in a CLUT", ch)
	}
	l := &LUT{
		IntensityIn:  append([]float64(nil), c.IntensityIn...),
		IntensityOut: append([]float64(nil), c.Out[ch]...),
		Meta:         Meta{Rows: c.Len()},
	}
	return l, nil
}
