package lut

import(
	"math"
	"testing"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/lumcal/pkg/emath"
)

func TestApplyIdentity(t *testing.T) {
	l, err := NewLUT(DefaultLUTRows, 1.0, 1.0, 0.0)
	require.NoError(t, err)

	xs := emath.Linspace(0, 1, 1001)
	img, err := NewArray(xs, len(xs))
	require.NoError(t, err)

	out, err := Apply(img, l)
	require.NoError(t, err)
	assert.Equal(t, img.Shape, out.Shape)
	for i, x := range xs {
		assert.InDelta(t, x, out.Data[i], 1e-12)
	}
}

func TestApplyShapes(t *testing.T) {
	l, err := NewLUT(64, 2.2, 1, 0)
	require.NoError(t, err)
	c, err := NewCorrector(l)
	require.NoError(t, err)

	out, err := c.Apply(Scalar(0.25))
	require.NoError(t, err)
	assert.Empty(t, out.Shape)
	assert.InDelta(t, math.Pow(0.25, 1/2.2), out.Data[0], 1e-3)

	img, err := NewArray([]float64{0, 0.5, 1, 0.25, 0.75, 0.125}, 2, 3)
	require.NoError(t, err)
	out, err = c.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out.Shape)
	assert.Equal(t, 0.0, out.Data[0])
	assert.Equal(t, 1.0, out.Data[2])

	// Input untouched
	assert.Equal(t, 0.5, img.Data[1])
}

func TestApplyClamps(t *testing.T) {
	l, err := NewLUT(16, 2.0, 1, 0)
	require.NoError(t, err)
	c, err := NewCorrector(l)
	require.NoError(t, err)

	v, err := c.Value(0, -0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	v, err = c.Value(0, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	v, err = c.Value(0, math.NaN())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestValueRejectsBadChannel(t *testing.T) {
	l, err := NewLUT(16, 2.0, 1, 0)
	require.NoError(t, err)
	c, err := NewCorrector(l)
	require.NoError(t, err)

	for _, ch := range []int{-1, 1, 3} {
		_, err := c.Value(ch, 0.5)
		assert.Error(t, err, "ch=%d", ch)
	}

	clut, err := NewCLUT(8, UniformGamma(2.2), emath.Identity3(), emath.Vec3{})
	require.NoError(t, err)
	cc, err := NewCorrector(clut)
	require.NoError(t, err)
	_, err = cc.Value(2, 0.5)
	assert.NoError(t, err)
	_, err = cc.Value(3, 0.5)
	assert.Error(t, err)
}

func TestApplyRGBChannelIndependence(t *testing.T) {
	gammas := emath.Vec3{1.8, 2.2, 2.6}
	clut, err := NewCLUT(1024, gammas, emath.Identity3(), emath.Vec3{0.01, 0.012, 0.015})
	require.NoError(t, err)

	// Every pixel has the same value in all three channels
	vals := []float64{0.1, 0.4, 0.7, 0.95}
	data := []float64{}
	for _, v := range vals {
		data = append(data, v, v, v)
	}
	img, err := NewArray(data, 2, 2, 3)
	require.NoError(t, err)

	out, err := Apply(img, clut)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 3}, out.Shape)

	for p, v := range vals {
		for ch := 0; ch < 3; ch++ {
			assert.InDelta(t, math.Pow(v, 1/gammas[ch]), out.Data[p*3+ch], 1e-4, "pixel %d ch %d", p, ch)
		}
	}

	rgb := mustCorrector(t, clut).ApplyRGB(hdrcolor.RGB{R: 0.4, G: 0.4, B: 0.4})
	assert.InDelta(t, math.Pow(0.4, 1/1.8), rgb.R, 1e-4)
	assert.InDelta(t, math.Pow(0.4, 1/2.2), rgb.G, 1e-4)
	assert.InDelta(t, math.Pow(0.4, 1/2.6), rgb.B, 1e-4)
}

func mustCorrector(t *testing.T, g GammaTable) *Corrector {
	c, err := NewCorrector(g)
	require.NoError(t, err)
	return c
}

func TestApplyCLUTNeedsThreeChannels(t *testing.T) {
	clut, err := NewCLUT(8, UniformGamma(2.2), emath.Identity3(), emath.Vec3{})
	require.NoError(t, err)

	for _, shape := range [][]int{{}, {6}, {2, 2}, {3, 2}} {
		size := 1
		for _, d := range shape { size *= d }
		img, err := NewArray(make([]float64, size), shape...)
		require.NoError(t, err)

		_, err = Apply(img, clut)
		assert.Error(t, err, "shape %v", shape)
	}

	// A greyscale table doesn't care about the trailing axis
	l, err := NewLUT(8, 2.2, 1, 0)
	require.NoError(t, err)
	img, err := NewArray(make([]float64, 12), 2, 2, 3)
	require.NoError(t, err)
	_, err = Apply(img, l)
	assert.NoError(t, err)
}

func TestNewCorrectorRejectsBadDomain(t *testing.T) {
	_, err := NewCorrector(&LUT{IntensityIn: []float64{0, 0.5, 0.5, 1}, IntensityOut: []float64{0, 1, 2, 3}})
	assert.ErrorIs(t, err, ErrNotIncreasing)

	_, err = NewCorrector(&LUT{IntensityIn: []float64{0, 1, 0.5}, IntensityOut: []float64{0, 1, 2}})
	assert.ErrorIs(t, err, ErrNotIncreasing)

	_, err = NewCorrector(&LUT{IntensityIn: []float64{0.5}, IntensityOut: []float64{1}})
	assert.ErrorIs(t, err, ErrTooFewRows)

	_, err = NewCorrector(&LUT{IntensityIn: []float64{0, 1}, IntensityOut: []float64{0}})
	assert.Error(t, err)

	_, err = NewCorrector(nil)
	assert.Error(t, err)
}

func TestNewArrayShapeMismatch(t *testing.T) {
	_, err := NewArray([]float64{1, 2, 3}, 2, 2)
	assert.Error(t, err)
	_, err = NewArray([]float64{}, -1)
	assert.Error(t, err)
}

func TestApplyGrid(t *testing.T) {
	l, err := NewLUT(32, 2.0, 1, 0)
	require.NoError(t, err)
	c := mustCorrector(t, l)

	g := emath.NewFloatGrid(3, 2)
	g.Set(1, 1, 0.25)
	g.Set(2, 0, 1.0)

	out, err := c.ApplyGrid(g)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Dx())
	assert.Equal(t, 2, out.Dy())
	assert.InDelta(t, 0.5, out.Get(1, 1), 1e-3)
	assert.Equal(t, 1.0, out.Get(2, 0))

	clut, err := NewCLUT(8, UniformGamma(2.2), emath.Identity3(), emath.Vec3{})
	require.NoError(t, err)
	_, err = mustCorrector(t, clut).ApplyGrid(g)
	assert.Error(t, err)
}

func TestLuminanceAt(t *testing.T) {
	l, err := NewLUT(101, 1.0, 100, 0.5)
	require.NoError(t, err)

	lum, err := l.LuminanceAt(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 50.5, lum, 1e-9)

	l.Luminance = nil
	_, err = l.LuminanceAt(0.5)
	assert.Error(t, err)
}
