package display

import(
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/abworrall/lumcal/pkg/emath"
	"github.com/abworrall/lumcal/pkg/lut"
)

func TestPackDataPixx16(t *testing.T) {
	a, err := lut.NewArray([]float64{0, 0.5, 1, 1.2, -0.1, math.NaN()}, 2, 3)
	require.NoError(t, err)

	img, err := PackDataPixx16(a)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	// 0.5 * 65535 = 32767.5, truncated
	assert.Equal(t, color.RGBA{127, 255, 0, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, uint16(32767), Unpack16(img.RGBAAt(1, 0)))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, img.RGBAAt(2, 0))
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, img.RGBAAt(0, 1), "clamped high")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(1, 1), "clamped low")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(2, 1), "NaN")
}

func TestPackDataPixx16RoundTrip(t *testing.T) {
	for _, n := range []uint16{0, 1, 255, 256, 12345, 65534, 65535} {
		v := (float64(n) + 0.25) / 65535.0
		img, err := PackDataPixx16(lut.Scalar(v))
		require.NoError(t, err)
		assert.Equal(t, n, Unpack16(img.RGBAAt(0, 0)), "n=%d", n)
	}
}

func TestPackGrey8(t *testing.T) {
	a, err := lut.NewArray([]float64{0, 0.5, 1}, 3)
	require.NoError(t, err)

	img, err := PackGrey8(a)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 1), img.Bounds())
	assert.Equal(t, color.RGBA{127, 127, 127, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 0))

	_, err = PackGrey8(lut.Array{Shape: []int{1, 1, 3}, Data: make([]float64, 3)})
	assert.Error(t, err)
}

func TestPackRGB8(t *testing.T) {
	a, err := lut.NewArray([]float64{1, 0.5, 0, 0.2, 0.4, 0.6}, 1, 2, 3)
	require.NoError(t, err)

	img, err := PackRGB8(a)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 127, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{51, 102, 153, 255}, img.RGBAAt(1, 0))

	_, err = PackRGB8(lut.Scalar(0.5))
	assert.Error(t, err)
}

func TestGetPacker(t *testing.T) {
	for _, mode := range []string{"gpu-grey", "gpu-rgb", "datapixx", "viewpixx-grey", "viewpixx-rgb"} {
		p, err := GetPacker(mode)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	assert.True(t, IsColor("gpu-rgb"))
	assert.False(t, IsColor("datapixx"))

	_, err := GetPacker("crt")
	assert.Error(t, err)
	assert.Contains(t, ListPackers(), "datapixx")
}

func TestLoadArrayGreyPNGAndTIFF(t *testing.T) {
	dir := t.TempDir()

	src := image.NewGray16(image.Rect(0, 0, 4, 2))
	src.SetGray16(1, 0, color.Gray16{Y: 65535})
	src.SetGray16(3, 1, color.Gray16{Y: 32768})

	pngFile := filepath.Join(dir, "stim.png")
	require.NoError(t, WritePNG(src, pngFile))

	tifFile := filepath.Join(dir, "stim.tif")
	f, err := os.Create(tifFile)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, src, nil))
	require.NoError(t, f.Close())

	for _, filename := range []string{pngFile, tifFile} {
		a, err := LoadArray(filename)
		require.NoError(t, err, filename)
		assert.Equal(t, []int{2, 4}, a.Shape)
		assert.Equal(t, 1.0, a.Data[1])
		assert.InDelta(t, 0.5, a.Data[7], 1e-4)
		assert.Equal(t, 0.0, a.Data[0])
	}

	_, err = LoadArray(filepath.Join(dir, "stim.jpg"))
	assert.Error(t, err)
}

func TestLoadArrayColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	src.SetRGBA(1, 0, color.RGBA{255, 0, 51, 255})

	filename := filepath.Join(t.TempDir(), "color.png")
	require.NoError(t, WritePNG(src, filename))

	a, err := LoadArray(filename)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, a.Shape)
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0.2}, a.Data)
}

func TestFloatGridConversions(t *testing.T) {
	a, err := lut.NewArray([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)

	g, err := ToFloatGrid(a)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Dx())
	assert.Equal(t, 2, g.Dy())
	assert.Equal(t, 6.0, g.Get(2, 1))
	assert.Equal(t, a, FromFloatGrid(g))

	_, err = ToFloatGrid(lut.Scalar(1))
	assert.Error(t, err)
}

func TestLuminanceMap(t *testing.T) {
	l, err := lut.NewLUT(256, 2.2, 100, 0.5)
	require.NoError(t, err)
	a, err := lut.NewArray([]float64{0, 1, 0.5, 0.25}, 2, 2)
	require.NoError(t, err)

	lm, err := NewLuminanceMap(a, l)
	require.NoError(t, err)
	assert.Equal(t, 4, lm.Size())
	assert.Equal(t, 0.5, lm.Lum(0, 0))
	assert.Equal(t, 100.5, lm.Lum(1, 0))
	assert.InDelta(t, 100*math.Pow(0.5, 2.2)+0.5, lm.Lum(0, 1), 0.05)
	assert.Contains(t, lm.String(), "2x2")

	filename := filepath.Join(t.TempDir(), "lum.hdr")
	require.NoError(t, lm.WriteToHDR(filename))
	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// No luminance column, no map
	l.Luminance = nil
	_, err = NewLuminanceMap(a, l)
	assert.Error(t, err)
}

func TestColorMap(t *testing.T) {
	dark := emath.Vec3{0.01, 0.012, 0.015}
	c, err := lut.NewCLUT(16, lut.UniformGamma(2.2), emath.Identity3(), dark)
	require.NoError(t, err)

	a, err := lut.NewArray([]float64{1, 1, 1, 0, 0, 0}, 1, 2, 3)
	require.NoError(t, err)

	cm, err := NewColorMap(a, c)
	require.NoError(t, err)

	// Full white goes through the identity, black through the dark matrix (and is black)
	white := cm.HDRAt(0, 0)
	assert.Equal(t, 1.0, cm.Values[0].X)
	assert.Equal(t, 1.0, cm.Values[0].Y)
	assert.NotNil(t, white)
	assert.Equal(t, 0.0, cm.Values[1].Y)
	assert.Contains(t, cm.String(), "ColorMap[2x1")

	require.NoError(t, cm.WriteToHDR(filepath.Join(t.TempDir(), "color.hdr")))

	_, err = NewColorMap(lut.Scalar(0.5), c)
	assert.Error(t, err)
}
