package display

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/abworrall/lumcal/pkg/lut"
)

// LoadArray reads a stimulus image (TIFF or PNG) as intensities in
// [0,1]. Greyscale images become H*W arrays, anything else H*W*3.
func LoadArray(filename string) (lut.Array, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return lut.Array{}, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	case ".png":
		img, err = png.Decode(reader)
	default:
		return lut.Array{}, fmt.Errorf("'%s': can only load .tif or .png", filename)
	}
	if err != nil {
		return lut.Array{}, fmt.Errorf("decoding '%s': %w", filename, err)
	}

	return ToArray(img), nil
}

// ToArray converts an image to intensities at 16 bit precision
func ToArray(img image.Image) lut.Array {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		a := lut.Array{Shape: []int{h, w}, Data: make([]float64, w*h)}
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				a.Data[y*w + x] = float64(g.Y) / 65535.0
			}
		}
		return a
	}

	// Everything else goes via RGBA64, so paletted and YCbCr images work too
	rgba := image.NewRGBA64(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	a := lut.Array{Shape: []int{h, w, 3}, Data: make([]float64, w*h*3)}
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			c := rgba.RGBA64At(x, y)
			i := 3 * (y*w + x)
			a.Data[i]   = float64(c.R) / 65535.0
			a.Data[i+1] = float64(c.G) / 65535.0
			a.Data[i+2] = float64(c.B) / 65535.0
		}
	}
	return a
}
