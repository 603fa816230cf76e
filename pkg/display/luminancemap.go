package display

import(
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/lumcal/pkg/ecolor"
	"github.com/abworrall/lumcal/pkg/lut"
)

// LuminanceMap is the luminance (cd/m^2) a calibrated display is
// predicted to emit for each pixel of a greyscale stimulus. Implements
// the image.Image and hdr.Image interfaces, so it can be written out as
// a radiance file and inspected in HDR tools.
type LuminanceMap struct {
	W, H   int
	Values []float64  // row-major
}

// Implement image.Image
func (lm LuminanceMap)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (lm LuminanceMap)Bounds() image.Rectangle       { return image.Rect(0, 0, lm.W, lm.H) }
func (lm LuminanceMap)At(x, y int) color.Color       { return lm.HDRAt(x,y) }

// Implement hdr.Image
func (lm LuminanceMap)HDRAt(x, y int) hdrcolor.Color {
	v := lm.Lum(x, y)
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (lm LuminanceMap)Size() int                     { return lm.W * lm.H }

func (lm LuminanceMap)Lum(x, y int) float64          { return lm.Values[y*lm.W + x] }

func (lm LuminanceMap)String() string {
	min, max := 0.0, 0.0
	for i, v := range lm.Values {
		if i == 0 || v < min { min = v }
		if i == 0 || v > max { max = v }
	}
	return fmt.Sprintf("LuminanceMap[%dx%d, %.3f..%.3f cd/m^2]", lm.W, lm.H, min, max)
}

// NewLuminanceMap predicts the luminance of each pixel of `img` (the
// requested intensities, before correction) from the LUT's luminance
// column.
func NewLuminanceMap(img lut.Array, l *lut.LUT) (LuminanceMap, error) {
	w, h, err := greyDims(img)
	if err != nil {
		return LuminanceMap{}, err
	}
	model, err := l.LuminanceModel()
	if err != nil {
		return LuminanceMap{}, err
	}

	lm := LuminanceMap{W: w, H: h, Values: make([]float64, len(img.Data))}
	for i, v := range img.Data {
		lm.Values[i] = model(v)
	}
	return lm, nil
}

// WriteToHDR outputs a HDR image. You can load this into photoshop or other HDR tools.
func (lm LuminanceMap)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("LuminanceMap.WriteToHDR, open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		err := rgbe.Encode(writer, lm)
		if err != nil {
			log.Printf("LuminanceMap.WriteToHDR, encoding RGBE file: %v\n", err)
		}
		return err
	}
}

// ColorMap is the XYZ color a display is predicted to emit for each
// pixel of an RGB stimulus, using a CLUT's color matrix block. The
// matrix for a pixel is the one in force at its brightest channel's
// drive level.
type ColorMap struct {
	W, H   int
	Values []hdrcolor.XYZ  // row-major
}

func (cm ColorMap)ColorModel() color.Model       { return hdrcolor.XYZModel }
func (cm ColorMap)Bounds() image.Rectangle       { return image.Rect(0, 0, cm.W, cm.H) }
func (cm ColorMap)At(x, y int) color.Color       { return cm.HDRAt(x,y) }
func (cm ColorMap)HDRAt(x, y int) hdrcolor.Color { return cm.Values[y*cm.W + x] }
func (cm ColorMap)Size() int                     { return cm.W * cm.H }

// MeanChromaticity averages XYZ over the whole map, then converts
func (cm ColorMap)MeanChromaticity() ecolor.Chromaticity {
	sum := hdrcolor.XYZ{}
	for _, v := range cm.Values {
		sum.X += v.X
		sum.Y += v.Y
		sum.Z += v.Z
	}
	n := float64(len(cm.Values))
	if n == 0 {
		return ecolor.ToChromaticity(sum)
	}
	return ecolor.ToChromaticity(hdrcolor.XYZ{X: sum.X/n, Y: sum.Y/n, Z: sum.Z/n})
}

func (cm ColorMap)String() string {
	return fmt.Sprintf("ColorMap[%dx%d, mean %s]", cm.W, cm.H, cm.MeanChromaticity())
}

func NewColorMap(img lut.Array, c *lut.CLUT) (ColorMap, error) {
	if len(img.Shape) != 3 || img.Shape[2] != 3 {
		return ColorMap{}, fmt.Errorf("color map needs an H*W*3 array, got shape %v", img.Shape)
	}
	h, w := img.Shape[0], img.Shape[1]

	cm := ColorMap{W: w, H: h, Values: make([]hdrcolor.XYZ, w*h)}
	for p := range cm.Values {
		rgb := hdrcolor.RGB{R: img.Data[3*p], G: img.Data[3*p+1], B: img.Data[3*p+2]}
		rgb = ecolor.HDRRGBCeilingAt(ecolor.HDRRGBFloorAt(rgb, 0), 1)

		xyz, err := c.ToXYZ(rgb, math.Max(rgb.R, math.Max(rgb.G, rgb.B)))
		if err != nil {
			return ColorMap{}, err
		}
		cm.Values[p] = xyz
	}
	return cm, nil
}

func (cm ColorMap)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("ColorMap.WriteToHDR, open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, cm)
	}
}
