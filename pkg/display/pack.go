// Package display turns corrected intensity arrays into what a
// graphics device needs to be sent, and loads stimuli from image files.
package display

import(
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/abworrall/lumcal/pkg/lut"
)

// A Packer discretizes a corrected array into device channels. Values
// are clamped to [0,1], NaN is treated as 0, and the scaled values are
// truncated (not rounded) to integers.
type Packer func(a lut.Array) (*image.RGBA, error)

var packers = map[string]Packer{
	"gpu-grey":      PackGrey8,
	"gpu-rgb":       PackRGB8,
	"datapixx":      PackDataPixx16,
	"viewpixx-grey": PackDataPixx16,
	"viewpixx-rgb":  PackRGB8,
}

func ListPackers() string {
	names := []string{}
	for k := range packers {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func GetPacker(mode string) (Packer, error) {
	if p, exists := packers[mode]; exists {
		return p, nil
	}
	return nil, fmt.Errorf("no Packer for mode '%s', wanted one of %s", mode, ListPackers())
}

// IsColor reports whether a mode takes H*W*3 arrays
func IsColor(mode string) bool {
	return strings.HasSuffix(mode, "-rgb")
}

func discretize(v float64, max uint32) uint32 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return max
	}
	return uint32(v * float64(max))
}

// greyDims treats a scalar as 1x1, a vector as one row, and a 2D array
// as itself.
func greyDims(a lut.Array) (w, h int, err error) {
	switch len(a.Shape) {
	case 0: return 1, 1, nil
	case 1: return a.Shape[0], 1, nil
	case 2: return a.Shape[1], a.Shape[0], nil
	}
	return 0, 0, fmt.Errorf("greyscale packing needs at most 2 dimensions, got shape %v", a.Shape)
}

// PackGrey8 duplicates an 8-bit grey level into R, G and B
func PackGrey8(a lut.Array) (*image.RGBA, error) {
	w, h, err := greyDims(a)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, v := range a.Data {
		n := uint8(discretize(v, 255))
		img.SetRGBA(i%w, i/w, color.RGBA{n, n, n, 255})
	}
	return img, nil
}

// PackDataPixx16 is the M16 video mode of DataPixx and ViewPixx: a 16
// bit grey level split over R (high byte) and G (low byte).
func PackDataPixx16(a lut.Array) (*image.RGBA, error) {
	w, h, err := greyDims(a)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, v := range a.Data {
		n := discretize(v, 65535)
		img.SetRGBA(i%w, i/w, color.RGBA{uint8(n >> 8), uint8(n & 0xff), 0, 255})
	}
	return img, nil
}

// PackRGB8 is plain 8 bits per channel, from an H*W*3 array
func PackRGB8(a lut.Array) (*image.RGBA, error) {
	if len(a.Shape) != 3 || a.Shape[2] != 3 {
		return nil, fmt.Errorf("RGB packing needs an H*W*3 array, got shape %v", a.Shape)
	}
	h, w := a.Shape[0], a.Shape[1]
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for p := 0; p < w*h; p++ {
		img.SetRGBA(p%w, p/w, color.RGBA{
			uint8(discretize(a.Data[3*p], 255)),
			uint8(discretize(a.Data[3*p+1], 255)),
			uint8(discretize(a.Data[3*p+2], 255)),
			255,
		})
	}
	return img, nil
}

// Unpack16 recovers the 16 bit grey level from a DataPixx pixel
func Unpack16(c color.RGBA) uint16 {
	return uint16(c.R) << 8 | uint16(c.G)
}
