package display

// A few helper routines for golang's image libraries

import(
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/abworrall/lumcal/pkg/emath"
	"github.com/abworrall/lumcal/pkg/lut"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// ToFloatGrid wraps a 2D array as a FloatGrid, sharing its data
func ToFloatGrid(a lut.Array) (emath.FloatGrid, error) {
	if len(a.Shape) != 2 {
		return emath.FloatGrid{}, fmt.Errorf("need a 2D array for a grid, got shape %v", a.Shape)
	}
	return emath.NewFloatGridFromValues(a.Shape[1], a.Data)
}

// FromFloatGrid is the inverse of ToFloatGrid
func FromFloatGrid(g emath.FloatGrid) lut.Array {
	return lut.Array{Shape: []int{g.Dy(), g.Dx()}, Data: g.Values()}
}
