package ecolor

import(
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/lumcal/pkg/emath"
)

// A Chromaticity is a CIE xyY triple: (x,y) locate the color, Y is its
// luminance.
type Chromaticity struct {
	X, Y, Lum float64
}

func (c Chromaticity)String() string {
	return fmt.Sprintf("xyY[%.4f, %.4f, %.4f]", c.X, c.Y, c.Lum)
}

// ApplyColorMatrix maps a display RGB drive triple through a 3x3
// RGB->XYZ matrix, as measured for a display (channel crosstalk and
// all). Just as a DNG ForwardMatrix does for a camera.
func ApplyColorMatrix(rgb hdrcolor.RGB, m emath.Mat3) hdrcolor.XYZ {
	xyz := m.Apply(emath.Vec3{rgb.R, rgb.G, rgb.B})
	return hdrcolor.XYZ{X: xyz[0], Y: xyz[1], Z: xyz[2]}
}

// ToChromaticity converts XYZ into xyY. Black (X+Y+Z == 0) has no
// defined chromaticity; go-colorful hands back the D65 whitepoint for it.
func ToChromaticity(xyz hdrcolor.XYZ) Chromaticity {
	x, y, Y := colorful.XyzToXyy(xyz.X, xyz.Y, xyz.Z)
	return Chromaticity{X: x, Y: y, Lum: Y}
}

// PrimaryChromaticities gives the chromaticity of each display primary
// driven alone at full scale through `m`.
func PrimaryChromaticities(m emath.Mat3) [3]Chromaticity {
	ret := [3]Chromaticity{}
	for ch := 0; ch < 3; ch++ {
		rgb := hdrcolor.RGB{}
		switch ch {
		case 0: rgb.R = 1
		case 1: rgb.G = 1
		case 2: rgb.B = 1
		}
		ret[ch] = ToChromaticity(ApplyColorMatrix(rgb, m))
	}
	return ret
}

func HDRRGBFloorAt(c1 hdrcolor.RGB, min float64) hdrcolor.RGB {
	c2 := c1
	if c2.R < min { c2.R = min }
	if c2.G < min { c2.G = min }
	if c2.B < min { c2.B = min }
	return c2
}

func HDRRGBCeilingAt(c1 hdrcolor.RGB, max float64) hdrcolor.RGB {
	c2 := c1
	if c2.R > max { c2.R = max }
	if c2.G > max { c2.G = max }
	if c2.B > max { c2.B = max }
	return c2
}
