// Package plot draws the calibration curves as PNG files, so a human
// can eyeball whether the measurements, the fit and the LUT look sane.
package plot

import(
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

const(
	PanelWidth  = 800
	PanelHeight = 400
	margin      = 60.0
)

// A Series is one line on a panel. NaN points break the line.
type Series struct {
	Name    string
	X, Y    []float64
	R, G, B float64
}

type Panel struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// Palette is the line colors, in the order series get them
var Palette = [][3]float64{
	{0.12, 0.47, 0.71},
	{1.00, 0.50, 0.05},
	{0.17, 0.63, 0.17},
	{0.84, 0.15, 0.16},
}

func NewSeries(name string, x, y []float64, colorIndex int) Series {
	c := Palette[colorIndex % len(Palette)]
	return Series{Name: name, X: x, Y: y, R: c[0], G: c[1], B: c[2]}
}

func (p Panel)dataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range p.Series {
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}

	if math.IsInf(xmin, 1) { xmin, xmax = 0, 1 }
	if math.IsInf(ymin, 1) { ymin, ymax = 0, 1 }
	if xmax == xmin { xmin, xmax = xmin-0.5, xmax+0.5 }
	if ymax == ymin { ymin, ymax = ymin-0.5, ymax+0.5 }
	return
}

func (p Panel)validate() error {
	for _, s := range p.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series '%s' has %d x values but %d y values", s.Name, len(s.X), len(s.Y))
		}
	}
	return nil
}

// draw renders the panel into the box at (ox,oy) of size w*h
func (p Panel)draw(dc *gg.Context, ox, oy, w, h float64) {
	xmin, xmax, ymin, ymax := p.dataRange()
	left, right := ox + margin, ox + w - margin/2
	top, bottom := oy + margin/2, oy + h - margin

	toX := func(x float64) float64 { return left + (x-xmin)/(xmax-xmin)*(right-left) }
	toY := func(y float64) float64 { return bottom - (y-ymin)/(ymax-ymin)*(bottom-top) }

	// Frame and labels
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, right-left, bottom-top)
	dc.Stroke()
	dc.DrawStringAnchored(p.Title, (left+right)/2, oy + margin/4, 0.5, 0.5)
	dc.DrawStringAnchored(p.XLabel, (left+right)/2, bottom + margin/2, 0.5, 0.5)
	dc.DrawStringAnchored(p.YLabel, ox + 4, top - 6, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", xmin), left, bottom + 12, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", xmax), right, bottom + 12, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", ymin), left - 4, bottom, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", ymax), left - 4, top, 1, 0.5)

	for i, s := range p.Series {
		dc.SetRGB(s.R, s.G, s.B)
		dc.SetLineWidth(1.5)

		penDown := false
		for j := range s.X {
			x, y := s.X[j], s.Y[j]
			if math.IsNaN(x) || math.IsNaN(y) {
				penDown = false
				continue
			}
			if penDown {
				dc.LineTo(toX(x), toY(y))
			} else {
				dc.MoveTo(toX(x), toY(y))
				penDown = true
			}
		}
		dc.Stroke()

		// Legend, top left
		ly := top + 14 + float64(i)*14
		dc.DrawLine(left + 8, ly, left + 28, ly)
		dc.Stroke()
		dc.DrawStringAnchored(s.Name, left + 32, ly, 0, 0.5)
	}
}

// Render stacks the panels vertically into one image
func Render(panels ...Panel) (image.Image, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}
	for _, p := range panels {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	dc := gg.NewContext(PanelWidth, PanelHeight * len(panels))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for i, p := range panels {
		p.draw(dc, 0, float64(i * PanelHeight), PanelWidth, PanelHeight)
	}
	return dc.Image(), nil
}

// WritePNG renders the panels into a PNG file
func WritePNG(filename string, panels ...Panel) error {
	img, err := Render(panels...)
	if err != nil {
		return err
	}
	return gg.SavePNG(filename, img)
}
