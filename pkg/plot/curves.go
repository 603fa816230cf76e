package plot

import(
	"github.com/abworrall/lumcal/pkg/lut"
)

// FitPanel compares the aggregated measurements with the smoothed fit
func FitPanel(raw, fitted lut.Table) Panel {
	return Panel{
		Title:  "Fit",
		XLabel: "Intensity",
		YLabel: "Luminance",
		Series: []Series{
			NewSeries("Empirical Average", raw.Intensity, raw.Luminance, 0),
			NewSeries("Fit", fitted.Intensity, fitted.Luminance, 1),
		},
	}
}

func Fit(raw, fitted lut.Table, filename string) error {
	return WritePNG(filename, FitPanel(raw, fitted))
}

// LUTPanels shows the correction curve, and (if the LUT has a luminance
// column) the luminance before and after correction.
func LUTPanels(l *lut.LUT) []Panel {
	panels := []Panel{{
		Title:  "Corrected Intensity",
		XLabel: "Input Intensity",
		YLabel: "Output Intensity",
		Series: []Series{
			NewSeries("Original", l.IntensityIn, l.IntensityIn, 0),
			NewSeries("Corrected", l.IntensityIn, l.IntensityOut, 1),
		},
	}}

	if len(l.Luminance) == l.Len() {
		panels = append(panels, Panel{
			Title:  "Corrected Luminance",
			XLabel: "Input Intensity",
			YLabel: "Luminance",
			Series: []Series{
				NewSeries("Original", l.IntensityOut, l.Luminance, 0),
				NewSeries("Corrected", l.IntensityIn, l.Luminance, 1),
			},
		})
	}
	return panels
}

func LUT(l *lut.LUT, filename string) error {
	return WritePNG(filename, LUTPanels(l)...)
}

// CLUTPanel draws the three channel curves in their own colors
func CLUTPanel(c *lut.CLUT) Panel {
	p := Panel{
		Title:  "Corrected Intensity per Channel",
		XLabel: "Input Intensity",
		YLabel: "Output Intensity",
	}
	names := []string{"R", "G", "B"}
	for ch := 0; ch < 3; ch++ {
		s := Series{Name: names[ch], X: c.IntensityIn, Y: c.Out[ch]}
		switch ch {
		case 0: s.R = 0.9
		case 1: s.G = 0.7
		case 2: s.B = 0.9
		}
		p.Series = append(p.Series, s)
	}
	return p
}

func CLUT(c *lut.CLUT, filename string) error {
	return WritePNG(filename, CLUTPanel(c))
}
