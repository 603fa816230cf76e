package main

import(
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/abworrall/lumcal/pkg/display"
	"github.com/abworrall/lumcal/pkg/ecolor"
	"github.com/abworrall/lumcal/pkg/lut"
	"github.com/abworrall/lumcal/pkg/measure"
	"github.com/abworrall/lumcal/pkg/plot"
)

func runSimulate(args []string) error {
	fs := newFlagSet("simulate")
	configFile := fs.String("config", "", "YAML measurement config (see measure.Config)")
	out := fs.String("o", "measure.csv", "measurement file to write")
	steps := fs.Int("steps", 65536, "number of distinct intensities")
	repeats := fs.Int("n", 5, "readings per intensity")
	random := fs.Bool("random", false, "show intensities in a random order")
	reverse := fs.Bool("reverse", false, "show intensities from bright to dark")
	seed := fs.Int64("seed", 1, "random seed, for both the sweep order and the simulated photometer")
	gamma := fs.Float64("gamma", 2.2, "gamma of the simulated display")
	k := fs.Float64("k", 150, "peak luminance of the simulated display, above the dark level")
	dark := fs.Float64("dark", 0.5, "luminance of the simulated display at intensity 0")
	noise := fs.Float64("noise", 0.2, "stddev of the simulated photometer's noise")
	fail := fs.Float64("fail", 0.01, "fraction of simulated photometer reads that fail")
	verbosity := fs.Int("v", 0, "how verbose to get")
	fs.Parse(args)

	cfg := measure.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = measure.LoadConfig(*configFile); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "steps":   cfg.Steps = *steps
		case "n":       cfg.Repeats = *repeats
		case "random":  cfg.Randomize = *random
		case "reverse": cfg.Reverse = *reverse
		case "seed":    cfg.Seed = *seed
		case "v":       cfg.Verbosity = *verbosity
		}
	})
	cfg.Delay = 0 // nothing physical to wait for
	if err := cfg.Validate(); err != nil {
		return err
	}

	model, err := lut.NewLUT(lut.DefaultLUTRows, *gamma, *k, *dark)
	if err != nil {
		return err
	}
	d := &measure.SimulatedDisplay{}
	p, err := measure.NewSimulatedPhotometer(d, model, *noise, *fail, *seed)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("open+w '%s': %w", *out, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tStart := time.Now()
	samples, runErr := measure.Run(ctx, cfg, d, p, w)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write '%s': %w", *out, err)
	}
	log.Printf("Wrote %d samples to %s [%s]\n", len(samples), *out, time.Since(tStart))

	return runErr
}

func runSmooth(args []string) error {
	fs := newFlagSet("smooth")
	pf := pipelineFlags{}
	pf.register(fs)
	avgFile := fs.String("avg", "average.txt", "aggregated table to write")
	out := fs.String("o", "fit.txt", "smoothed table to write")
	plotFile := fs.String("plot", "", "if set, plot the fit against the average to this PNG")
	fs.Parse(args)

	c, err := pf.config(fs)
	if err != nil {
		return err
	}
	if err := needArgs(fs, "measurement files"); err != nil {
		return err
	}

	sets, err := lut.LoadSampleFilesAndDirs(fs.Args()...)
	if err != nil {
		return err
	}
	avg, _, err := c.Aggregate(sets...)
	if err != nil {
		return err
	}
	if err := avg.WriteFile(*avgFile); err != nil {
		return err
	}

	fit, err := c.Smooth(avg)
	if err != nil {
		return err
	}
	if err := fit.WriteFile(*out); err != nil {
		return err
	}
	log.Printf("Smoothed %s into %s (%s), average in %s\n", joinArgs(fs.Args()), *out, fit, *avgFile)

	if *plotFile != "" {
		return plot.Fit(avg, fit, *plotFile)
	}
	return nil
}

func runLinearize(args []string) error {
	fs := newFlagSet("linearize")
	pf := pipelineFlags{}
	pf.register(fs)
	in := fs.String("i", "fit.txt", "smoothed table to read")
	out := fs.String("o", "lut.txt", "LUT to write")
	fs.Parse(args)

	c, err := pf.config(fs)
	if err != nil {
		return err
	}

	t, err := lut.ReadTableFile(*in)
	if err != nil {
		return err
	}
	l, err := lut.Linearize(t, c.Linearize)
	if err != nil {
		return err
	}
	if err := l.WriteFile(*out); err != nil {
		return err
	}

	log.Printf("Linearized %s into %s: %s\n", *in, *out, l)
	if c.Verbosity > 0 {
		for _, note := range l.Notes {
			log.Printf("  note: %s\n", note)
		}
	}
	return nil
}

func runCalibrate(args []string) error {
	fs := newFlagSet("calibrate")
	pf := pipelineFlags{}
	pf.register(fs)
	out := fs.String("o", "lut.txt", "LUT to write")
	avgFile := fs.String("avg", "", "if set, also write the aggregated table")
	fitFile := fs.String("fit", "", "if set, also write the smoothed table")
	plotFile := fs.String("plot", "", "if set, plot the fit and the LUT to this PNG")
	fs.Parse(args)

	c, err := pf.config(fs)
	if err != nil {
		return err
	}
	if err := needArgs(fs, "measurement files"); err != nil {
		return err
	}

	sets, err := lut.LoadSampleFilesAndDirs(fs.Args()...)
	if err != nil {
		return err
	}
	cal, err := c.Calibrate(sets...)
	if err != nil {
		return err
	}

	if *avgFile != "" {
		if err := cal.Aggregated.WriteFile(*avgFile); err != nil {
			return err
		}
	}
	if *fitFile != "" {
		if err := cal.Smoothed.WriteFile(*fitFile); err != nil {
			return err
		}
	}
	if err := cal.LUT.WriteFile(*out); err != nil {
		return err
	}
	log.Printf("Calibrated %s into %s: %s (%s)\n", joinArgs(fs.Args()), *out, cal.LUT, cal.Stats)

	if *plotFile != "" {
		panels := append([]plot.Panel{plot.FitPanel(cal.Aggregated, cal.Smoothed)}, plot.LUTPanels(cal.LUT)...)
		return plot.WritePNG(*plotFile, panels...)
	}
	return nil
}

func runCreateLUT(args []string) error {
	fs := newFlagSet("create-lut")
	n := fs.Int("n", lut.DefaultLUTRows, "rows")
	gamma := fs.Float64("gamma", 2.2, "display gamma")
	k := fs.Float64("k", 1.0, "peak luminance, above the dark level")
	dark := fs.Float64("dark", 0.0, "luminance at intensity 0")
	out := fs.String("o", "lut.txt", "LUT to write")
	fs.Parse(args)

	l, err := lut.NewLUT(*n, *gamma, *k, *dark)
	if err != nil {
		return err
	}
	if err := l.WriteFile(*out); err != nil {
		return err
	}
	log.Printf("Wrote %s to %s\n", l, *out)
	return nil
}

func runCreateCLUT(args []string) error {
	fs := newFlagSet("create-clut")
	n := fs.Int("n", lut.DefaultLUTRows, "rows")
	gammaStr := fs.String("gamma", "2.2", "display gamma; one value, or three (R,G,B)")
	matrixStr := fs.String("matrix", "", "RGB->XYZ matrix at full intensity, nine values row-major (default identity)")
	darkStr := fs.String("dark", "0", "XYZ contribution of each channel at intensity 0; one value, or three")
	out := fs.String("o", "clut.txt", "CLUT to write")
	verbosity := fs.Int("v", 0, "how verbose to get")
	fs.Parse(args)

	gamma, err := parseVec3(*gammaStr)
	if err != nil {
		return fmt.Errorf("-gamma: %w", err)
	}
	m, err := parseMat3(*matrixStr)
	if err != nil {
		return fmt.Errorf("-matrix: %w", err)
	}
	dark, err := parseVec3(*darkStr)
	if err != nil {
		return fmt.Errorf("-dark: %w", err)
	}

	c, err := lut.NewCLUT(*n, gamma, m, dark)
	if err != nil {
		return err
	}
	if *verbosity > 0 {
		log.Printf("Color matrix %s, primaries %v\n", m, ecolor.PrimaryChromaticities(m))
	}
	if err := c.WriteFile(*out); err != nil {
		return err
	}
	log.Printf("Wrote %s to %s\n", c, *out)
	return nil
}

func runApply(args []string) error {
	fs := newFlagSet("apply")
	tableFile := fs.String("lut", "lut.txt", "LUT or CLUT to correct with")
	mode := fs.String("mode", "datapixx", "how to pack for the display: "+display.ListPackers())
	out := fs.String("o", "packed.png", "packed PNG to write")
	hdrFile := fs.String("hdr", "", "if set, write the predicted luminance (or XYZ, for a CLUT) to this .hdr file")
	preview := fs.String("preview", "", "if set, write a preview PNG of the corrected image (greyscale stimuli only)")
	verbosity := fs.Int("v", 0, "how verbose to get")
	fs.Parse(args)

	if err := needArgs(fs, "stimulus image"); err != nil {
		return err
	}

	table, err := lut.ReadGammaTableFile(*tableFile)
	if err != nil {
		return err
	}
	packer, err := display.GetPacker(*mode)
	if err != nil {
		return err
	}
	if table.Channels() == 3 && !display.IsColor(*mode) {
		return fmt.Errorf("mode %s is greyscale, can't use a color table", *mode)
	}

	img, err := display.LoadArray(fs.Arg(0))
	if err != nil {
		return err
	}
	if display.IsColor(*mode) && img.Channels() != 3 {
		return fmt.Errorf("%s is greyscale, mode %s needs color", fs.Arg(0), *mode)
	}
	if !display.IsColor(*mode) && len(img.Shape) != 2 {
		return fmt.Errorf("%s is color, mode %s needs greyscale", fs.Arg(0), *mode)
	}

	corrector, err := lut.NewCorrector(table)
	if err != nil {
		return err
	}

	var corrected lut.Array
	if len(img.Shape) == 2 {
		g, err := display.ToFloatGrid(img)
		if err != nil {
			return err
		}
		cg, err := corrector.ApplyGrid(g)
		if err != nil {
			return err
		}
		if *verbosity > 0 {
			log.Printf("Corrected %s -> %s\n", g.Stats(), cg.Stats())
		}
		if *preview != "" {
			if err := cg.ToImg(fs.Arg(0), *preview); err != nil {
				return err
			}
		}
		corrected = display.FromFloatGrid(cg)

	} else {
		if corrected, err = corrector.Apply(img); err != nil {
			return err
		}
	}

	packed, err := packer(corrected)
	if err != nil {
		return err
	}
	if err := display.WritePNG(packed, *out); err != nil {
		return err
	}
	log.Printf("Corrected %s with %s, packed as %s into %s\n", fs.Arg(0), *tableFile, *mode, *out)

	if *hdrFile == "" {
		return nil
	}
	switch t := table.(type) {
	case *lut.LUT:
		lm, err := display.NewLuminanceMap(img, t)
		if err != nil {
			return err
		}
		log.Printf("Predicted %s\n", lm)
		return lm.WriteToHDR(*hdrFile)
	case *lut.CLUT:
		cm, err := display.NewColorMap(img, t)
		if err != nil {
			return err
		}
		log.Printf("Predicted %s\n", cm)
		return cm.WriteToHDR(*hdrFile)
	}
	return nil
}

func runPlot(args []string) error {
	fs := newFlagSet("plot")
	out := fs.String("o", "plot.png", "PNG to write")
	fs.Parse(args)

	switch fs.NArg() {
	case 1:
		table, err := lut.ReadGammaTableFile(fs.Arg(0))
		if err != nil {
			return err
		}
		switch t := table.(type) {
		case *lut.LUT:  err = plot.LUT(t, *out)
		case *lut.CLUT: err = plot.CLUT(t, *out)
		}
		if err != nil {
			return err
		}

	case 2:
		avg, err := lut.ReadTableFile(fs.Arg(0))
		if err != nil {
			return err
		}
		fit, err := lut.ReadTableFile(fs.Arg(1))
		if err != nil {
			return err
		}
		if err := plot.Fit(avg, fit, *out); err != nil {
			return err
		}

	default:
		return fmt.Errorf("plot: want a LUT/CLUT file, or an average and a fit table")
	}

	log.Printf("Plotted %s into %s\n", joinArgs(fs.Args()), *out)
	return nil
}

func runBench(args []string) error {
	fs := newFlagSet("bench")
	tableFile := fs.String("lut", "", "LUT or CLUT to apply (default a 4096 row gamma 2.2 LUT)")
	size := fs.Int("size", 1024, "images are size x size pixels")
	iters := fs.Int("iters", 50, "how many images to correct")
	seed := fs.Int64("seed", 1, "random seed for the images")
	fs.Parse(args)

	var table lut.GammaTable
	if *tableFile != "" {
		var err error
		if table, err = lut.ReadGammaTableFile(*tableFile); err != nil {
			return err
		}
	} else {
		l, err := lut.NewLUT(4096, 2.2, 1.0, 0.0)
		if err != nil {
			return err
		}
		table = l
	}

	corrector, err := lut.NewCorrector(table)
	if err != nil {
		return err
	}

	shape := []int{*size, *size}
	if table.Channels() == 3 {
		shape = append(shape, 3)
	}
	rng := rand.New(rand.NewSource(*seed))
	data := make([]float64, (*size)*(*size)*table.Channels())
	for i := range data {
		data[i] = rng.Float64()
	}
	img, err := lut.NewArray(data, shape...)
	if err != nil {
		return err
	}

	// Microseconds, up to a minute per image
	h := hdrhistogram.New(1, 60*1000*1000, 3)
	for i:=0; i<*iters; i++ {
		tStart := time.Now()
		if _, err := corrector.Apply(img); err != nil {
			return err
		}
		us := time.Since(tStart).Microseconds()
		if us < 1 {
			us = 1
		}
		if err := h.RecordValue(us); err != nil {
			return err
		}
	}

	fmt.Printf("%d x %v, %d channel table of %d rows\n", h.TotalCount(), shape, table.Channels(), len(table.Domain()))
	fmt.Printf("  mean %8.0fus\n", h.Mean())
	for _, q := range []float64{50, 90, 99} {
		fmt.Printf("  p%-3.0f %8dus\n", q, h.ValueAtQuantile(q))
	}
	fmt.Printf("  max  %8dus\n", h.Max())
	return nil
}
