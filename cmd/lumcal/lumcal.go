package main

import(
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/abworrall/lumcal/pkg/lut"
)

// A command is one subcommand of lumcal
type command struct {
	usage string
	run   func(args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"simulate":    {"measure a simulated display, writing a measurement file", runSimulate},
		"smooth":      {"aggregate measurement files and smooth them into a fit table", runSmooth},
		"linearize":   {"turn a fit table into a LUT", runLinearize},
		"calibrate":   {"measurement files all the way to a LUT", runCalibrate},
		"create-lut":  {"write a parametric greyscale LUT", runCreateLUT},
		"create-clut": {"write a parametric color LUT", runCreateCLUT},
		"apply":       {"gamma correct a stimulus image, and pack it for a display", runApply},
		"plot":        {"plot a fit, a LUT or a CLUT to PNG", runPlot},
		"bench":       {"time LUT application on random images", runBench},
	}
}

func usage() {
	names := []string{}
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "usage: lumcal <command> [flags] [args]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, commands[name].usage)
	}
	fmt.Fprintf(os.Stderr, "\nrun 'lumcal <command> -h' for the flags of a command\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, exists := commands[os.Args[1]]
	if !exists {
		usage()
		os.Exit(2)
	}

	log.Printf("lumcal %s starting\n", os.Args[1])
	if err := cmd.run(os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

// pipelineFlags are shared by the commands that run the calibration
// pipeline. They override whatever the config file says, if set.
type pipelineFlags struct {
	configFile string
	verbosity  int
	smoother   string
	order      int
	tailAnchor bool
	resolution int
	dedup      bool
	noOutliers bool
}

func (pf *pipelineFlags)register(fs *flag.FlagSet) {
	fs.StringVar(&pf.configFile, "config", "", "YAML config file (see lut.Config)")
	fs.IntVar(&pf.verbosity, "v", 0, "how verbose to get")
	fs.StringVar(&pf.smoother, "smoother", "kernel", "how to smooth the measurements: "+lut.ListSmoothers())
	fs.IntVar(&pf.order, "order", 0, "how many passes of the smoothing kernel")
	fs.BoolVar(&pf.tailAnchor, "tailanchor", false, "rescale the smoothed curve so its bright end matches the data")
	fs.IntVar(&pf.resolution, "res", 12, "LUT resolution, in bits")
	fs.BoolVar(&pf.dedup, "dedup", false, "collapse repeated lookup indices (LUT may have fewer than 2^res rows)")
	fs.BoolVar(&pf.noOutliers, "nooutliers", false, "don't reject outlier readings")
}

// config loads the config file (if any), then applies the flags that
// were explicitly set on the command line.
func (pf *pipelineFlags)config(fs *flag.FlagSet) (lut.Config, error) {
	c := lut.NewConfig()
	if pf.configFile != "" {
		var err error
		if c, err = lut.LoadConfig(pf.configFile); err != nil {
			return c, err
		}
		log.Printf("Loaded base configuration from %s\n", pf.configFile)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":          c.Verbosity = pf.verbosity
		case "smoother":   c.Smoother = pf.smoother
		case "order":      c.Smoothing.Order = pf.order
		case "tailanchor": c.Smoothing.TailAnchor = pf.tailAnchor
		case "res":        c.Linearize.Resolution = pf.resolution
		case "dedup":      c.Linearize.Dedup = pf.dedup
		case "nooutliers": c.Outliers.Disabled = pf.noOutliers
		}
	})

	if c.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", c.AsYaml())
	}
	return c, c.Validate()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: lumcal %s [flags] [args]\n  %s\n\nflags:\n", name, commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

func needArgs(fs *flag.FlagSet, what string) error {
	if fs.NArg() == 0 {
		return fmt.Errorf("%s: no %s given", fs.Name(), what)
	}
	return nil
}

func joinArgs(args []string) string { return strings.Join(args, ", ") }
