package lut

import(
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

verbosity: 1
outliers:
  absolute: 0.075
  relative: 0.0075
smoother: kernel
smoothing:
  kernel: [0.2, 0.2, 0.2, 0.2, 0.2]
  order: 5
  tailanchor: true
  tailpoints: 20
linearize:
  resolution: 12
  dedup: false

*/

// Config holds the knobs for turning measurements into a LUT. There is
// no global state; whoever needs it gets passed a Config.
type Config struct {
	Verbosity   int

	Outliers    OutlierConfig
	Smoother    string            // "kernel", "gp", or "none"
	Smoothing   SmoothOptions     // used by the "kernel" smoother
	GP          GPOptions         // used by the "gp" smoother
	Linearize   LinearizeOptions
}

// A SmoothFunc turns an aggregated table into a smoothed one
type SmoothFunc func(Config, Table) (Table, error)

var(
	Smoothers = []string{"kernel", "gp", "none"}
)

func ListSmoothers() string {
	return fmt.Sprintf("%v", Smoothers)
}

func NewConfig() Config {
	return Config{
		Outliers:  DefaultOutlierConfig(),
		Smoother:  "kernel",
		Smoothing: DefaultSmoothOptions(),
		GP:        DefaultGPOptions(),
		Linearize: DefaultLinearizeOptions(),
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %w", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse %s: %w", filename, err)
	}
	return c, c.Validate()
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Validate does sanity checks on values that would otherwise only blow
// up deep inside the pipeline.
func (c Config)Validate() error {
	if _, err := c.GetSmoother(); err != nil {
		return err
	}
	if c.Outliers.Absolute < 0 || c.Outliers.Relative < 0 {
		return fmt.Errorf("outlier thresholds must not be negative: %+v", c.Outliers)
	}
	if c.Smoothing.Order < 0 {
		return fmt.Errorf("smoothing order must not be negative, got %d", c.Smoothing.Order)
	}
	if err := c.Linearize.validate(); err != nil {
		return err
	}
	return nil
}

func (c Config)GetSmoother() (SmoothFunc, error) {
	switch c.Smoother {
	case "kernel", "": return SmoothByKernel, nil
	case "gp":         return SmoothByGaussianProcess, nil
	case "none":       return SmoothByNone, nil
	default:
		return nil, fmt.Errorf("no Smoother named '%s', wanted one of %s", c.Smoother, ListSmoothers())
	}
}

func SmoothByKernel(cfg Config, t Table) (Table, error) {
	if cfg.Verbosity > 0 {
		log.Printf("Smoothing %s: kernel %v, order %d, tail anchor %v (%d points)\n", t,
			cfg.Smoothing.Kernel, cfg.Smoothing.Order, cfg.Smoothing.TailAnchor, cfg.Smoothing.TailPoints)
	}
	return Smooth(t, cfg.Smoothing), nil
}

func SmoothByGaussianProcess(cfg Config, t Table) (Table, error) {
	if cfg.Verbosity > 0 {
		log.Printf("Fitting gaussian process to %s: %+v\n", t, cfg.GP)
	}
	return FitGaussianProcess(t, cfg.GP)
}

func SmoothByNone(cfg Config, t Table) (Table, error) {
	return Smooth(t, SmoothOptions{}), nil
}
