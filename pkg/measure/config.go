package measure

import(
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

steps: 1024
min: 0
max: 1
repeats: 5
randomize: true
attempts: 5
delay: 200ms
seed: 42

*/

// Config describes one measurement sweep
type Config struct {
	Verbosity int

	Steps     int            // distinct intensities, evenly spaced over [Min,Max]
	Min       float64
	Max       float64
	Repeats   int            // readings at each intensity
	Randomize bool           // shuffle the order intensities are shown in
	Reverse   bool           // go from bright to dark (applied after any shuffle)
	Seed      int64          // for the shuffle

	Attempts  int            // photometer retries per reading
	Delay     time.Duration  // between photometer retries
}

func NewConfig() Config {
	return Config{
		Steps:    65536,
		Min:      0.0,
		Max:      1.0,
		Repeats:  5,
		Seed:     1,
		Attempts: 5,
		Delay:    200 * time.Millisecond,
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

func (c Config)Validate() error {
	switch {
	case c.Steps < 1:
		return fmt.Errorf("need at least one step, got %d", c.Steps)
	case c.Repeats < 1:
		return fmt.Errorf("need at least one reading per step, got %d", c.Repeats)
	case c.Min < 0 || c.Max > 1 || !(c.Min <= c.Max):
		return fmt.Errorf("intensity range [%g,%g] is not inside [0,1]", c.Min, c.Max)
	case c.Steps > 1 && c.Min == c.Max:
		return fmt.Errorf("%d steps over an empty range [%g,%g]", c.Steps, c.Min, c.Max)
	}
	return nil
}
