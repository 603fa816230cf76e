package lut

import(
	"fmt"
	"log"
)

// Calibration holds the intermediate tables of one run through the
// pipeline, so they can be saved and plotted.
type Calibration struct {
	Stats      AggregateStats
	Aggregated Table
	Smoothed   Table
	LUT        *LUT
}

// Aggregate runs the sample aggregator with this config's outlier rules
func (c Config)Aggregate(sets ...[]Sample) (Table, AggregateStats, error) {
	t, stats, err := AggregateWithStats(c.Outliers, sets...)
	if err != nil {
		return t, stats, err
	}
	if c.Verbosity > 0 {
		log.Printf("Aggregated: %s -> %s\n", stats, t)
		log.Printf("Surviving readings per intensity: %v\n", &stats.Survivors)
	}
	return t, stats, nil
}

// Smooth runs the configured smoother
func (c Config)Smooth(t Table) (Table, error) {
	smoother, err := c.GetSmoother()
	if err != nil {
		return Table{}, err
	}
	return smoother(c, t)
}

// Calibrate takes raw measurements all the way through to a LUT
func (c Config)Calibrate(sets ...[]Sample) (Calibration, error) {
	cal := Calibration{}
	var err error

	if cal.Aggregated, cal.Stats, err = c.Aggregate(sets...); err != nil {
		return cal, fmt.Errorf("aggregate: %w", err)
	}
	if cal.Smoothed, err = c.Smooth(cal.Aggregated); err != nil {
		return cal, fmt.Errorf("smooth: %w", err)
	}
	if cal.LUT, err = Linearize(cal.Smoothed, c.Linearize); err != nil {
		return cal, fmt.Errorf("linearize: %w", err)
	}

	if c.Verbosity > 0 {
		log.Printf("Calibrated: %s\n", cal.LUT)
		for _, note := range cal.LUT.Notes {
			log.Printf("Linearize: %s\n", note)
		}
	}
	return cal, nil
}
