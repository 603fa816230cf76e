package lut

import(
	"fmt"
	"math"
	"sort"

	"github.com/skypies/util/histogram"
	"gonum.org/v1/gonum/stat"
)

// NoMeasurementError means every reading at an intensity was invalid or
// rejected. The calibration run can't produce a gap-free table, so this
// is fatal.
type NoMeasurementError struct {
	Intensity float64
}

func (e *NoMeasurementError)Error() string {
	return fmt.Sprintf("no valid measurement at intensity %g", e.Intensity)
}

// OutlierConfig sets when a repeated reading is discarded. A reading is
// an outlier if its distance to the nearest other reading at the same
// intensity exceeds both thresholds.
type OutlierConfig struct {
	Disabled bool
	Absolute float64  // cd/m^2
	Relative float64  // fraction of the reading's own value
}

func DefaultOutlierConfig() OutlierConfig {
	return OutlierConfig{
		Absolute: 0.075,
		Relative: 0.0075,
	}
}

// AggregateStats describes what happened to the readings
type AggregateStats struct {
	Groups    int  // distinct intensities
	Readings  int  // all samples seen
	Invalid   int  // NaN readings dropped
	Outliers  int  // readings rejected as outliers

	// How many readings survived at each intensity
	Survivors histogram.Histogram
}

func (s AggregateStats)String() string {
	return fmt.Sprintf("%d readings over %d intensities, %d invalid, %d outliers",
		s.Readings, s.Groups, s.Invalid, s.Outliers)
}

// Aggregate collapses the repeated readings in all the sample sets into
// one robust mean luminance per distinct intensity. Intensities are
// grouped by exact equality.
func Aggregate(cfg OutlierConfig, sets ...[]Sample) (Table, error) {
	t, _, err := AggregateWithStats(cfg, sets...)
	return t, err
}

func AggregateWithStats(cfg OutlierConfig, sets ...[]Sample) (Table, AggregateStats, error) {
	stats := AggregateStats{
		Survivors: histogram.Histogram{NumBuckets:16, ValMin:0, ValMax:16},
	}

	groups := map[float64][]float64{}
	intensities := []float64{}

	for _, set := range sets {
		for _, s := range set {
			if math.IsNaN(s.Intensity) || math.IsInf(s.Intensity, 0) {
				return Table{}, stats, fmt.Errorf("sample with unusable intensity %v", s.Intensity)
			}
			stats.Readings++

			if _, exists := groups[s.Intensity]; !exists {
				groups[s.Intensity] = []float64{}
				intensities = append(intensities, s.Intensity)
			}

			if !s.Valid() {
				stats.Invalid++
				continue
			}
			groups[s.Intensity] = append(groups[s.Intensity], s.Luminance)
		}
	}

	sort.Float64s(intensities)
	stats.Groups = len(intensities)

	t := Table{
		Intensity: make([]float64, 0, len(intensities)),
		Luminance: make([]float64, 0, len(intensities)),
	}

	for _, intensity := range intensities {
		vals := groups[intensity]
		if !cfg.Disabled {
			var nOut int
			vals, nOut = rejectOutliers(vals, cfg)
			stats.Outliers += nOut
		}

		if len(vals) == 0 {
			return Table{}, stats, &NoMeasurementError{Intensity: intensity}
		}
		stats.Survivors.Add(histogram.ScalarVal(len(vals)))

		t.Intensity = append(t.Intensity, intensity)
		t.Luminance = append(t.Luminance, stat.Mean(vals, nil))
	}

	return t, stats, nil
}

// rejectOutliers drops each value whose nearest neighbour in the group
// is further away than both thresholds. A lone value has no neighbour,
// so it is kept.
func rejectOutliers(vals []float64, cfg OutlierConfig) ([]float64, int) {
	if len(vals) < 2 {
		return vals, 0
	}

	kept := make([]float64, 0, len(vals))
	for i, v := range vals {
		minDiff := math.Inf(1)
		for j, w := range vals {
			if i == j {
				continue
			}
			if d := math.Abs(w - v); d < minDiff {
				minDiff = d
			}
		}

		if minDiff > cfg.Absolute && minDiff / v > cfg.Relative {
			continue
		}
		kept = append(kept, v)
	}

	return kept, len(vals) - len(kept)
}
