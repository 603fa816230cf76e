package measure

import(
	"bytes"
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/lumcal/pkg/lut"
)

// flakyPhotometer fails its first `failures` reads, then returns `lum`
type flakyPhotometer struct {
	failures int
	lum      float64
	calls    int
}

func (f *flakyPhotometer)ReadLuminance(ctx context.Context) (float64, error) {
	f.calls++
	if f.calls <= f.failures {
		return math.NaN(), ErrReadFailed
	}
	return f.lum, nil
}

func TestRetryingSucceeds(t *testing.T) {
	p := &flakyPhotometer{failures: 2, lum: 42}
	r := Retrying{Photometer: p, Attempts: 5, Delay: time.Millisecond}

	lum, err := r.ReadLuminance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.0, lum)
	assert.Equal(t, 3, p.calls)
}

func TestRetryingGivesUpWithNaN(t *testing.T) {
	p := &flakyPhotometer{failures: 100, lum: 42}
	r := Retrying{Photometer: p, Attempts: 5}

	lum, err := r.ReadLuminance(context.Background())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(lum))
	assert.Equal(t, 5, p.calls)

	// Zero attempts still means one try
	p = &flakyPhotometer{lum: 1}
	lum, err = Retrying{Photometer: p}.ReadLuminance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, lum)
}

func TestRetryingCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyPhotometer{failures: 100}
	r := Retrying{Photometer: p, Attempts: 5, Delay: time.Hour}
	lum, err := r.ReadLuminance(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, math.IsNaN(lum))
	assert.Equal(t, 1, p.calls)
}

func TestConfig(t *testing.T) {
	c, err := newConfigFromYaml([]byte("steps: 10\nrepeats: 2\ndelay: 50ms\nreverse: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Steps)
	assert.Equal(t, 2, c.Repeats)
	assert.Equal(t, 50*time.Millisecond, c.Delay)
	assert.True(t, c.Reverse)
	assert.Equal(t, 5, c.Attempts) // default
	assert.NoError(t, c.Validate())

	assert.NoError(t, NewConfig().Validate())
	for _, bad := range []Config{
		{Steps: 0, Repeats: 1, Max: 1},
		{Steps: 5, Repeats: 0, Max: 1},
		{Steps: 5, Repeats: 1, Min: -0.1, Max: 1},
		{Steps: 5, Repeats: 1, Min: 0.8, Max: 0.2},
		{Steps: 5, Repeats: 1, Min: 0.5, Max: 0.5},
	} {
		assert.Error(t, bad.Validate(), "%+v", bad)
	}
}

func TestIntensities(t *testing.T) {
	c := Config{Steps: 5, Max: 1, Repeats: 1}
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, c.Intensities())

	c.Reverse = true
	assert.Equal(t, []float64{1, 0.75, 0.5, 0.25, 0}, c.Intensities())

	c = Config{Steps: 100, Max: 1, Repeats: 1, Randomize: true, Seed: 7}
	xs := c.Intensities()
	assert.Equal(t, xs, c.Intensities(), "same seed, same order")
	assert.False(t, sort.Float64sAreSorted(xs))

	sort.Float64s(xs)
	assert.Equal(t, Config{Steps: 100, Max: 1}.Intensities(), xs)
}

func newSimulation(t *testing.T, noise, failureRate float64) (*SimulatedDisplay, *SimulatedPhotometer) {
	model, err := lut.NewLUT(lut.DefaultLUTRows, 2.2, 150, 1)
	require.NoError(t, err)
	d := &SimulatedDisplay{}
	p, err := NewSimulatedPhotometer(d, model, noise, failureRate, 1)
	require.NoError(t, err)
	return d, p
}

func TestRunWritesMeasurementFile(t *testing.T) {
	d, p := newSimulation(t, 0.0, 0.0)
	cfg := Config{Steps: 11, Max: 1, Repeats: 3, Attempts: 1}

	var buf bytes.Buffer
	samples, err := Run(context.Background(), cfg, d, p, &buf)
	require.NoError(t, err)
	require.Len(t, samples, 33)
	assert.Equal(t, 11, d.Shown)

	// With no noise, the readings are the model
	assert.Equal(t, 1.0, samples[0].Luminance)
	assert.InDelta(t, 151.0, samples[32].Luminance, 1e-9)

	read, err := lut.ReadSamples(&buf)
	require.NoError(t, err)
	assert.Equal(t, samples, read)
}

func TestRunWithFailures(t *testing.T) {
	d, p := newSimulation(t, 0.01, 0.5)
	cfg := Config{Steps: 64, Max: 1, Repeats: 5, Attempts: 1, Randomize: true, Seed: 3}

	samples, err := Run(context.Background(), cfg, d, p, nil)
	require.NoError(t, err)
	require.Len(t, samples, 64*5)

	nFailed := 0
	for _, s := range samples {
		if !s.Valid() {
			nFailed++
		}
	}
	assert.Greater(t, nFailed, 50)
	assert.Less(t, nFailed, 270)

	// With retries there's hardly ever a NaN left
	d, p = newSimulation(t, 0.01, 0.5)
	cfg.Attempts = 20
	samples, err = Run(context.Background(), cfg, d, p, nil)
	require.NoError(t, err)
	tbl, err := lut.Aggregate(lut.DefaultOutlierConfig(), samples)
	require.NoError(t, err)
	assert.Equal(t, 64, tbl.Len())
}

type brokenDisplay struct{}

func (brokenDisplay)ShowIntensity(ctx context.Context, v float64) error {
	return errors.New("no signal")
}

func TestRunStopsEarly(t *testing.T) {
	_, p := newSimulation(t, 0, 0)
	cfg := Config{Steps: 10, Max: 1, Repeats: 2}

	_, err := Run(context.Background(), cfg, brokenDisplay{}, p, nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &SimulatedDisplay{}
	samples, err := Run(ctx, cfg, d, p, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, samples)

	_, err = Run(context.Background(), Config{}, d, p, nil)
	assert.Error(t, err)
}

func TestSimulatedDisplayRange(t *testing.T) {
	d := &SimulatedDisplay{}
	assert.Error(t, d.ShowIntensity(context.Background(), 1.5))
	assert.Error(t, d.ShowIntensity(context.Background(), math.NaN()))
	assert.NoError(t, d.ShowIntensity(context.Background(), 0.3))
	assert.Equal(t, 0.3, d.Current())
}

func TestSimulatedSweepCalibrates(t *testing.T) {
	d, p := newSimulation(t, 0.02, 0.05)
	cfg := Config{Steps: 256, Max: 1, Repeats: 5, Attempts: 3}

	samples, err := Run(context.Background(), cfg, d, p, nil)
	require.NoError(t, err)

	c := lut.NewConfig()
	c.Smoothing.Order = 3
	c.Linearize.Resolution = 10
	cal, err := c.Calibrate(samples)
	require.NoError(t, err)
	assert.Equal(t, 1024, cal.LUT.Len())
}
