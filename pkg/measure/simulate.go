package measure

import(
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/abworrall/lumcal/pkg/lut"
)

// SimulatedDisplay stands in for a real display. It just remembers the
// intensity it was last asked to show.
type SimulatedDisplay struct {
	mu      sync.Mutex
	current float64
	Shown   int
}

func (d *SimulatedDisplay)ShowIntensity(ctx context.Context, v float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("intensity %g is outside [0,1]", v)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = v
	d.Shown++
	return nil
}

func (d *SimulatedDisplay)Current() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SimulatedPhotometer reads a SimulatedDisplay through a model of the
// display's response (the luminance column of a LUT, as built by
// lut.NewLUT), adding gaussian noise and failing some of the time.
type SimulatedPhotometer struct {
	Display     *SimulatedDisplay
	Noise       float64  // std dev of the noise, cd/m^2
	FailureRate float64  // fraction of reads that fail

	response func(float64) float64
	mu       sync.Mutex
	rng      *rand.Rand
}

func NewSimulatedPhotometer(d *SimulatedDisplay, model *lut.LUT, noise, failureRate float64, seed int64) (*SimulatedPhotometer, error) {
	response, err := model.LuminanceModel()
	if err != nil {
		return nil, fmt.Errorf("simulated photometer model: %w", err)
	}
	return &SimulatedPhotometer{
		Display:     d,
		Noise:       noise,
		FailureRate: failureRate,
		response:    response,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

func (p *SimulatedPhotometer)ReadLuminance(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return math.NaN(), err
	}

	p.mu.Lock()
	fail := p.rng.Float64() < p.FailureRate
	noise := p.rng.NormFloat64() * p.Noise
	p.mu.Unlock()

	if fail {
		return math.NaN(), ErrReadFailed
	}
	return p.response(p.Display.Current()) + noise, nil
}
