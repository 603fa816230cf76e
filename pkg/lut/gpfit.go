package lut

import(
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lumcal/pkg/emath"
)

// GPOptions control the gaussian process fit. It works well on small
// tables, but building the kernel matrix is O(n^2) in memory and the
// solve is O(n^3), so keep tables below a few thousand rows.
type GPOptions struct {
	LengthScale float64  // RBF kernel length scale, in intensity units
	Noise       float64  // measurement noise variance, added to the kernel diagonal
	Samples     int      // how many evenly spaced intensities to sample the fit at
	Workers     int
}

func DefaultGPOptions() GPOptions {
	return GPOptions{
		LengthScale: 0.05,
		Noise:       (0.2 + 4.0) / 2.0,
		Samples:     1 << 16,
		Workers:     8,
	}
}

// FitGaussianProcess fits a zero-mean gaussian process (RBF kernel) to
// the table, and samples its posterior mean at evenly spaced intensities
// spanning the table's own intensity range.
func FitGaussianProcess(t Table, opts GPOptions) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	n := t.Len()
	switch {
	case n < 2:
		return Table{}, ErrTooFewRows
	case opts.LengthScale <= 0:
		return Table{}, fmt.Errorf("gp length scale must be positive, got %g", opts.LengthScale)
	case opts.Samples < 2:
		return Table{}, fmt.Errorf("gp needs at least 2 samples, got %d", opts.Samples)
	}

	rbf := func(a, b float64) float64 {
		d := a - b
		return math.Exp(-(d * d) / (2 * opts.LengthScale * opts.LengthScale))
	}

	// (K + noise.I) alpha = y
	K := mat.NewSymDense(n, nil)
	for i:=0; i<n; i++ {
		for j:=i; j<n; j++ {
			v := rbf(t.Intensity[i], t.Intensity[j])
			if i == j {
				v += opts.Noise
			}
			K.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return Table{}, fmt.Errorf("gp kernel matrix is not positive definite (noise %g too small?)", opts.Noise)
	}
	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, append([]float64(nil), t.Luminance...))); err != nil {
		return Table{}, fmt.Errorf("gp solve: %w", err)
	}
	weights := alpha.RawVector().Data

	xs := emath.Linspace(t.Intensity[0], t.Intensity[n-1], opts.Samples)
	predict := func(x float64) float64 {
		k := make([]float64, n)
		for i, xi := range t.Intensity {
			k[i] = rbf(x, xi)
		}
		return floats.Dot(k, weights)
	}

	return Table{
		Intensity: xs,
		Luminance: predictConcurrently(xs, predict, opts.Workers),
	}, nil
}

type gpJob struct {
	// Inputs for the job
	Lo, Hi int

	// Output
	Values []float64
}

// predictConcurrently uses a pool of goroutines to evaluate `f` at
// every x, in chunks.
func predictConcurrently(xs []float64, f func(float64) float64, nWorkers int) []float64 {
	if nWorkers < 1 {
		nWorkers = 1
	}
	chunk := 1024

	nJobs := (len(xs) + chunk - 1) / chunk
	jobsChan    := make(chan gpJob, nJobs)
	resultsChan := make(chan gpJob, nJobs)

	// Kick off worker pool
	var wg sync.WaitGroup
	for i:=0; i<nWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			for job := range jobsChan {
				job.Values = make([]float64, job.Hi - job.Lo)
				for j := job.Lo; j < job.Hi; j++ {
					job.Values[j-job.Lo] = f(xs[j])
				}
				resultsChan<- job
			}
		}()
	}

	// Feed in jobs
	for lo:=0; lo<len(xs); lo += chunk {
		hi := lo + chunk
		if hi > len(xs) { hi = len(xs) }
		jobsChan<- gpJob{Lo: lo, Hi: hi}
	}

	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	// results processor
	out := make([]float64, len(xs))
	for result := range resultsChan {
		copy(out[result.Lo:result.Hi], result.Values)
	}

	return out
}
