package resample

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"gomediate/adapters/stats/ols"
	"gomediate/domain/core"
)

// Config controls a resampling run. Zero values take the defaults below.
type Config struct {
	Iterations int
	Seed       int64
	Workers    int
}

const (
	defaultIterations = 2000
	defaultWorkers    = 4
)

func (c Config) normalized() Config {
	if c.Iterations <= 0 {
		c.Iterations = defaultIterations
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Workers > c.Iterations {
		c.Workers = c.Iterations
	}
	return c
}

// Interval is a percentile confidence interval.
type Interval struct {
	Low  float64
	High float64
}

// BootstrapResult holds percentile intervals for the mediation effects.
// Intervals come from the resampled distribution; point estimates stay
// with the analytic fit.
type BootstrapResult struct {
	Iterations  int
	Valid       int
	Indirect    Interval
	Direct      Interval
	Total       Interval
	PctMediated Interval // percent of the total effect mediated
}

// MediationBootstrap resamples observation pairs with replacement and
// re-derives the mediation decomposition each draw. d is the mediator
// design (treatment plus controls and dummies, response = mediator);
// outcome holds the outcome value for each design row. Every draw solves
// the mediator equation on the resampled rows, then the outcome equation
// with the resampled mediator appended as the last column. Draws that
// fail to solve are skipped and counted out of Valid.
//
// Workers split the iterations into contiguous blocks, each with its own
// generator seeded from Seed plus the worker index, so a given Config
// always reproduces the same intervals.
func MediationBootstrap(ctx context.Context, d *ols.Design, outcome []float64, treatment string, cfg Config) (*BootstrapResult, error) {
	cfg = cfg.normalized()
	n, p := d.N(), d.P()
	if len(outcome) != n {
		return nil, fmt.Errorf("bootstrap: %d outcome values for %d design rows", len(outcome), n)
	}
	tIdx := d.ColumnIndex(treatment)
	if tIdx < 0 {
		return nil, fmt.Errorf("bootstrap: design has no %s column", treatment)
	}

	indirect := nanSlice(cfg.Iterations)
	direct := nanSlice(cfg.Iterations)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		start, end := block(cfg.Iterations, cfg.Workers, w)
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		g.Go(func() error {
			// Xout carries the resampled design plus the resampled
			// mediator as its last column; the mediator equation solves
			// against the leading p columns of the same matrix.
			Xout := mat.NewDense(n, p+1, nil)
			Xmed := Xout.Slice(0, n, 0, p).(*mat.Dense)
			yMed := mat.NewVecDense(n, nil)
			yOut := mat.NewVecDense(n, nil)
			idx := make([]int, n)

			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				for k := range idx {
					idx[k] = rng.Intn(n)
				}
				for r, src := range idx {
					row := Xout.RawRowView(r)
					copy(row[:p], d.X.RawRowView(src))
					me := d.Y.AtVec(src)
					row[p] = me
					yMed.SetVec(r, me)
					yOut.SetVec(r, outcome[src])
				}

				coefMed, err := ols.Solve(Xmed, yMed)
				if err != nil {
					continue
				}
				coefOut, err := ols.Solve(Xout, yOut)
				if err != nil {
					continue
				}

				a := coefMed[tIdx]
				b := coefOut[p]
				dir := coefOut[tIdx]
				if !finite(a) || !finite(b) || !finite(dir) {
					continue
				}
				indirect[i] = a * b
				direct[i] = dir
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var vInd, vDir, vTot, vPct []float64
	for i := range indirect {
		if math.IsNaN(indirect[i]) || math.IsNaN(direct[i]) {
			continue
		}
		tot := indirect[i] + direct[i]
		vInd = append(vInd, indirect[i])
		vDir = append(vDir, direct[i])
		vTot = append(vTot, tot)
		vPct = append(vPct, indirect[i]/tot*100)
	}
	if len(vInd) == 0 {
		return nil, core.NewInsufficientDataError("bootstrap", "no iteration produced a solvable resample")
	}

	return &BootstrapResult{
		Iterations:  cfg.Iterations,
		Valid:       len(vInd),
		Indirect:    interval(vInd),
		Direct:      interval(vDir),
		Total:       interval(vTot),
		PctMediated: interval(vPct),
	}, nil
}

func interval(values []float64) Interval {
	return Interval{
		Low:  percentile(values, 2.5),
		High: percentile(values, 97.5),
	}
}

// percentile interpolates linearly between order statistics.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func block(total, workers, w int) (int, int) {
	per := total / workers
	rem := total % workers
	start := w*per + min(w, rem)
	size := per
	if w < rem {
		size++
	}
	return start, start + size
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
