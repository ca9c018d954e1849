package resample

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"gomediate/adapters/stats/ols"
	"gomediate/domain/core"
)

// PlaceboConfig controls a placebo-assignment test.
type PlaceboConfig struct {
	Draws      int
	SampleSize int
	Seed       int64
	Workers    int
}

const (
	defaultDraws      = 500
	defaultSampleSize = 120
)

func (c PlaceboConfig) normalized() PlaceboConfig {
	if c.Draws <= 0 {
		c.Draws = defaultDraws
	}
	if c.SampleSize <= 0 {
		c.SampleSize = defaultSampleSize
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Workers > c.Draws {
		c.Workers = c.Draws
	}
	return c
}

// PlaceboResult summarises the distribution of placebo coefficients.
type PlaceboResult struct {
	Draws      int
	Valid      int
	PoolSize   int
	SampleSize int
	Mean       float64
	StdDev     float64
	P2         float64 // 2.5th percentile of the placebo distribution
	P97        float64 // 97.5th percentile
	Observed   float64
	EmpiricalP float64 // share of placebo coefficients at or above Observed
}

// PlaceboTest repeatedly labels a random subset of the pool as treated and
// refits the outcome equation, building the distribution of coefficients a
// meaningless assignment produces. d is the pool design without any
// treatment term (intercept, controls, dummies); each draw flags
// SampleSize distinct rows and solves for the placebo coefficient.
// observed is the estimate from the real assignment, compared against the
// distribution one-sided.
func PlaceboTest(ctx context.Context, d *ols.Design, observed float64, cfg PlaceboConfig) (*PlaceboResult, error) {
	cfg = cfg.normalized()
	n, p := d.N(), d.P()
	if cfg.SampleSize > n {
		return nil, core.NewInsufficientDataError("placebo",
			fmt.Sprintf("pool of %d rows cannot seat draws of %d", n, cfg.SampleSize))
	}
	if n <= p+1 {
		return nil, core.NewSingularMatrixError("placebo", p+1, n)
	}

	coefs := nanSlice(cfg.Draws)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		start, end := block(cfg.Draws, cfg.Workers, w)
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		g.Go(func() error {
			// Fixed columns never change between draws, so each worker
			// copies the pool design once and only rewrites the placebo
			// column, slotted after the intercept.
			const placeboIdx = 1
			X := mat.NewDense(n, p+1, nil)
			for r := 0; r < n; r++ {
				row := X.RawRowView(r)
				src := d.X.RawRowView(r)
				row[0] = src[0]
				copy(row[placeboIdx+1:], src[1:])
			}

			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				for r := 0; r < n; r++ {
					X.Set(r, placeboIdx, 0)
				}
				for _, r := range rng.Perm(n)[:cfg.SampleSize] {
					X.Set(r, placeboIdx, 1)
				}

				coef, err := ols.Solve(X, d.Y)
				if err != nil {
					continue
				}
				if finite(coef[placeboIdx]) {
					coefs[i] = coef[placeboIdx]
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var valid []float64
	atLeast := 0
	for _, c := range coefs {
		if math.IsNaN(c) {
			continue
		}
		valid = append(valid, c)
		if c >= observed {
			atLeast++
		}
	}
	if len(valid) == 0 {
		return nil, core.NewInsufficientDataError("placebo", "no draw produced a solvable design")
	}

	mean, _ := stats.Mean(valid)
	sd, _ := stats.StandardDeviation(valid)
	return &PlaceboResult{
		Draws:      cfg.Draws,
		Valid:      len(valid),
		PoolSize:   n,
		SampleSize: cfg.SampleSize,
		Mean:       mean,
		StdDev:     sd,
		P2:         percentile(valid, 2.5),
		P97:        percentile(valid, 97.5),
		Observed:   observed,
		EmpiricalP: float64(atLeast) / float64(len(valid)),
	}, nil
}
