package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gomediate/adapters/stats/ols"
	"gomediate/adapters/stats/resample"
	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/domain/regress"
	"gomediate/ports"
)

// RobustnessService re-estimates the treatment effect under alternative
// specifications and runs the placebo assignment test
type RobustnessService struct {
	source ports.TabularSource
	schema ratings.Schema
	opts   Options
}

// SpecEstimate is the treatment coefficient under one specification
type SpecEstimate struct {
	Label string  `json:"label"`
	Beta  float64 `json:"beta"`
	SE    float64 `json:"se"`
	P     float64 `json:"p"`
}

// RobustnessResult contains the specification table and the placebo draw
type RobustnessResult struct {
	RunID core.RunID `json:"run_id"`

	BaseN          int `json:"base_n"`
	BaseTreated    int `json:"base_treated"`
	CountryN       int `json:"country_n"`
	CountryTreated int `json:"country_treated"`
	Countries      int `json:"countries"`

	Specs           []SpecEstimate          `json:"specs"`
	Placebo         *resample.PlaceboResult `json:"placebo"`
	PlaceboCutoffFY int                     `json:"placebo_cutoff_fy"`

	RuntimeMs int64 `json:"runtime_ms"`
}

// NewRobustnessService creates a robustness service
func NewRobustnessService(source ports.TabularSource, schema ratings.Schema, opts Options) *RobustnessService {
	return &RobustnessService{source: source, schema: schema, opts: opts}
}

// Run loads the source and executes the robustness battery
func (s *RobustnessService) Run(ctx context.Context) (*RobustnessResult, error) {
	_, tbl, err := LoadTable(s.source, s.schema)
	if err != nil {
		return nil, fmt.Errorf("loading ratings table: %w", err)
	}
	return s.Analyze(ctx, tbl)
}

// Analyze estimates the baseline and the R1-R4 variants, then draws the
// placebo distribution against the baseline estimate
func (s *RobustnessService) Analyze(ctx context.Context, tbl *ratings.Table) (*RobustnessResult, error) {
	startTime := time.Now()
	opts := s.opts.normalized()

	fields := append(modelingFields(), ratings.FieldCountry, ratings.FieldSector)
	if err := requireColumns(tbl, fields...); err != nil {
		return nil, err
	}

	working := tbl.WorkingSample()
	if working.Len() == 0 {
		return nil, core.NewInsufficientDataError("robustness", "working sample is empty")
	}
	cfe := working.CountryFESample(opts.MinCountryObs)

	// Each variant fits on its own sample with its own dummy expansion,
	// the treatment coefficient is all the table keeps
	runs := []struct {
		label  string
		spec   regress.ModelSpec
		sample *ratings.Table
	}{
		{"Baseline (DV=Outcome, region FE)", regress.TotalEffectModel(), working},
		{"R1: + Sector FE", regress.SectorRobustnessModel(), working},
		{"R2: Country FE", regress.CountryFEModel(), cfe},
		{"R3: Country FE + Sector FE", regress.CountrySectorFEModel(), cfe},
		{"R4: DV=M&E Quality, Country FE", regress.QualityCountryFEModel(), cfe},
	}
	rows := make([]SpecEstimate, len(runs))
	g, _ := errgroup.WithContext(ctx)
	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			d, err := ols.Build(run.sample, run.spec, ols.SharedLevels(run.sample, run.spec.FixedEffects...))
			if err != nil {
				return fmt.Errorf("building %s: %w", run.spec.Name, err)
			}
			m, err := ols.Fit(d, ols.CovHC3)
			if err != nil {
				return fmt.Errorf("fitting %s: %w", run.spec.Name, err)
			}
			coef, err := m.TreatmentEffect()
			if err != nil {
				return err
			}
			rows[i] = SpecEstimate{Label: run.label, Beta: coef.Beta, SE: coef.SE, P: coef.PValue}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Placebo draws run against the baseline estimate, on the pre-cutoff
	// control pool rather than the working sample
	pool := tbl.PlaceboPool(float64(opts.PlaceboCutoffFY))
	if pool.Len() < opts.PlaceboSampleSize {
		return nil, core.NewInsufficientDataError("placebo",
			fmt.Sprintf("pool has %d projects, draws need %d", pool.Len(), opts.PlaceboSampleSize))
	}
	d, err := ols.Build(pool, regress.PlaceboModel(), ols.SharedLevels(pool, ratings.FieldRegion))
	if err != nil {
		return nil, fmt.Errorf("building placebo design: %w", err)
	}
	placebo, err := resample.PlaceboTest(ctx, d, rows[0].Beta, resample.PlaceboConfig{
		Draws:      opts.PlaceboDraws,
		SampleSize: opts.PlaceboSampleSize,
		Seed:       opts.Seed,
		Workers:    opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("placebo draws: %w", err)
	}

	return &RobustnessResult{
		RunID:           core.NewRunID(),
		BaseN:           working.Len(),
		BaseTreated:     working.TreatedCount(),
		CountryN:        cfe.Len(),
		CountryTreated:  cfe.TreatedCount(),
		Countries:       len(cfe.Levels(ratings.FieldCountry)),
		Specs:           rows,
		Placebo:         placebo,
		PlaceboCutoffFY: opts.PlaceboCutoffFY,
		RuntimeMs:       time.Since(startTime).Milliseconds(),
	}, nil
}
