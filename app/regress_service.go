package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gomediate/adapters/stats/ols"
	"gomediate/domain/core"
	"gomediate/domain/mediation"
	"gomediate/domain/ratings"
	"gomediate/domain/regress"
	"gomediate/ports"
)

// RegressionService estimates the mediation trio on the working sample
type RegressionService struct {
	source ports.TabularSource
	schema ratings.Schema
}

// RegressionResult contains the fitted trio and its decomposition
type RegressionResult struct {
	RunID         core.RunID           `json:"run_id"`
	N             int                  `json:"n"`
	Treated       int                  `json:"treated"`
	Mediator      *regress.FittedModel `json:"mediator"`
	Total         *regress.FittedModel `json:"total"`
	Direct        *regress.FittedModel `json:"direct"`
	Decomposition *mediation.Result    `json:"decomposition"`
	RuntimeMs     int64                `json:"runtime_ms"`
}

// NewRegressionService creates a regression service
func NewRegressionService(source ports.TabularSource, schema ratings.Schema) *RegressionService {
	return &RegressionService{source: source, schema: schema}
}

// Run loads the source and estimates the trio
func (s *RegressionService) Run(ctx context.Context) (*RegressionResult, error) {
	_, tbl, err := LoadTable(s.source, s.schema)
	if err != nil {
		return nil, fmt.Errorf("loading ratings table: %w", err)
	}
	return s.Analyze(ctx, tbl)
}

// Analyze estimates the trio on an already-typed table with HC3 inference
// and decomposes the treatment effect through the mediator
func (s *RegressionService) Analyze(ctx context.Context, tbl *ratings.Table) (*RegressionResult, error) {
	startTime := time.Now()

	if err := requireColumns(tbl, modelingFields()...); err != nil {
		return nil, err
	}

	// Shared listwise sample so total = direct + indirect holds exactly
	working := tbl.WorkingSample()
	if working.Len() == 0 {
		return nil, core.NewInsufficientDataError("regression", "working sample is empty")
	}
	levels := ols.SharedLevels(working, ratings.FieldRegion)

	// Fit the three models in parallel; each builds its own design
	specs := []regress.ModelSpec{
		regress.MediatorModel(),
		regress.TotalEffectModel(),
		regress.DirectEffectModel(),
	}
	models := make([]*regress.FittedModel, len(specs))
	g, _ := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			d, err := ols.Build(working, spec, levels)
			if err != nil {
				return fmt.Errorf("building %s: %w", spec.Name, err)
			}
			m, err := ols.Fit(d, ols.CovHC3)
			if err != nil {
				return fmt.Errorf("fitting %s: %w", spec.Name, err)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dec, err := mediation.Decompose(mediation.Inputs{
		Mediator: models[0],
		Total:    models[1],
		Direct:   models[2],
	})
	if err != nil {
		return nil, fmt.Errorf("decomposing treatment effect: %w", err)
	}

	return &RegressionResult{
		RunID:         core.NewRunID(),
		N:             working.Len(),
		Treated:       working.TreatedCount(),
		Mediator:      models[0],
		Total:         models[1],
		Direct:        models[2],
		Decomposition: dec,
		RuntimeMs:     time.Since(startTime).Milliseconds(),
	}, nil
}
