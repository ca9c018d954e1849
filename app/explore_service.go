package app

import (
	"context"
	"fmt"
	"time"

	"gomediate/adapters/stats/describe"
	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/ports"
)

// The cohort grid: half-open 5-year bins of approval fiscal years, the
// window the portfolio actually covers.
const (
	cohortStartFY = 1990
	cohortEndFY   = 2020
	cohortWidthFY = 5
)

// ExplorationService computes the descriptive pass over the ratings export
type ExplorationService struct {
	source ports.TabularSource
	schema ratings.Schema
}

// ExplorationResult contains every table and contrast the explore command prints
type ExplorationResult struct {
	RunID   core.RunID `json:"run_id"`
	RawRows int        `json:"raw_rows"`
	RawCols int        `json:"raw_cols"`
	N       int        `json:"n"` // records rated on both scales

	Instruments []describe.ValueCount `json:"instruments"`
	Sectors     []describe.ValueCount `json:"sectors"`
	OutcomeDist []describe.ValueCount `json:"outcome_dist"`
	QualityDist []describe.ValueCount `json:"quality_dist"`

	QualityOutcome []describe.GroupMean     `json:"quality_outcome"`
	Rank           describe.Correlation     `json:"rank"`
	High           describe.GroupMean       `json:"high"`
	Negligible     describe.GroupMean       `json:"negligible"`
	EffectSize     float64                  `json:"effect_size"`
	Cohort         []describe.CohortBin     `json:"cohort"`
	Arms           []ArmSummary             `json:"arms"`
	OutcomeByArm   describe.TwoSampleResult `json:"outcome_by_arm"`
	Variables      []describe.Summary       `json:"variables"`

	RuntimeMs int64 `json:"runtime_ms"`
}

// ArmSummary is the raw per-instrument comparison row
type ArmSummary struct {
	Label   string  `json:"label"`
	N       int     `json:"n"`
	Outcome float64 `json:"outcome"`
	ME      float64 `json:"me"`
}

// NewExplorationService creates an exploration service
func NewExplorationService(source ports.TabularSource, schema ratings.Schema) *ExplorationService {
	return &ExplorationService{source: source, schema: schema}
}

// Run loads the source and computes the descriptive tables
func (s *ExplorationService) Run(ctx context.Context) (*ExplorationResult, error) {
	raw, tbl, err := LoadTable(s.source, s.schema)
	if err != nil {
		return nil, fmt.Errorf("loading ratings table: %w", err)
	}
	return s.Analyze(ctx, raw, tbl)
}

// Analyze computes the descriptive tables from an already-loaded export.
// Frequency tables read the raw strings so unscored labels ("Not Rated",
// "Non-Evaluable") stay visible; contrasts run on the scored subsample.
func (s *ExplorationService) Analyze(ctx context.Context, raw *ratings.RawTable, tbl *ratings.Table) (*ExplorationResult, error) {
	startTime := time.Now()
	cols := s.schema.Columns

	sample := tbl.ExplorationSample()
	res := &ExplorationResult{
		RunID:   core.NewRunID(),
		RawRows: len(raw.Rows),
		RawCols: len(raw.Headers),
		N:       sample.Len(),
	}

	// Raw frequency tables
	res.Instruments = describe.CountLabels(rawColumn(raw, cols.Instrument))
	res.Sectors = describe.CountLabels(rawColumn(raw, cols.Sector))
	res.OutcomeDist = describe.CountLabels(rawColumn(raw, cols.Outcome))
	res.QualityDist = describe.CountLabels(rawColumn(raw, cols.MEQuality))

	// Outcome against the mediator on the scored subsample
	me := sample.Column(ratings.FieldMEQuality)
	outcome := sample.Column(ratings.FieldOutcome)

	levels := make([]string, len(me))
	for i, v := range me {
		levels[i] = ratings.QualityLabel(v)
	}
	res.QualityOutcome = describe.MeansByLevel(levels, outcome, ratings.QualityLevels())
	res.Rank = describe.Spearman(me, outcome)

	high := valuesWhere(me, outcome, ratings.QualityScore("High"))
	neg := valuesWhere(me, outcome, ratings.QualityScore("Negligible"))
	res.High = levelMean("High M&E", high)
	res.Negligible = levelMean("Negligible M&E", neg)
	res.EffectSize = describe.CohensD(high, neg)

	res.Cohort = describe.CohortTrend(sample.Column(ratings.FieldApprovalFY), me,
		cohortStartFY, cohortEndFY, cohortWidthFY)

	// Raw instrument comparison with a Welch test on the outcome gap
	treat := sample.Column(ratings.FieldTreatment)
	inst := sample.Labels(ratings.FieldInstrument)
	var treatOut, treatME, ctrlOut, ctrlME []float64
	for i := range treat {
		switch {
		case treat[i] == 1:
			treatOut = append(treatOut, outcome[i])
			treatME = append(treatME, me[i])
		case inst[i] == s.schema.ControlLabel:
			ctrlOut = append(ctrlOut, outcome[i])
			ctrlME = append(ctrlME, me[i])
		}
	}
	res.Arms = []ArmSummary{
		armSummary(s.schema.TreatmentLabel, treatOut, treatME),
		armSummary(s.schema.ControlLabel, ctrlOut, ctrlME),
	}
	res.OutcomeByArm = describe.WelchTTest(treatOut, ctrlOut)

	res.Variables = []describe.Summary{
		describe.Summarize(ratings.FieldOutcome.String(), outcome),
		describe.Summarize(ratings.FieldMEQuality.String(), me),
		describe.Summarize(ratings.FieldApprovalFY.String(), sample.Column(ratings.FieldApprovalFY)),
		describe.Summarize(ratings.FieldDuration.String(), sample.Column(ratings.FieldDuration)),
		describe.Summarize(ratings.FieldVolume.String(), sample.Column(ratings.FieldVolume)),
	}

	res.RuntimeMs = time.Since(startTime).Milliseconds()
	return res, nil
}

func rawColumn(raw *ratings.RawTable, header string) []string {
	out := make([]string, len(raw.Rows))
	for i, row := range raw.Rows {
		out[i] = row[header]
	}
	return out
}

func valuesWhere(keys, values []float64, key float64) []float64 {
	var out []float64
	for i, k := range keys {
		if k == key {
			out = append(out, values[i])
		}
	}
	return out
}

func levelMean(label string, values []float64) describe.GroupMean {
	s := describe.Summarize(label, values)
	return describe.GroupMean{Label: s.Name, Mean: s.Mean, Count: s.N}
}

func armSummary(label string, outcome, me []float64) ArmSummary {
	o := describe.Summarize(label, outcome)
	m := describe.Summarize(label, me)
	return ArmSummary{Label: label, N: o.N, Outcome: o.Mean, ME: m.Mean}
}
