package app

import (
	"context"
	"testing"

	"gomediate/adapters/stats/describe"
	"gomediate/domain/ratings"
	"gomediate/internal/simkit"
)

// Wider noise than the default so every rating level is populated.
func exploreFixture(t *testing.T) (*ratings.RawTable, *ratings.Table) {
	t.Helper()
	cfg := simkit.DefaultConfig()
	cfg.Noise = 0.6
	ds := generated(t, cfg)
	raw := ds.Raw()
	tbl, err := ratings.ParseTable(raw, ratings.DefaultSchema())
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	return raw, tbl
}

func TestExplorationDescribesExport(t *testing.T) {
	raw, tbl := exploreFixture(t)
	svc := NewExplorationService(nil, ratings.DefaultSchema())

	res, err := svc.Analyze(context.Background(), raw, tbl)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.RawRows != len(raw.Rows) || res.RawCols != len(raw.Headers) {
		t.Errorf("raw shape %dx%d, want %dx%d", res.RawRows, res.RawCols, len(raw.Rows), len(raw.Headers))
	}
	if res.N == 0 || res.N > res.RawRows {
		t.Fatalf("scored subsample n=%d out of %d rows", res.N, res.RawRows)
	}

	total := 0
	for _, c := range res.Instruments {
		total += c.Count
	}
	if total != res.RawRows {
		t.Errorf("instrument counts sum to %d, want every raw row (%d)", total, res.RawRows)
	}
	if !hasLabel(res.Instruments, "PforR") || !hasLabel(res.Instruments, "IPF") {
		t.Errorf("instrument table missing an arm: %v", res.Instruments)
	}
	if !hasLabel(res.OutcomeDist, "Not Rated") {
		t.Errorf("outcome distribution should keep the unscored label: %v", res.OutcomeDist)
	}

	if len(res.QualityOutcome) != 4 {
		t.Fatalf("quality table has %d levels, want 4", len(res.QualityOutcome))
	}
	for i, want := range ratings.QualityLevels() {
		if res.QualityOutcome[i].Label != want {
			t.Errorf("quality level %d = %q, want %q", i, res.QualityOutcome[i].Label, want)
		}
	}
	high, neg := res.QualityOutcome[0], res.QualityOutcome[3]
	if high.Count == 0 || neg.Count == 0 {
		t.Fatalf("extreme levels unpopulated: High n=%d, Negligible n=%d", high.Count, neg.Count)
	}
	if high.Mean <= neg.Mean {
		t.Errorf("High outcome mean %.3f should exceed Negligible %.3f", high.Mean, neg.Mean)
	}

	if res.Rank.N != res.N {
		t.Errorf("rank correlation on %d pairs, want %d", res.Rank.N, res.N)
	}
	if res.Rank.Rho < 0.3 {
		t.Errorf("rank correlation %.3f too weak for the planted b-path", res.Rank.Rho)
	}
	if res.EffectSize < 1 {
		t.Errorf("High-vs-Negligible d = %.3f, want a large separation", res.EffectSize)
	}
}

func TestExplorationCohortGrid(t *testing.T) {
	raw, tbl := exploreFixture(t)
	svc := NewExplorationService(nil, ratings.DefaultSchema())

	res, err := svc.Analyze(context.Background(), raw, tbl)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Cohort) != 6 {
		t.Fatalf("cohort grid has %d bins, want 6 five-year bins over 1990-2020", len(res.Cohort))
	}
	if res.Cohort[0].Lo != 1990 || res.Cohort[5].Hi != 2020 {
		t.Errorf("grid spans [%v, %v), want [1990, 2020)", res.Cohort[0].Lo, res.Cohort[5].Hi)
	}
	// The generator approves nothing before 1995
	if res.Cohort[0].Count != 0 {
		t.Errorf("bin [1990, 1995) holds %d projects, want 0", res.Cohort[0].Count)
	}
	binned := 0
	for _, b := range res.Cohort {
		binned += b.Count
	}
	if binned == 0 || binned >= res.N {
		t.Errorf("grid binned %d of %d projects; approvals past 2019 should fall out", binned, res.N)
	}
}

func TestExplorationArmComparison(t *testing.T) {
	raw, tbl := exploreFixture(t)
	svc := NewExplorationService(nil, ratings.DefaultSchema())

	res, err := svc.Analyze(context.Background(), raw, tbl)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Arms) != 2 {
		t.Fatalf("got %d arms, want treatment and control", len(res.Arms))
	}
	if res.Arms[0].Label != "PforR" || res.Arms[1].Label != "IPF" {
		t.Errorf("arm labels %q/%q, want PforR/IPF", res.Arms[0].Label, res.Arms[1].Label)
	}
	if res.Arms[0].N == 0 || res.Arms[1].N == 0 {
		t.Fatalf("empty arm: %+v", res.Arms)
	}
	if res.Arms[0].N+res.Arms[1].N >= res.N {
		t.Errorf("arms cover %d of %d scored projects; the DPF slice should be outside",
			res.Arms[0].N+res.Arms[1].N, res.N)
	}
	if res.OutcomeByArm.N1 != res.Arms[0].N || res.OutcomeByArm.N2 != res.Arms[1].N {
		t.Errorf("Welch test on %d/%d, want the arm sizes %d/%d",
			res.OutcomeByArm.N1, res.OutcomeByArm.N2, res.Arms[0].N, res.Arms[1].N)
	}
	// Treatment raises the outcome both directly and through the mediator
	if res.OutcomeByArm.TStat <= 0 {
		t.Errorf("Welch t = %.2f, want the treated arm ahead", res.OutcomeByArm.TStat)
	}

	if len(res.Variables) != 5 {
		t.Fatalf("got %d variable summaries, want 5", len(res.Variables))
	}
	if res.Variables[0].Name != ratings.FieldOutcome.String() || res.Variables[0].N != res.N {
		t.Errorf("first summary %q n=%d, want complete outcome column (n=%d)",
			res.Variables[0].Name, res.Variables[0].N, res.N)
	}
}

func hasLabel(counts []describe.ValueCount, label string) bool {
	for _, c := range counts {
		if c.Label == label {
			return true
		}
	}
	return false
}
