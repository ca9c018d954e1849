package ratings

import (
	"math"
	"testing"
)

func TestOutcomeScoreScale(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"Highly Satisfactory", 6},
		{"Satisfactory", 5},
		{"Moderately Satisfactory", 4},
		{"Moderately Unsatisfactory", 3},
		{"Unsatisfactory", 2},
		{"Highly Unsatisfactory", 1},
	}
	for _, c := range cases {
		if got := OutcomeScore(c.label); got != c.want {
			t.Errorf("OutcomeScore(%q) = %v, want %v", c.label, got, c.want)
		}
	}
	if !math.IsNaN(OutcomeScore("Not Rated")) {
		t.Error("Not Rated should be missing")
	}
	if !math.IsNaN(OutcomeScore("")) {
		t.Error("blank label should be missing")
	}
}

func TestQualityScoreTreatsNonEvaluableAsMissing(t *testing.T) {
	if got := QualityScore("High"); got != 4 {
		t.Errorf("QualityScore(High) = %v, want 4", got)
	}
	if got := QualityScore("Negligible"); got != 1 {
		t.Errorf("QualityScore(Negligible) = %v, want 1", got)
	}
	for _, label := range []string{"Not Rated", "Non-Evaluable", "Unknown"} {
		if !math.IsNaN(QualityScore(label)) {
			t.Errorf("QualityScore(%q) should be missing", label)
		}
	}
}

func TestVolumeScoreBands(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"<10 million", 1},
		{">=10 million & <25 million", 2},
		{">=25 million & <50 million", 3},
		{">=50 million & <100 million", 4},
		{">=100 million", 5},
	}
	for _, c := range cases {
		if got := VolumeScore(c.label); got != c.want {
			t.Errorf("VolumeScore(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestScoreTrimsWhitespace(t *testing.T) {
	if got := OutcomeScore("  Satisfactory "); got != 5 {
		t.Errorf("padded label = %v, want 5", got)
	}
}

func TestDurationPropagatesMissing(t *testing.T) {
	r := ProjectRecord{ApprovalFY: 2010, ClosingFY: 2016}
	if got := r.Duration(); got != 6 {
		t.Fatalf("Duration = %v, want 6", got)
	}
	r.ClosingFY = math.NaN()
	if !math.IsNaN(r.Duration()) {
		t.Error("Duration with missing closing year should be missing")
	}
}

func TestLabelInversesRoundTrip(t *testing.T) {
	for _, label := range []string{"Highly Satisfactory", "Moderately Unsatisfactory", "Highly Unsatisfactory"} {
		if got := OutcomeLabel(OutcomeScore(label)); got != label {
			t.Errorf("OutcomeLabel(OutcomeScore(%q)) = %q", label, got)
		}
	}
	for _, label := range QualityLevels() {
		if got := QualityLabel(QualityScore(label)); got != label {
			t.Errorf("QualityLabel(QualityScore(%q)) = %q", label, got)
		}
	}
	if got := VolumeLabel(3); got != ">=25 million & <50 million" {
		t.Errorf("VolumeLabel(3) = %q", got)
	}
	if got := OutcomeLabel(2.5); got != "" {
		t.Errorf("off-scale value should have no label, got %q", got)
	}
}

func TestValueAndLabelAccessors(t *testing.T) {
	r := ProjectRecord{
		Instrument: "PforR",
		Region:     "AFR",
		Outcome:    4,
		Treatment:  1,
	}
	if got := r.Value(FieldOutcome); got != 4 {
		t.Errorf("Value(outcome) = %v", got)
	}
	if got := r.Value(FieldTreatment); got != 1 {
		t.Errorf("Value(pforr) = %v", got)
	}
	if !math.IsNaN(r.Value(FieldRegion)) {
		t.Error("numeric access to a categorical field should be missing")
	}
	if got := r.Label(FieldRegion); got != "AFR" {
		t.Errorf("Label(region) = %q", got)
	}
	if got := r.Label(FieldOutcome); got != "" {
		t.Errorf("categorical access to a numeric field = %q", got)
	}
}
