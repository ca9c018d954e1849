package describe

import (
	"math"
	"testing"
)

func TestSummarizeDropsMissing(t *testing.T) {
	s := Summarize("outcome", []float64{5, 1, 4, 2, 3, math.NaN()})
	if s.N != 5 {
		t.Fatalf("N = %d, want 5", s.N)
	}
	if s.Mean != 3 {
		t.Errorf("Mean = %v, want 3", s.Mean)
	}
	if s.Median != 3 {
		t.Errorf("Median = %v, want 3", s.Median)
	}
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("Min/Max = %v/%v", s.Min, s.Max)
	}
	if math.Abs(s.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("StdDev = %v, want sqrt(2.5)", s.StdDev)
	}
	if !(s.Min <= s.Q25 && s.Q25 <= s.Median && s.Median <= s.Q75 && s.Q75 <= s.Max) {
		t.Errorf("quartiles out of order: %v <= %v <= %v <= %v <= %v", s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
}

func TestSummarizeDegenerateInputs(t *testing.T) {
	empty := Summarize("empty", []float64{math.NaN()})
	if empty.N != 0 {
		t.Fatalf("N = %d, want 0", empty.N)
	}
	if !math.IsNaN(empty.Mean) || !math.IsNaN(empty.Median) {
		t.Error("empty summary should be all NaN")
	}

	single := Summarize("single", []float64{7})
	if single.N != 1 || single.Mean != 7 {
		t.Fatalf("single summary = %+v", single)
	}
	if !math.IsNaN(single.StdDev) {
		t.Errorf("StdDev of one observation = %v, want NaN", single.StdDev)
	}
}

func TestCountLabels(t *testing.T) {
	counts := CountLabels([]string{"IPF", "PforR", "IPF", "", "DPF", "IPF", "PforR"})
	want := []ValueCount{{"IPF", 3}, {"PforR", 2}, {"DPF", 1}}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v", counts)
	}
	for i, w := range want {
		if counts[i] != w {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], w)
		}
	}
}

func TestCountLabelsTiesBreakAlphabetically(t *testing.T) {
	counts := CountLabels([]string{"B", "A", "B", "A"})
	if counts[0].Label != "A" || counts[1].Label != "B" {
		t.Errorf("tied counts should sort by label: %v", counts)
	}
}

func TestMeansByLevel(t *testing.T) {
	labels := []string{"High", "Modest", "High", "Negligible", "High", ""}
	values := []float64{5, 3, 6, 2, 4, 9}
	got := MeansByLevel(labels, values, []string{"High", "Substantial", "Modest", "Negligible"})
	if len(got) != 4 {
		t.Fatalf("groups = %v", got)
	}
	if got[0].Label != "High" || got[0].Count != 3 || got[0].Mean != 5 {
		t.Errorf("High = %+v", got[0])
	}
	if got[1].Count != 0 || !math.IsNaN(got[1].Mean) {
		t.Errorf("Substantial should stay in the table empty: %+v", got[1])
	}
	if got[2].Mean != 3 || got[3].Mean != 2 {
		t.Errorf("Modest/Negligible = %+v %+v", got[2], got[3])
	}
}

func TestMeansByLevelSkipsMissingValues(t *testing.T) {
	got := MeansByLevel([]string{"High", "High"}, []float64{4, math.NaN()}, []string{"High"})
	if got[0].Count != 1 || got[0].Mean != 4 {
		t.Errorf("High = %+v", got[0])
	}
}

func TestCohortTrend(t *testing.T) {
	years := []float64{1991, 1996, 1997, 2019, 2030, math.NaN()}
	vals := []float64{1, 2, 4, 3, 9, 5}
	bins := CohortTrend(years, vals, 1990, 2020, 5)
	if len(bins) != 6 {
		t.Fatalf("bins = %d, want 6", len(bins))
	}
	if bins[0].Lo != 1990 || bins[0].Hi != 1995 || bins[0].Count != 1 || bins[0].Mean != 1 {
		t.Errorf("bin 0 = %+v", bins[0])
	}
	if bins[1].Count != 2 || bins[1].Mean != 3 {
		t.Errorf("bin 1 = %+v", bins[1])
	}
	if bins[2].Count != 0 || !math.IsNaN(bins[2].Mean) {
		t.Errorf("empty bin should report NaN: %+v", bins[2])
	}
	if bins[5].Count != 1 || bins[5].Mean != 3 {
		t.Errorf("bin 5 = %+v", bins[5])
	}
}

func TestCohortTrendIgnoresYearsPastEnd(t *testing.T) {
	bins := CohortTrend([]float64{2020}, []float64{1}, 1990, 2020, 5)
	for _, b := range bins {
		if b.Count != 0 {
			t.Errorf("2020 falls on the open upper edge and must be ignored: %+v", b)
		}
	}
}
