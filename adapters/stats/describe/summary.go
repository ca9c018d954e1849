package describe

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Summary holds the per-variable descriptive statistics.
type Summary struct {
	Name   string
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	Q25    float64
	Q75    float64
}

// Summarize computes summary statistics over the non-missing values.
// Fewer than two observations keep their mean but report NaN spread;
// an empty column is all NaN.
func Summarize(name string, values []float64) Summary {
	clean := observed(values)
	s := Summary{
		Name:   name,
		N:      len(clean),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Median: math.NaN(),
		Q25:    math.NaN(),
		Q75:    math.NaN(),
	}
	if len(clean) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(clean)
	s.Min, _ = stats.Min(clean)
	s.Max, _ = stats.Max(clean)
	s.Median, _ = stats.Median(clean)
	s.Q25, _ = stats.Percentile(clean, 25)
	s.Q75, _ = stats.Percentile(clean, 75)
	if len(clean) >= 2 {
		s.StdDev, _ = stats.StandardDeviationSample(clean)
	}
	return s
}

// ValueCount is one label with its frequency.
type ValueCount struct {
	Label string
	Count int
}

// CountLabels tallies non-blank labels, most frequent first. Ties break
// alphabetically so output is stable across runs.
func CountLabels(labels []string) []ValueCount {
	tally := make(map[string]int)
	for _, label := range labels {
		if label != "" {
			tally[label]++
		}
	}
	out := make([]ValueCount, 0, len(tally))
	for label, n := range tally {
		out = append(out, ValueCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// GroupMean is the mean of a value within one labeled group.
type GroupMean struct {
	Label string
	Mean  float64
	Count int
}

// MeansByLevel averages values inside each listed label, in the given
// order. Levels with no observations stay in the output with NaN means,
// the way an ordered rating table prints every level.
func MeansByLevel(labels []string, values []float64, order []string) []GroupMean {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, label := range labels {
		if label == "" || i >= len(values) || math.IsNaN(values[i]) {
			continue
		}
		sums[label] += values[i]
		counts[label]++
	}
	out := make([]GroupMean, 0, len(order))
	for _, label := range order {
		gm := GroupMean{Label: label, Mean: math.NaN(), Count: counts[label]}
		if gm.Count > 0 {
			gm.Mean = sums[label] / float64(gm.Count)
		}
		out = append(out, gm)
	}
	return out
}

// CohortBin is one half-open [Lo, Hi) interval of a trend table.
type CohortBin struct {
	Lo    float64
	Hi    float64
	Mean  float64
	Count int
}

// CohortTrend bins values by year into [start, start+width), ... and
// averages within each bin. Bins stop at end; years outside the grid are
// ignored. Empty bins stay in the output with NaN means.
func CohortTrend(years, values []float64, start, end, width float64) []CohortBin {
	var bins []CohortBin
	for lo := start; lo+width <= end; lo += width {
		bins = append(bins, CohortBin{Lo: lo, Hi: lo + width, Mean: math.NaN()})
	}
	sums := make([]float64, len(bins))
	for i, y := range years {
		if i >= len(values) || math.IsNaN(y) || math.IsNaN(values[i]) {
			continue
		}
		if y < start || y >= start+width*float64(len(bins)) {
			continue
		}
		b := int((y - start) / width)
		sums[b] += values[i]
		bins[b].Count++
	}
	for b := range bins {
		if bins[b].Count > 0 {
			bins[b].Mean = sums[b] / float64(bins[b].Count)
		}
	}
	return bins
}

func observed(values []float64) []float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	return clean
}

func pairwise(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	cx := make([]float64, 0, n)
	cy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		cx = append(cx, x[i])
		cy = append(cy, y[i])
	}
	return cx, cy
}
