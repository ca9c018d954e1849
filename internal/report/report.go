package report

import (
	"fmt"
	"strings"

	"gomediate/adapters/stats/describe"
	"gomediate/adapters/stats/resample"
	"gomediate/domain/mediation"
	"gomediate/domain/regress"
)

// Console rendering for the analysis commands. Every section returns a
// string; commands decide where it goes.

// Stars returns the significance marker for a p-value.
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	}
	return ""
}

// StarsNS is Stars with an explicit marker for non-significance, the way
// robustness tables print it.
func StarsNS(p float64) string {
	if s := Stars(p); s != "" {
		return s
	}
	return "n.s."
}

// Section renders a titled header line.
func Section(title string) string {
	return fmt.Sprintf("=== %s ===\n", title)
}

// RawShape reports the dimensions of the raw load.
func RawShape(rows, cols int) string {
	return fmt.Sprintf("Raw dataset: %d rows × %d columns\n\n", rows, cols)
}

// SampleSummary reports the working sample split by instrument arm.
func SampleSummary(n, treated int, treatmentLabel, controlLabel string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Working sample: n = %d\n", n))
	b.WriteString(fmt.Sprintf("  %-6s %d\n", treatmentLabel+":", treated))
	b.WriteString(fmt.Sprintf("  %-6s %d\n\n", controlLabel+":", n-treated))
	return b.String()
}

// SampleLine is the one-line working sample note the bootstrap run prints.
func SampleLine(n, treated int, treatmentLabel string) string {
	return fmt.Sprintf("Working sample: n=%d, %s=%d\n", n, treatmentLabel, treated)
}

// RobustnessSamples reports the base and country fixed-effect samples.
func RobustnessSamples(baseN, baseTreated, cfeN, cfeTreated, countries int, treatmentLabel string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Base sample:        n=%d,     %s=%d\n", baseN, treatmentLabel, baseTreated))
	b.WriteString(fmt.Sprintf("Country FE sample:  n=%d, %s=%d, countries=%d\n\n",
		cfeN, treatmentLabel, cfeTreated, countries))
	return b.String()
}

// ModelSection renders one fitted model: the reported coefficients with
// robust inference, then the fit line.
func ModelSection(m *regress.FittedModel, reported []string) string {
	var b strings.Builder
	b.WriteString(Section(m.Name))
	for _, v := range reported {
		coef, err := m.Coef(v)
		if err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-15s β = %+.4f  SE = %.4f  p = %.4f %s\n",
			v, coef.Beta, coef.SE, coef.PValue, Stars(coef.PValue)))
	}
	b.WriteString(fmt.Sprintf("  R² = %.4f  adj-R² = %.4f  n = %d\n\n", m.R2, m.AdjR2, m.N))
	return b.String()
}

// MediationSection renders the product-of-coefficients decomposition.
func MediationSection(res *mediation.Result, treatment, mediator string) string {
	var b strings.Builder
	b.WriteString(Section("Mediation (product-of-coefficients)"))
	line := func(label string, v float64) {
		b.WriteString(fmt.Sprintf("  %-42s %+.4f\n", label, v))
	}
	line(fmt.Sprintf("Total effect  (%s → Outcome):", treatment), res.Total.Beta)
	line(fmt.Sprintf("a-path        (%s → %s):", treatment, mediator), res.A.Beta)
	line(fmt.Sprintf("b-path        (%s → Outcome | %s):", mediator, treatment), res.B.Beta)
	line("Indirect      (a × b):", res.Indirect)
	line(fmt.Sprintf("Direct        (%s net of %s):", treatment, mediator), res.Direct.Beta)
	b.WriteString(fmt.Sprintf("  %-42s %.1f%%\n", fmt.Sprintf("%% mediated through %s:", mediator),
		res.Proportion*100))
	if !res.Consistent {
		b.WriteString(fmt.Sprintf("  WARNING: decomposition gap %.2e exceeds tolerance %.0e\n",
			res.Gap, res.Tolerance))
	}
	b.WriteString("\n")
	return b.String()
}

// SpecRow is one line of a robustness table.
type SpecRow struct {
	Label string
	Beta  float64
	SE    float64
	P     float64
}

// RobustnessTable renders the treatment coefficient across specifications.
func RobustnessTable(rows []SpecRow, treatment string) string {
	var b strings.Builder
	b.WriteString(Section(fmt.Sprintf("ROBUSTNESS CHECKS - %s COEFFICIENT", treatment)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-48s %7s %7s %8s %4s\n", "Specification", "β", "SE", "p", "sig"))
	b.WriteString(strings.Repeat("-", 78) + "\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-48s %+7.4f %7.4f %8.4f %4s\n",
			row.Label, row.Beta, row.SE, row.P, StarsNS(row.P)))
	}
	return b.String()
}

// PlaceboSection renders the placebo distribution against the observed
// estimate. The closing verdict line only prints when the observed effect
// actually clears the distribution.
func PlaceboSection(res *resample.PlaceboResult, cutoffFY int, treatment, control string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Section(fmt.Sprintf("PLACEBO TEST (pre-%d %s, %d iterations, n=%d fake %s)",
		cutoffFY, control, res.Draws, res.SampleSize, treatment)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Pre-%d %s pool: n=%d\n", cutoffFY, control, res.PoolSize))
	b.WriteString(fmt.Sprintf("Placebo distribution: mean=%.4f, SD=%.4f\n", res.Mean, res.StdDev))
	b.WriteString(fmt.Sprintf("95%% CI: [%.4f, %.4f]\n", res.P2, res.P97))
	b.WriteString(fmt.Sprintf("Actual %s estimate: β=%.4f\n", treatment, res.Observed))
	b.WriteString(fmt.Sprintf("Empirical p-value (share of placebo β ≥ actual): %.4f\n", res.EmpiricalP))
	b.WriteString(fmt.Sprintf("→ Our estimate exceeds %.1f%% of the placebo distribution.\n",
		(1-res.EmpiricalP)*100))
	if res.EmpiricalP < 0.05 {
		b.WriteString(fmt.Sprintf("→ The effect is not driven by random assignment to a group of %d projects.\n",
			res.SampleSize))
	}
	return b.String()
}

// BootstrapSection renders the analytic point estimates, the Sobel test,
// and the percentile intervals from the resampled distribution.
func BootstrapSection(dec *mediation.Result, boot *resample.BootstrapResult, treatment, mediator string) string {
	var b strings.Builder
	total := dec.Indirect + dec.Direct.Beta

	b.WriteString("\nPoint estimates:\n")
	b.WriteString(fmt.Sprintf("  a (%s->%s):    %.4f\n", treatment, mediator, dec.A.Beta))
	b.WriteString(fmt.Sprintf("  b (%s->Outcome):  %.4f\n", mediator, dec.B.Beta))
	b.WriteString(fmt.Sprintf("  Indirect:          %.4f\n", dec.Indirect))
	b.WriteString(fmt.Sprintf("  Direct:            %.4f\n", dec.Direct.Beta))
	b.WriteString(fmt.Sprintf("  Total:             %.4f\n", total))
	b.WriteString(fmt.Sprintf("  %% mediated:        %.1f%%\n", dec.Proportion*100))

	b.WriteString(fmt.Sprintf("\nSobel test:  z=%.3f,  SE=%.4f,  p=%.6f\n",
		dec.SobelZ, dec.SobelSE, dec.SobelP))

	b.WriteString(fmt.Sprintf("\nValid bootstrap iterations: %d / %d\n", boot.Valid, boot.Iterations))
	b.WriteString(fmt.Sprintf("\n95%% Bootstrap CIs (percentile method, %d iterations):\n", boot.Valid))
	b.WriteString(fmt.Sprintf("  Indirect effect:   %.3f  95%% CI [%.3f, %.3f]\n",
		dec.Indirect, boot.Indirect.Low, boot.Indirect.High))
	b.WriteString(fmt.Sprintf("  Direct effect:     %.3f  95%% CI [%.3f, %.3f]\n",
		dec.Direct.Beta, boot.Direct.Low, boot.Direct.High))
	b.WriteString(fmt.Sprintf("  Total effect:      %.3f  95%% CI [%.3f, %.3f]\n",
		total, boot.Total.Low, boot.Total.High))
	b.WriteString(fmt.Sprintf("  Percent mediated:  %.1f%%  95%% CI [%.1f%%, %.1f%%]\n",
		dec.Proportion*100, boot.PctMediated.Low, boot.PctMediated.High))
	return b.String()
}

// CountSection renders a frequency table, most frequent first. A positive
// limit keeps only the top rows.
func CountSection(title string, counts []describe.ValueCount, limit int) string {
	var b strings.Builder
	b.WriteString(Section(title))
	if limit > 0 && limit < len(counts) {
		counts = counts[:limit]
	}
	for _, c := range counts {
		b.WriteString(fmt.Sprintf("  %-38s %6d\n", c.Label, c.Count))
	}
	b.WriteString("\n")
	return b.String()
}

// GroupMeanSection renders per-level means in the given order.
func GroupMeanSection(title string, groups []describe.GroupMean) string {
	var b strings.Builder
	b.WriteString(Section(title))
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("  %-12s mean=%.3f  n=%d\n", g.Label, g.Mean, g.Count))
	}
	b.WriteString("\n")
	return b.String()
}

// CorrelationSection renders a rank correlation with its sample size.
// Very small p-values print the way the journals quote them.
func CorrelationSection(title string, c describe.Correlation) string {
	p := fmt.Sprintf("p = %.3f", c.PValue)
	if c.PValue < 0.001 {
		p = "p < 0.001"
	}
	return Section(title) + fmt.Sprintf("r = %.3f, n = %d, %s\n\n", c.Rho, c.N, p)
}

// ContrastSection renders a two-group contrast with its effect size.
func ContrastSection(title string, g1, g2 describe.GroupMean, d float64) string {
	var b strings.Builder
	b.WriteString(Section(title))
	b.WriteString(fmt.Sprintf("%s mean: %.3f (n=%d)\n", g1.Label, g1.Mean, g1.Count))
	b.WriteString(fmt.Sprintf("%s mean: %.3f (n=%d)\n", g2.Label, g2.Mean, g2.Count))
	b.WriteString(fmt.Sprintf("Cohen's d = %.3f\n\n", d))
	return b.String()
}

// CohortSection renders a binned trend table.
func CohortSection(title string, bins []describe.CohortBin) string {
	var b strings.Builder
	b.WriteString(Section(title))
	for _, bin := range bins {
		b.WriteString(fmt.Sprintf("  [%.0f, %.0f)  mean=%.3f  n=%d\n", bin.Lo, bin.Hi, bin.Mean, bin.Count))
	}
	b.WriteString("\n")
	return b.String()
}

// ArmStats is the raw per-arm comparison line of the exploration report.
type ArmStats struct {
	Label   string
	N       int
	Outcome float64
	ME      float64
}

// ComparisonSection renders the raw instrument comparison with a Welch
// test on the outcome difference.
func ComparisonSection(title string, arms []ArmStats, t describe.TwoSampleResult) string {
	var b strings.Builder
	b.WriteString(Section(title))
	for _, arm := range arms {
		b.WriteString(fmt.Sprintf("%s (n=%d): outcome=%.3f, M&E=%.3f\n",
			arm.Label, arm.N, arm.Outcome, arm.ME))
	}
	b.WriteString(fmt.Sprintf("Welch t = %.2f, p = %.4f\n", t.TStat, t.PValue))
	return b.String()
}

// SummarySection renders per-variable descriptive rows.
func SummarySection(title string, rows []describe.Summary) string {
	var b strings.Builder
	b.WriteString(Section(title))
	for _, s := range rows {
		b.WriteString(fmt.Sprintf("  %-12s n=%d  mean=%.2f  sd=%.2f  min=%.1f  q25=%.1f  med=%.1f  q75=%.1f  max=%.1f\n",
			s.Name, s.N, s.Mean, s.StdDev, s.Min, s.Q25, s.Median, s.Q75, s.Max))
	}
	b.WriteString("\n")
	return b.String()
}
