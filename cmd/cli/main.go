package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gomediate/adapters/excel"
	"gomediate/app"
	"gomediate/domain/core"
	"gomediate/domain/ratings"
	"gomediate/domain/regress"
	"gomediate/internal"
	"gomediate/internal/config"
	"gomediate/internal/report"
	"gomediate/internal/simkit"
	"gomediate/ports"
)

// mediatorName is how the report labels the mediator variable.
const mediatorName = "M&E"

var logger = internal.DefaultLogger

func main() {
	// .env is optional; real environment variables win either way
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gomediate",
		Short: "Mediation analysis of instrument choice and project outcomes",
		Long: `Analyzes IEG project ratings: does results-based lending improve project
outcomes, and how much of that runs through monitoring and evaluation quality?

The data file comes from DATA_PATH (or --data); every command prints its
report to stdout.`,
	}

	rootCmd.AddCommand(
		newExploreCmd(),
		newRegressCmd(),
		newRobustnessCmd(),
		newBootstrapCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dataFlags are the source-selection flags shared by the analysis commands.
type dataFlags struct {
	data  string
	sheet string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "", "Ratings export (.xlsx or .csv; default from DATA_PATH)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet name (default from DATA_SHEET)")
}

// setup merges environment configuration with command-line overrides and
// builds the tabular source behind the run.
func setup(f dataFlags) (*config.Config, ports.TabularSource, ratings.Schema, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, ratings.Schema{}, err
	}
	if f.data != "" {
		cfg.Data.Path = f.data
	}
	if f.sheet != "" {
		cfg.Data.Sheet = f.sheet
	}
	schema := cfg.Data.Schema()
	return cfg, excel.NewDataReader(cfg.Data.Path, cfg.Data.Sheet), schema, nil
}

func analysisOptions(cfg *config.Config) app.Options {
	return app.Options{
		Seed:                cfg.Analysis.Seed,
		Workers:             cfg.Analysis.Workers,
		BootstrapIterations: cfg.Analysis.BootstrapIterations,
		PlaceboDraws:        cfg.Robustness.PlaceboDraws,
		PlaceboSampleSize:   cfg.Robustness.PlaceboSampleSize,
		PlaceboCutoffFY:     cfg.Robustness.PlaceboCutoffFY,
		MinCountryObs:       cfg.Robustness.MinCountryObs,
	}
}

func fieldNames(fields []ratings.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}

func newExploreCmd() *cobra.Command {
	var flags dataFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Descriptive statistics over the raw ratings export",
		Long: `Frequency tables, rating distributions, the mediator-outcome gradient and
the raw instrument comparison, before any modeling.

Example: gomediate explore --data data/ratings.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd.Context(), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runExplore(ctx context.Context, flags dataFlags) error {
	_, source, schema, err := setup(flags)
	if err != nil {
		return err
	}

	res, err := app.NewExplorationService(source, schema).Run(ctx)
	if err != nil {
		return fmt.Errorf("exploration failed: %w", err)
	}

	cols := schema.Columns
	var b strings.Builder
	b.WriteString(report.RawShape(res.RawRows, res.RawCols))
	b.WriteString(report.CountSection(cols.Instrument+" breakdown", res.Instruments, 0))
	b.WriteString(report.CountSection(cols.Sector+" (top 10)", res.Sectors, 10))
	b.WriteString(report.CountSection(cols.Outcome+" distribution", res.OutcomeDist, 0))
	b.WriteString(report.CountSection(cols.MEQuality+" distribution", res.QualityDist, 0))
	b.WriteString(report.GroupMeanSection("M&E Quality → Outcome (raw means)", res.QualityOutcome))
	b.WriteString(report.CorrelationSection("Spearman correlation: M&E Quality ↔ Outcome", res.Rank))
	b.WriteString(report.ContrastSection("High vs Negligible M&E - effect size", res.High, res.Negligible, res.EffectSize))
	b.WriteString(report.CohortSection("M&E Quality trend by 5-year cohort", res.Cohort))

	arms := make([]report.ArmStats, len(res.Arms))
	for i, arm := range res.Arms {
		arms[i] = report.ArmStats{Label: arm.Label, N: arm.N, Outcome: arm.Outcome, ME: arm.ME}
	}
	title := fmt.Sprintf("%s vs %s - raw comparison", schema.TreatmentLabel, schema.ControlLabel)
	b.WriteString(report.ComparisonSection(title, arms, res.OutcomeByArm))
	b.WriteString("\n")
	b.WriteString(report.SummarySection("Scored variables", res.Variables))

	fmt.Print(b.String())
	logger.Info("exploration run %s finished in %d ms", res.RunID, res.RuntimeMs)
	return nil
}

func newRegressCmd() *cobra.Command {
	var flags dataFlags

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Estimate the mediation trio with robust inference",
		Long: `Fits the mediator, total-effect and direct-effect models on the working
sample with HC3 standard errors, then decomposes the treatment effect.

Example: gomediate regress --data data/ratings.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegress(cmd.Context(), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runRegress(ctx context.Context, flags dataFlags) error {
	_, source, schema, err := setup(flags)
	if err != nil {
		return err
	}

	res, err := app.NewRegressionService(source, schema).Run(ctx)
	if err != nil {
		return fmt.Errorf("regression failed: %w", err)
	}

	var b strings.Builder
	b.WriteString(report.SampleSummary(res.N, res.Treated, schema.TreatmentLabel, schema.ControlLabel))
	b.WriteString(report.ModelSection(res.Mediator, fieldNames(regress.MediatorModel().Reported)))
	b.WriteString(report.ModelSection(res.Total, fieldNames(regress.TotalEffectModel().Reported)))
	b.WriteString(report.ModelSection(res.Direct, fieldNames(regress.DirectEffectModel().Reported)))
	b.WriteString(report.MediationSection(res.Decomposition, schema.TreatmentLabel, mediatorName))
	fmt.Print(b.String())

	if warn := res.Decomposition.Warning(); warn != nil {
		logger.Warn("%v", warn)
	}
	logger.Info("regression run %s finished in %d ms", res.RunID, res.RuntimeMs)
	return nil
}

func newRobustnessCmd() *cobra.Command {
	var flags dataFlags
	var seed int64
	var draws, sampleSize, cutoffFY int

	cmd := &cobra.Command{
		Use:   "robustness",
		Short: "Alternative specifications and the placebo test",
		Long: `Re-estimates the treatment effect under sector and country fixed effects,
then draws placebo assignments inside the pre-cutoff control pool.

Example: gomediate robustness --data data/ratings.xlsx --draws 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRobustness(cmd.Context(), flags, seed, draws, sampleSize, cutoffFY)
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default from SEED)")
	cmd.Flags().IntVar(&draws, "draws", 0, "Placebo draws (default from PLACEBO_DRAWS)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Fake treated per draw (default from PLACEBO_SAMPLE_SIZE)")
	cmd.Flags().IntVar(&cutoffFY, "cutoff", 0, "Placebo pool approval cutoff (default from PLACEBO_CUTOFF_FY)")
	return cmd
}

func runRobustness(ctx context.Context, flags dataFlags, seed int64, draws, sampleSize, cutoffFY int) error {
	cfg, source, schema, err := setup(flags)
	if err != nil {
		return err
	}
	opts := analysisOptions(cfg)
	if seed != 0 {
		opts.Seed = seed
	}
	if draws > 0 {
		opts.PlaceboDraws = draws
	}
	if sampleSize > 0 {
		opts.PlaceboSampleSize = sampleSize
	}
	if cutoffFY > 0 {
		opts.PlaceboCutoffFY = cutoffFY
	}

	res, err := app.NewRobustnessService(source, schema, opts).Run(ctx)
	if err != nil {
		return fmt.Errorf("robustness battery failed: %w", err)
	}

	var b strings.Builder
	b.WriteString(report.RobustnessSamples(res.BaseN, res.BaseTreated,
		res.CountryN, res.CountryTreated, res.Countries, schema.TreatmentLabel))
	rows := make([]report.SpecRow, len(res.Specs))
	for i, spec := range res.Specs {
		rows[i] = report.SpecRow{Label: spec.Label, Beta: spec.Beta, SE: spec.SE, P: spec.P}
	}
	b.WriteString(report.RobustnessTable(rows, schema.TreatmentLabel))
	b.WriteString(report.PlaceboSection(res.Placebo, res.PlaceboCutoffFY, schema.TreatmentLabel, schema.ControlLabel))
	fmt.Print(b.String())

	logger.Info("robustness run %s finished in %d ms", res.RunID, res.RuntimeMs)
	return nil
}

func newBootstrapCmd() *cobra.Command {
	var flags dataFlags
	var seed int64
	var iterations, workers int

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Percentile bootstrap intervals for the mediation effects",
		Long: `Resamples the working sample with replacement and re-derives the
decomposition each draw, alongside the analytic Sobel test.

Example: gomediate bootstrap --data data/ratings.xlsx --iterations 2000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), flags, seed, iterations, workers)
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default from SEED)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Bootstrap iterations (default from BOOTSTRAP_ITERATIONS)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers (default from WORKERS)")
	return cmd
}

func runBootstrap(ctx context.Context, flags dataFlags, seed int64, iterations, workers int) error {
	cfg, source, schema, err := setup(flags)
	if err != nil {
		return err
	}
	opts := analysisOptions(cfg)
	if seed != 0 {
		opts.Seed = seed
	}
	if iterations > 0 {
		opts.BootstrapIterations = iterations
	}
	if workers > 0 {
		opts.Workers = workers
	}

	res, err := app.NewBootstrapService(source, schema, opts).Run(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	var b strings.Builder
	b.WriteString(report.SampleLine(res.N, res.Treated, schema.TreatmentLabel))
	b.WriteString(report.BootstrapSection(res.Decomposition, res.Intervals, schema.TreatmentLabel, mediatorName))
	fmt.Print(b.String())

	if warn := res.Decomposition.Warning(); warn != nil {
		logger.Warn("%v", warn)
	}
	logger.Info("bootstrap run %s finished in %d ms", res.RunID, res.RuntimeMs)
	return nil
}

func newSimulateCmd() *cobra.Command {
	var out string
	var projects int
	var seed int64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic ratings export with planted paths",
		Long: `Writes a synthetic IEG-shaped export whose mediation structure is known,
for demos and for exercising the pipeline end to end.

Example: gomediate simulate --out ratings_sim.xlsx --projects 800`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(out, projects, seed)
		},
	}
	cmd.Flags().StringVar(&out, "out", "ratings_sim.csv", "Output file (.csv or .xlsx)")
	cmd.Flags().IntVar(&projects, "projects", 0, "Project count (default 600)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}

func runSimulate(out string, projects int, seed int64) error {
	cfg := simkit.DefaultConfig()
	if projects > 0 {
		cfg.Projects = projects
	}
	cfg.Seed = seed

	ds, err := simkit.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".csv":
		err = simkit.WriteCSV(out, ds)
	case ".xlsx":
		err = simkit.WriteXLSX(out, ds)
	default:
		return fmt.Errorf("unsupported output format %q (expected .csv or .xlsx)", ext)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	// Digest of the written file, for replication notes
	raw, err := os.ReadFile(out)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", out, err)
	}
	fmt.Printf("Wrote %d projects to %s (sha256 %s)\n", cfg.Projects, out, core.NewHash(raw).Short())
	return nil
}
