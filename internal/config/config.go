package config

import (
	"os"
	"strconv"

	"gomediate/domain/ratings"
	"gomediate/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data       DataConfig
	Analysis   AnalysisConfig
	Robustness RobustnessConfig
}

// DataConfig holds the ratings export location and schema overrides
type DataConfig struct {
	Path           string
	Sheet          string
	TreatmentLabel string
	ControlLabel   string

	// Column header overrides, blank meaning the IEG default
	Columns ratings.ColumnMap
}

// AnalysisConfig holds estimation settings shared across commands
type AnalysisConfig struct {
	Seed                int64
	BootstrapIterations int
	Workers             int
}

// RobustnessConfig holds the placebo and fixed-effect screen settings
type RobustnessConfig struct {
	PlaceboDraws      int
	PlaceboSampleSize int
	PlaceboCutoffFY   int
	MinCountryObs     int
}

// Load reads configuration from environment variables and validates it.
// The data path defaults to the analysis workbook's committed location;
// commands override it by flag.
func Load() (*Config, error) {
	config := &Config{
		Data:       loadDataConfig(),
		Analysis:   loadAnalysisConfig(),
		Robustness: loadRobustnessConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() DataConfig {
	return DataConfig{
		Path:           getEnvOrDefault("DATA_PATH", "data/IEG_ICRR_PPAR_Ratings_2025-12-15.xlsx"),
		Sheet:          getEnvOrDefault("DATA_SHEET", "Sheet1"),
		TreatmentLabel: getEnvOrDefault("TREATMENT_LABEL", "PforR"),
		ControlLabel:   getEnvOrDefault("CONTROL_LABEL", "IPF"),
		Columns: ratings.ColumnMap{
			ProjectID:  os.Getenv("COL_PROJECT_ID"),
			Instrument: os.Getenv("COL_INSTRUMENT"),
			Region:     os.Getenv("COL_REGION"),
			Country:    os.Getenv("COL_COUNTRY"),
			Sector:     os.Getenv("COL_SECTOR"),
			Outcome:    os.Getenv("COL_OUTCOME"),
			MEQuality:  os.Getenv("COL_ME_QUALITY"),
			Volume:     os.Getenv("COL_VOLUME"),
			ApprovalFY: os.Getenv("COL_APPROVAL_FY"),
			ClosingFY:  os.Getenv("COL_CLOSING_FY"),
			FCS:        os.Getenv("COL_FCS"),
		},
	}
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Seed:                int64(getEnvIntOrDefault("SEED", 42)),
		BootstrapIterations: getEnvIntOrDefault("BOOTSTRAP_ITERATIONS", 2000),
		Workers:             getEnvIntOrDefault("WORKERS", 4),
	}
}

func loadRobustnessConfig() RobustnessConfig {
	return RobustnessConfig{
		PlaceboDraws:      getEnvIntOrDefault("PLACEBO_DRAWS", 500),
		PlaceboSampleSize: getEnvIntOrDefault("PLACEBO_SAMPLE_SIZE", 120),
		PlaceboCutoffFY:   getEnvIntOrDefault("PLACEBO_CUTOFF_FY", 2012),
		MinCountryObs:     getEnvIntOrDefault("MIN_COUNTRY_OBS", 5),
	}
}

// Schema merges the configured overrides onto the IEG defaults.
func (d DataConfig) Schema() ratings.Schema {
	columns := ratings.DefaultColumnMap()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&columns.ProjectID, d.Columns.ProjectID)
	override(&columns.Instrument, d.Columns.Instrument)
	override(&columns.Region, d.Columns.Region)
	override(&columns.Country, d.Columns.Country)
	override(&columns.Sector, d.Columns.Sector)
	override(&columns.Outcome, d.Columns.Outcome)
	override(&columns.MEQuality, d.Columns.MEQuality)
	override(&columns.Volume, d.Columns.Volume)
	override(&columns.ApprovalFY, d.Columns.ApprovalFY)
	override(&columns.ClosingFY, d.Columns.ClosingFY)
	override(&columns.FCS, d.Columns.FCS)

	return ratings.Schema{
		Columns:        columns,
		TreatmentLabel: d.TreatmentLabel,
		ControlLabel:   d.ControlLabel,
	}
}

func validateConfig(config *Config) error {
	if config.Data.TreatmentLabel == config.Data.ControlLabel {
		return errors.ConfigInvalid("treatment and control labels must differ")
	}
	if config.Analysis.BootstrapIterations <= 0 {
		return errors.ConfigInvalid("bootstrap iterations must be positive")
	}
	if config.Analysis.Workers <= 0 {
		return errors.ConfigInvalid("worker count must be positive")
	}
	if config.Robustness.PlaceboDraws <= 0 || config.Robustness.PlaceboSampleSize <= 0 {
		return errors.ConfigInvalid("placebo draws and sample size must be positive")
	}
	if config.Robustness.MinCountryObs < 1 {
		return errors.ConfigInvalid("country fixed effects need at least one observation per country")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
