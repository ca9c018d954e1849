package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Source errors
	ErrSourceNotFound    = errors.New("dataset source not found")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// Schema errors
	ErrSchema        = errors.New("dataset schema invalid")
	ErrColumnMissing = fmt.Errorf("%w: required column missing", ErrSchema)
	ErrEmptyDataset  = fmt.Errorf("%w: no data rows", ErrSchema)

	// Estimation errors
	ErrSingularMatrix      = errors.New("design matrix has no usable degrees of freedom")
	ErrInsufficientData    = errors.New("insufficient data for analysis")
	ErrCoefficientNotFound = errors.New("coefficient not found in fitted model")

	// Decomposition warnings (non-fatal, surfaced in reports)
	ErrInconsistentDecomposition = errors.New("effect decomposition inconsistent")
)

// Error constructors with context

func NewSourceNotFoundError(path string) error {
	return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
}

func NewUnsupportedFormatError(ext string) error {
	return fmt.Errorf("%w: %s (expected .xlsx or .csv)", ErrUnsupportedFormat, ext)
}

// NewMissingColumnsError reports every absent required header at once so a
// mis-exported workbook fails with the full list, not one column per run.
func NewMissingColumnsError(columns []string) error {
	return fmt.Errorf("%w: %s", ErrColumnMissing, strings.Join(columns, ", "))
}

func NewSingularMatrixError(model string, params, observations int) error {
	return fmt.Errorf("%w: model %s has %d parameters for %d observations", ErrSingularMatrix, model, params, observations)
}

func NewInsufficientDataError(stage string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInsufficientData, stage, reason)
}

func NewInconsistencyWarning(gap, tolerance float64) error {
	return fmt.Errorf("%w: |direct + indirect - total| = %.3e exceeds %.0e", ErrInconsistentDecomposition, gap, tolerance)
}

// Error checking helpers

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsSingularMatrixError(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConsistencyWarning(err error) bool {
	return errors.Is(err, ErrInconsistentDecomposition)
}
