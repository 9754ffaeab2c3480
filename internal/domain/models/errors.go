package models

import (
	"errors"
	"fmt"
)

// Hard errors abort the whole run; soft errors skip one module and are
// recorded in AnalysisResult.Unavailable.

// InsufficientDataError aborts the run when the usable series is shorter
// than the hard floor.
type InsufficientDataError struct {
	Got int
	Min int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d observations, need at least %d", e.Got, e.Min)
}

// ConfigurationError reports an invalid option value before any
// computation starts.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Option, e.Reason)
}

// Soft, per-module sentinels. Modules wrap these with the concrete reason.
var (
	ErrModelTraining       = errors.New("model training failed")
	ErrForecastUnavailable = errors.New("forecast unavailable")
	ErrDecomposition       = errors.New("decomposition failed")
)

// IsSoft reports whether err should skip a module instead of aborting the run.
func IsSoft(err error) bool {
	return errors.Is(err, ErrModelTraining) ||
		errors.Is(err, ErrForecastUnavailable) ||
		errors.Is(err, ErrDecomposition)
}
