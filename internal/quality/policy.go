package quality

import (
	"errors"
	"fmt"
)

// ErrConfig marks invalid run configuration (bad thresholds, bad sample
// size, unknown group). The run never starts on an ErrConfig.
var ErrConfig = errors.New("invalid configuration")

// ErrValidationFailed is the normal-outcome sentinel for a run whose
// overall verdict is fail. The run report is still complete and persisted.
var ErrValidationFailed = errors.New("validation failed: one or more groups exceeded thresholds")

// ThresholdConfig holds the run-wide validation limits. It is built once
// per invocation and passed by value; nothing mutates it afterwards.
type ThresholdConfig struct {
	MaxNaNRatio      float64 `json:"max_nan_ratio"`
	MaxNegViolations int     `json:"max_neg_violations"`
}

// Validate rejects limits that can never be satisfied sensibly.
func (c ThresholdConfig) Validate() error {
	if c.MaxNaNRatio < 0 {
		return fmt.Errorf("%w: max_nan_ratio must be >= 0, got %g", ErrConfig, c.MaxNaNRatio)
	}
	if c.MaxNegViolations < 0 {
		return fmt.Errorf("%w: max_neg_violations must be >= 0, got %d", ErrConfig, c.MaxNegViolations)
	}
	return nil
}

// Evaluate applies the threshold policy to one group's metrics.
// Each rule is checked independently so a group can fail on one, both, or
// neither; the tie-break is strict, a metric exactly at its limit passes.
func Evaluate(s Stats, cfg ThresholdConfig) (bool, []string) {
	var reasons []string
	if s.NaNRatio > cfg.MaxNaNRatio {
		reasons = append(reasons, fmt.Sprintf("NaN ratio %.4f exceeds limit %.4f.", s.NaNRatio, cfg.MaxNaNRatio))
	}
	if s.NegViolationsTotal > cfg.MaxNegViolations {
		reasons = append(reasons, fmt.Sprintf("Negative-value violations %d exceed limit %d.", s.NegViolationsTotal, cfg.MaxNegViolations))
	}
	return len(reasons) == 0, reasons
}
