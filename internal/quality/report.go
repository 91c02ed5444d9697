package quality

import (
	"fmt"
	"strings"
	"time"

	"github.com/zervakisai/hydraulic-maintenance/internal/utils"
)

// Verdict is the immutable pass/fail outcome for one group.
type Verdict struct {
	Group   string   `json:"group"`
	Stats   Stats    `json:"stats"`
	Pass    bool     `json:"pass"`
	Reasons []string `json:"reasons,omitempty"`
}

// Run is the persisted record of one validation invocation. It is written
// once, after every requested group has a verdict, and never mutated.
type Run struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Thresholds  ThresholdConfig     `json:"thresholds"`
	Groups      []string            `json:"groups"`
	Verdicts    map[string]*Verdict `json:"verdicts"`
	OverallPass bool                `json:"overall_pass"`
}

// Save persists the run report as indented JSON, atomically.
func (r *Run) Save(path string) error {
	b, err := utils.PrettyJSON(r)
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}

// Markdown renders a compact console summary of the run.
func (r *Run) Markdown() string {
	var b strings.Builder
	b.WriteString("[VALIDATION SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.ID))
	b.WriteString(fmt.Sprintf("Thresholds: max NaN ratio %.4f, max negative violations %d\n", r.Thresholds.MaxNaNRatio, r.Thresholds.MaxNegViolations))
	if r.OverallPass {
		b.WriteString("Overall: PASS\n\n")
	} else {
		b.WriteString("Overall: FAIL\n\n")
	}
	for _, g := range r.Groups {
		v := r.Verdicts[g]
		if v == nil {
			continue
		}
		mark := "✓"
		if !v.Pass {
			mark = "✗"
		}
		b.WriteString(fmt.Sprintf("- %s %s: shape %dx%d | nan_ratio %.6f | neg_violations %d\n",
			mark, g, v.Stats.Shape[0], v.Stats.Shape[1], v.Stats.NaNRatio, v.Stats.NegViolationsTotal))
		for _, reason := range v.Reasons {
			b.WriteString("  • ")
			b.WriteString(reason)
			b.WriteString("\n")
		}
	}
	return b.String()
}
