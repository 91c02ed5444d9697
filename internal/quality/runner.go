package quality

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
	"github.com/zervakisai/hydraulic-maintenance/internal/profile"
	"github.com/zervakisai/hydraulic-maintenance/internal/utils"
)

// Runner orchestrates a validation run: per requested group it loads the
// data, computes metrics, applies the threshold policy, and finally
// persists the aggregated run report.
type Runner struct {
	// Sources maps every known group name to its loader. Injected so new
	// groups and storage formats are additive.
	Sources map[string]dataset.Source

	Thresholds  ThresholdConfig
	NonNegative []string

	// Profiling side branch.
	Profile       bool
	ProfileSample int
	ProfileSeed   int64

	ReportsDir   string
	ReportPrefix string

	// Out and Errw default to stdout/stderr when nil.
	Out  io.Writer
	Errw io.Writer
}

// Run validates the requested groups in order and returns the persisted
// run report. A load failure aborts the whole run with no report written;
// threshold failures never abort and are returned as data, with
// Run.OverallPass false.
func (r *Runner) Run(groups []string) (*Run, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	errw := r.Errw
	if errw == nil {
		errw = os.Stderr
	}

	if err := r.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if r.Profile && r.ProfileSample <= 0 {
		return nil, fmt.Errorf("%w: profile sample must be positive, got %d", ErrConfig, r.ProfileSample)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no groups requested", ErrConfig)
	}
	// Every requested name must be known before anything is loaded.
	for _, g := range groups {
		if _, ok := r.Sources[g]; !ok {
			return nil, fmt.Errorf("%w: %q (known groups: %v)", dataset.ErrUnknownGroup, g, knownGroups(r.Sources))
		}
	}

	run := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Thresholds:  r.Thresholds,
		Groups:      append([]string(nil), groups...),
		Verdicts:    make(map[string]*Verdict, len(groups)),
		OverallPass: true,
	}

	for _, g := range groups {
		fmt.Fprintf(out, "▶ Validating group %q\n", g)
		table, err := r.Sources[g].Load()
		if err != nil {
			// Fatal: thresholds are meaningless without complete data.
			return nil, err
		}

		stats := Compute(table, r.NonNegative)
		pass, reasons := Evaluate(stats, r.Thresholds)
		run.Verdicts[g] = &Verdict{Group: g, Stats: stats, Pass: pass, Reasons: reasons}
		if !pass {
			run.OverallPass = false
			fmt.Fprintf(out, "✗ %s: %d issue(s)\n", g, len(reasons))
		} else {
			fmt.Fprintf(out, "✓ %s: ok\n", g)
		}

		if r.Profile {
			r.profileGroup(table, g, errw, out)
		}
	}

	if err := utils.EnsureDir(r.ReportsDir); err != nil {
		return nil, fmt.Errorf("ensure reports dir: %w", err)
	}
	path := filepath.Join(r.ReportsDir, r.reportPrefix()+"_report.json")
	if err := run.Save(path); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✓ Wrote run report to %s\n\n", path)
	fmt.Fprint(out, run.Markdown())
	return run, nil
}

// profileGroup renders the optional profile artifact. Failures here are
// logged and skipped; they never affect the validation outcome.
func (r *Runner) profileGroup(table *dataset.Table, group string, errw, out io.Writer) {
	rep, err := profile.Build(table, profile.Options{SampleRows: r.ProfileSample, Seed: r.ProfileSeed})
	if err != nil {
		fmt.Fprintf(errw, "⚠ Warning: profile for %q skipped: %v\n", group, err)
		return
	}
	if err := utils.EnsureDir(r.ReportsDir); err != nil {
		fmt.Fprintf(errw, "⚠ Warning: profile for %q skipped: %v\n", group, err)
		return
	}
	path := filepath.Join(r.ReportsDir, group+"_profile.md")
	if err := utils.SafeWriteFile(path, []byte(rep.Markdown())); err != nil {
		fmt.Fprintf(errw, "⚠ Warning: profile for %q skipped: %v\n", group, err)
		return
	}
	fmt.Fprintf(out, "✓ Wrote profile to %s\n", path)
}

func (r *Runner) reportPrefix() string {
	if r.ReportPrefix == "" {
		return "validation"
	}
	return r.ReportPrefix
}

func knownGroups(sources map[string]dataset.Source) []string {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
