// Package profile renders descriptive-statistics reports over a bounded
// random sample of a group's data. Profiling is a side branch: it never
// influences validation verdicts.
package profile

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
)

// Options controls sampling for a profile report.
type Options struct {
	// SampleRows caps how many rows are profiled; clamped to the table size.
	SampleRows int
	// Seed makes the sample reproducible. 0 derives a seed from the clock.
	Seed int64
}

// ColumnProfile summarizes one column over the sampled rows.
type ColumnProfile struct {
	Name    string
	NonNull int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	Q1      float64
	Median  float64
	Q3      float64
}

// Report is the rendered-ready profile of one group's sample.
type Report struct {
	Group   string
	Rows    int
	Sampled int
	Seed    int64
	Cols    []ColumnProfile
}

// Build draws a uniform random sample without replacement and computes
// descriptive statistics per column.
func Build(t *dataset.Table, opt Options) (*Report, error) {
	if opt.SampleRows <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", opt.SampleRows)
	}
	n := opt.SampleRows
	if t.NumRows() < n {
		n = t.NumRows()
	}
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	idx := rng.Perm(t.NumRows())[:n]

	rep := &Report{Group: t.Name(), Rows: t.NumRows(), Sampled: n, Seed: seed}
	for _, name := range t.ColumnNames() {
		vals := t.Column(name)
		cp := ColumnProfile{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
		var present []float64
		var mean, m2 float64
		for _, i := range idx {
			v := vals[i]
			if math.IsNaN(v) {
				cp.Missing++
				continue
			}
			cp.NonNull++
			present = append(present, v)
			if v < cp.Min {
				cp.Min = v
			}
			if v > cp.Max {
				cp.Max = v
			}
			delta := v - mean
			mean += delta / float64(cp.NonNull)
			m2 += delta * (v - mean)
		}
		if cp.NonNull == 0 {
			cp.Min, cp.Max = 0, 0
		} else {
			cp.Mean = mean
			if cp.NonNull > 1 {
				cp.Std = math.Sqrt(m2 / float64(cp.NonNull-1))
			}
			sort.Float64s(present)
			cp.Q1 = quantile(present, 0.25)
			cp.Median = quantile(present, 0.5)
			cp.Q3 = quantile(present, 0.75)
		}
		rep.Cols = append(rep.Cols, cp)
	}
	return rep, nil
}

// Markdown renders the profile as a standalone human-readable document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[PROFILE]\n")
	b.WriteString(fmt.Sprintf("Group: %s\n", r.Group))
	if r.Sampled < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (sampled %d, seed %d)\n", r.Rows, r.Sampled, r.Seed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d (seed %d)\n", r.Rows, r.Seed))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[DESCRIPTIVE STATS]\n")
	b.WriteString("| column | non-null | missing | min | q1 | median | q3 | max | mean | std |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			c.Name, c.NonNull, c.Missing, c.Min, c.Q1, c.Median, c.Q3, c.Max, c.Mean, c.Std))
	}
	return b.String()
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
