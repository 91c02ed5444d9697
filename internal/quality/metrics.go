package quality

import (
	"math"
	"sort"
	"strings"

	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
)

// iqrMult sets the fence width for the soft IQR outlier scan.
const iqrMult = 3.0

// topN caps the per-column breakdowns carried in reports.
const topN = 10

// ColCount pairs a column name with a count, used for top-N breakdowns.
type ColCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Stats holds the quality metrics computed for one group table.
// NaNRatio and NegViolationsTotal feed the threshold policy; the rest is
// informational context carried into the run report.
type Stats struct {
	Group      string `json:"group"`
	Shape      [2]int `json:"shape"`
	NSensors   int    `json:"n_sensors"`
	AllNumeric bool   `json:"dtypes_numeric"`

	NaNTotal    int        `json:"nan_total"`
	NaNRatio    float64    `json:"nan_ratio"`
	NaNByColTop []ColCount `json:"nan_by_col_top10"`

	NegViolationsTotal int        `json:"neg_violations_total"`
	NegByColTop        []ColCount `json:"neg_violations_by_col_top10"`

	OutliersTotal    int        `json:"outliers_iqr_total"`
	OutliersByColTop []ColCount `json:"outliers_iqr_by_col_top10"`
}

// Compute derives the quality metrics for a group table. Only sensor
// columns are considered; the cycle/t_in_cycle metadata is skipped.
// Pure: safe to call concurrently across groups.
//
// NaN ratio is total missing cells over total considered cells, defined
// as 0 when the table has no considered cells. Negative violations count
// values strictly below zero in columns whose base sensor name appears in
// nonNegative; missing cells never count as violations.
func Compute(t *dataset.Table, nonNegative []string) Stats {
	sensors := t.SensorColumns()
	nonNeg := make(map[string]bool, len(nonNegative))
	for _, s := range nonNegative {
		nonNeg[s] = true
	}

	s := Stats{
		Group:      t.Name(),
		Shape:      [2]int{t.NumRows(), len(t.ColumnNames())},
		NSensors:   len(sensors),
		AllNumeric: true,
	}

	var nanByCol, negByCol, outByCol []ColCount
	for _, name := range sensors {
		vals := t.Column(name)
		if t.NonNumeric(name) > 0 {
			s.AllNumeric = false
		}

		nans := 0
		var present []float64
		for _, v := range vals {
			if math.IsNaN(v) {
				nans++
				continue
			}
			present = append(present, v)
		}
		s.NaNTotal += nans
		nanByCol = append(nanByCol, ColCount{Column: name, Count: nans})

		neg := 0
		if nonNeg[baseSensor(name)] {
			for _, v := range present {
				if v < 0 {
					neg++
				}
			}
		}
		s.NegViolationsTotal += neg
		negByCol = append(negByCol, ColCount{Column: name, Count: neg})

		out := iqrOutliers(present)
		s.OutliersTotal += out
		outByCol = append(outByCol, ColCount{Column: name, Count: out})
	}

	considered := len(sensors) * t.NumRows()
	if considered > 0 {
		s.NaNRatio = float64(s.NaNTotal) / float64(considered)
	}
	s.NaNByColTop = topCounts(nanByCol)
	s.NegByColTop = topCounts(negByCol)
	s.OutliersByColTop = topCounts(outByCol)
	return s
}

// baseSensor strips a trailing qualifier, so derived columns like
// "PS1_smoothed" still match the PS1 non-negativity rule.
func baseSensor(name string) string {
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}

// iqrOutliers counts values outside the q1-3·IQR / q3+3·IQR fences.
func iqrOutliers(vals []float64) int {
	if len(vals) == 0 {
		return 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	q1 := quantile(cp, 0.25)
	q3 := quantile(cp, 0.75)
	iqr := q3 - q1
	lo := q1 - iqrMult*iqr
	hi := q3 + iqrMult*iqr
	cnt := 0
	for _, v := range vals {
		if v < lo || v > hi {
			cnt++
		}
	}
	return cnt
}

func topCounts(cc []ColCount) []ColCount {
	sort.Slice(cc, func(i, j int) bool {
		if cc[i].Count == cc[j].Count {
			return cc[i].Column < cc[j].Column
		}
		return cc[i].Count > cc[j].Count
	})
	if len(cc) > topN {
		cc = cc[:topN]
	}
	return cc
}

// quantile interpolates the q-th quantile of an already-sorted slice.
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
