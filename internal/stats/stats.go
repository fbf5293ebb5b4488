// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/salaryscope/internal/model"
)

// whiskerReach is the IQR multiple whiskers may extend past the box.
const whiskerReach = 1.5

// Quantile returns the p-quantile of sorted values using linear interpolation
// between closest ranks. It returns 0 for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Describe computes the box-plot summary of values. Category is left empty.
func Describe(values []float64) model.Box {
	if len(values) == 0 {
		return model.Box{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	box := model.Box{
		N:      len(sorted),
		Min:    sorted[0],
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	iqr := box.Q3 - box.Q1
	lowFence := box.Q1 - whiskerReach*iqr
	highFence := box.Q3 + whiskerReach*iqr

	box.LowerWhisker = box.Q1
	box.UpperWhisker = box.Q3
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		if v < box.LowerWhisker {
			box.LowerWhisker = v
		}
		if v > box.UpperWhisker {
			box.UpperWhisker = v
		}
	}
	return box
}

// Summarize aggregates salaries per value of field, in first-appearance order.
func Summarize(records []model.Record, field model.Field) []model.GroupSummary {
	index := map[string]int{}
	var out []model.GroupSummary
	for _, r := range records {
		key := r.Value(field)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, model.GroupSummary{Value: key, Min: r.Salary, Max: r.Salary})
		}
		g := &out[i]
		g.Count++
		g.Mean += r.Salary
		if r.Salary < g.Min {
			g.Min = r.Salary
		}
		if r.Salary > g.Max {
			g.Max = r.Salary
		}
	}
	for i := range out {
		out[i].Mean /= float64(out[i].Count)
	}
	return out
}
