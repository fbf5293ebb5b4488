package chart

import (
	"math"

	"github.com/verte-zerg/salaryscope/internal/model"
)

// maxBins caps the bin count. Salaries past the last edge count in the last bin.
const maxBins = 1000

// histograms bins salaries per group value. All series share bin edges
// aligned to multiples of size, starting at floor(min/size)*size.
func histograms(records []model.Record, field model.Field, size int, normalize bool) []model.HistogramSeries {
	if len(records) == 0 {
		return nil
	}
	width := float64(size)
	lo, hi := records[0].Salary, records[0].Salary
	for _, r := range records[1:] {
		lo = math.Min(lo, r.Salary)
		hi = math.Max(hi, r.Salary)
	}
	start := math.Floor(lo/width) * width
	binCount := maxBins
	if span := math.Floor((hi - start) / width); span < maxBins {
		binCount = int(span) + 1
	}

	index := map[string]int{}
	var series []model.HistogramSeries
	for _, r := range records {
		name := r.Value(field)
		i, ok := index[name]
		if !ok {
			i = len(series)
			index[name] = i
			bins := make([]model.Bin, binCount)
			for b := range bins {
				bins[b].Lower = start + float64(b)*width
				bins[b].Upper = bins[b].Lower + width
			}
			series = append(series, model.HistogramSeries{Name: name, Bins: bins})
		}
		b := binCount - 1
		if pos := math.Floor((r.Salary - start) / width); pos < float64(binCount) {
			b = max(int(pos), 0)
		}
		series[i].Bins[b].Count++
		series[i].Total++
	}

	for i := range series {
		s := &series[i]
		for b := range s.Bins {
			count := float64(s.Bins[b].Count)
			if normalize {
				s.Bins[b].Value = count / float64(s.Total) * 100
			} else {
				s.Bins[b].Value = count
			}
		}
	}
	return series
}
