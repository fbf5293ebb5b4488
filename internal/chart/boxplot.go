package chart

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/stats"
)

// allSeries names the single box series drawn without a sex split.
const allSeries = "all"

// boxes summarizes salaries per experience value, one series per sex when split.
func boxes(records []model.Record, split bool) []model.BoxSeries {
	type group struct {
		name       string
		categories map[string][]float64
	}
	index := map[string]int{}
	var groups []group
	for _, r := range records {
		name := allSeries
		if split {
			name = r.Sex
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, group{name: name, categories: map[string][]float64{}})
		}
		category := strings.TrimSpace(r.Experience)
		if category == "" {
			category = model.Missing
		}
		groups[i].categories[category] = append(groups[i].categories[category], r.Salary)
	}

	out := make([]model.BoxSeries, 0, len(groups))
	for _, g := range groups {
		categories := make([]string, 0, len(g.categories))
		for c := range g.categories {
			categories = append(categories, c)
		}
		sortNatural(categories)

		s := model.BoxSeries{Name: g.name, Boxes: make([]model.Box, 0, len(categories))}
		for _, c := range categories {
			box := stats.Describe(g.categories[c])
			box.Category = c
			s.Boxes = append(s.Boxes, box)
		}
		out = append(out, s)
	}
	return out
}

// naturalLess orders values with a leading integer numerically before
// plain text, which sorts lexically.
func naturalLess(a, b string) bool {
	na, okA := leadingInt(a)
	nb, okB := leadingInt(b)
	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func leadingInt(s string) (int, bool) {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func sortNatural(values []string) {
	sort.Slice(values, func(i, j int) bool { return naturalLess(values[i], values[j]) })
}
