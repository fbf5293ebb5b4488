// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/salaryscope/internal/model"
)

// TopGroups returns the n largest groups by response count.
func TopGroups(groups []model.GroupSummary, n int) []model.GroupSummary {
	if n <= 0 || len(groups) == 0 {
		return nil
	}
	items := append([]model.GroupSummary(nil), groups...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Value < items[j].Value
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
