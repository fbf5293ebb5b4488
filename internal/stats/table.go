// Package stats contains statistics calculations and reporting.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	columnGap    = "  "
	ellipsis     = "…"
	maxCellWidth = 32
)

// textTable lays out rows in aligned columns. Cells wider than maxCell are
// cut with an ellipsis; zero means no limit.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	maxCell int
}

func (t textTable) columns() int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	return n
}

func (t textTable) cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	v := row[i]
	if t.maxCell > 0 && displayWidth(v) > t.maxCell {
		v = runewidth.Truncate(v, t.maxCell, ellipsis)
	}
	return v
}

func (t textTable) lines() []string {
	cols := t.columns()
	if cols == 0 {
		return nil
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i := range widths {
			widths[i] = max(widths[i], displayWidth(t.cell(row, i)))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}

	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t textTable) line(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cells[i] = padCell(t.cell(row, i), w, t.right[i])
	}
	return strings.TrimRight(strings.Join(cells, columnGap), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	gap := width - displayWidth(value)
	if gap <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
