// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/salaryscope/internal/model"
)

type ansiColor struct {
	name string
	code string
}

const (
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	emptyNote           = "No data for the current selection."
	valueColumnWidth    = 9
)

const (
	whiskerRune = '─'
	boxRune     = '▒'
	medianRune  = '┃'
	outlierRune = '•'
	lowCapRune  = '├'
	highCapRune = '┤'
)

// eighthBlocks renders fractional bar ends in 1/8 cell steps.
var eighthBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// RenderChart draws a chart spec as text sized to the terminal.
func RenderChart(w io.Writer, spec model.ChartSpec) error {
	return RenderChartWithSize(w, spec, 0, false)
}

// RenderChartWithSize draws a chart spec within totalWidth columns.
// A zero width uses the terminal width.
func RenderChartWithSize(w io.Writer, spec model.ChartSpec, totalWidth int, forceColor bool) error {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	useColor := shouldUseColor(w, forceColor)
	if spec.Title != "" {
		if _, err := fmt.Fprintln(w, spec.Title); err != nil {
			return err
		}
	}
	if spec.Empty() {
		_, err := fmt.Fprintln(w, emptyNote)
		return err
	}
	switch spec.Kind {
	case model.KindBox:
		return renderBoxes(w, spec, totalWidth, useColor)
	default:
		return renderHistogram(w, spec, totalWidth, useColor)
	}
}

func renderHistogram(w io.Writer, spec model.ChartSpec, totalWidth int, useColor bool) error {
	if _, err := fmt.Fprintf(w, "y: %s  x: %s  bin: %d  n=%d\n", spec.YTitle, spec.XTitle, spec.BinSize, spec.Rows); err != nil {
		return err
	}
	names := make([]string, len(spec.Histograms))
	for i, s := range spec.Histograms {
		names[i] = fmt.Sprintf("%s (n=%d)", s.Name, s.Total)
	}
	if _, err := fmt.Fprintln(w, renderLegend(names, useColor)); err != nil {
		return err
	}

	binCount := 0
	maxVal := 0.0
	for _, s := range spec.Histograms {
		if len(s.Bins) > binCount {
			binCount = len(s.Bins)
		}
		for _, b := range s.Bins {
			maxVal = math.Max(maxVal, b.Value)
		}
	}
	if binCount == 0 {
		_, err := fmt.Fprintln(w, emptyNote)
		return err
	}

	labels := make([]string, binCount)
	labelWidth := 0
	for i := 0; i < binCount; i++ {
		b := firstBinAt(spec.Histograms, i)
		labels[i] = fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper)
		labelWidth = max(labelWidth, displayWidth(labels[i]))
	}
	barWidth := PlotWidthFor(totalWidth - labelWidth - valueColumnWidth)

	for i := 0; i < binCount; i++ {
		for si, s := range spec.Histograms {
			label := ""
			if si == 0 {
				label = labels[i]
			}
			value := 0.0
			if i < len(s.Bins) {
				value = s.Bins[i].Value
			}
			bar := horizontalBar(value, maxVal, barWidth)
			if useColor {
				bar = colorize(bar, si)
			}
			line := fmt.Sprintf("%s%s%s %s", padCell(label, labelWidth, true), axisSeparator, bar, formatValue(value, spec.Normalized))
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderBoxes(w io.Writer, spec model.ChartSpec, totalWidth int, useColor bool) error {
	if _, err := fmt.Fprintf(w, "y: %s  x: %s  n=%d\n", spec.YTitle, spec.XTitle, spec.Rows); err != nil {
		return err
	}
	names := make([]string, len(spec.Boxes))
	for i, s := range spec.Boxes {
		names[i] = s.Name
	}
	if _, err := fmt.Fprintln(w, renderLegend(names, useColor)); err != nil {
		return err
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	labelWidth := 0
	for _, s := range spec.Boxes {
		for _, b := range s.Boxes {
			lo = math.Min(lo, b.Min)
			hi = math.Max(hi, b.Max)
			labelWidth = max(labelWidth, displayWidth(b.Category))
		}
	}
	if math.IsInf(lo, 1) {
		_, err := fmt.Fprintln(w, emptyNote)
		return err
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	statsWidth := 22
	plotWidth := PlotWidthFor(totalWidth - labelWidth - statsWidth)

	for _, category := range boxCategories(spec.Boxes) {
		first := true
		for si, s := range spec.Boxes {
			b, ok := findBox(s.Boxes, category)
			if !ok {
				continue
			}
			label := ""
			if first {
				label = category
				first = false
			}
			strip := boxStrip(b, lo, hi, plotWidth)
			if useColor {
				strip = colorize(strip, si)
			}
			line := fmt.Sprintf("%s%s%s  n=%d med=%.0f", padCell(label, labelWidth, false), axisSeparator, strip, b.N, b.Median)
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	axis := fmt.Sprintf("%s%s%s", strings.Repeat(" ", labelWidth), axisSeparator, axisLabels(lo, hi, plotWidth))
	if _, err := fmt.Fprintln(w, strings.TrimRight(axis, " ")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func firstBinAt(series []model.HistogramSeries, i int) model.Bin {
	for _, s := range series {
		if i < len(s.Bins) {
			return s.Bins[i]
		}
	}
	return model.Bin{}
}

func horizontalBar(value, maxVal float64, width int) string {
	if width <= 0 {
		return ""
	}
	eighths := 0
	if maxVal > 0 && value > 0 {
		eighths = int(math.Round(value / maxVal * float64(width*8)))
	}
	full := eighths / 8
	rem := eighths % 8
	var b strings.Builder
	b.WriteString(strings.Repeat(string(eighthBlocks[8]), full))
	cells := full
	if rem > 0 {
		b.WriteRune(eighthBlocks[rem])
		cells++
	}
	if cells < width {
		b.WriteString(strings.Repeat(" ", width-cells))
	}
	return b.String()
}

func formatValue(value float64, normalized bool) string {
	if normalized {
		return fmt.Sprintf("%.1f%%", value)
	}
	return fmt.Sprintf("%.0f", value)
}

func boxStrip(b model.Box, lo, hi float64, width int) string {
	cells := []rune(strings.Repeat(" ", width))
	col := func(v float64) int {
		c := int(math.Round((v - lo) / (hi - lo) * float64(width-1)))
		return min(max(c, 0), width-1)
	}
	lw, q1, med, q3, uw := col(b.LowerWhisker), col(b.Q1), col(b.Median), col(b.Q3), col(b.UpperWhisker)
	for x := lw; x <= uw; x++ {
		cells[x] = whiskerRune
	}
	for x := q1; x <= q3; x++ {
		cells[x] = boxRune
	}
	if lw < q1 {
		cells[lw] = lowCapRune
	}
	if uw > q3 {
		cells[uw] = highCapRune
	}
	cells[med] = medianRune
	for _, o := range b.Outliers {
		cells[col(o)] = outlierRune
	}
	return string(cells)
}

func boxCategories(series []model.BoxSeries) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range series {
		for _, b := range s.Boxes {
			if _, ok := seen[b.Category]; ok {
				continue
			}
			seen[b.Category] = struct{}{}
			out = append(out, b.Category)
		}
	}
	return out
}

func findBox(boxes []model.Box, category string) (model.Box, bool) {
	for _, b := range boxes {
		if b.Category == category {
			return b, true
		}
	}
	return model.Box{}, false
}

func axisLabels(lo, hi float64, width int) string {
	left := fmt.Sprintf("%.0f", lo)
	right := fmt.Sprintf("%.0f", hi)
	gap := width - displayWidth(left) - displayWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// PlotWidthFor computes the drawable width left after labels within totalWidth.
func PlotWidthFor(totalWidth int) int {
	plotWidth := totalWidth - displayWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func colorize(s string, idx int) string {
	return colorPalette[idx%len(colorPalette)].code + s + colorReset
}

func renderLegend(names []string, useColor bool) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		label := fmt.Sprintf("%c %s (%s)", eighthBlocks[8], name, colorPalette[i%len(colorPalette)].name)
		if useColor {
			label = colorize(label, i)
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
