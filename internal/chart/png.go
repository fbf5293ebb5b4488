package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/salaryscope/internal/model"
)

// ErrEmptyChart is returned when a spec has nothing to draw.
var ErrEmptyChart = errors.New("chart has no data")

// PNG canvas defaults.
const (
	DefaultWidth  = 1024
	DefaultHeight = 576
	boxHalfWidth  = 0.3
)

var seriesColors = []drawing.Color{
	gochart.ColorBlue,
	gochart.ColorRed,
	gochart.ColorGreen,
	gochart.ColorOrange,
	gochart.ColorCyan,
}

func seriesColor(i int) drawing.Color {
	return seriesColors[i%len(seriesColors)]
}

// WritePNG draws spec as a PNG image. Zero sizes use the defaults.
func WritePNG(w io.Writer, spec model.ChartSpec, width, height int) error {
	if spec.Empty() {
		return ErrEmptyChart
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var ch gochart.Chart
	var legend []gochart.Series
	switch spec.Kind {
	case model.KindBox:
		ch, legend = boxChart(spec)
	default:
		ch = histogramChart(spec)
		legend = ch.Series
	}
	if len(ch.Series) == 0 {
		return ErrEmptyChart
	}
	ch.Title = spec.Title
	ch.Width = width
	ch.Height = height
	ch.Background = gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

	keyed := gochart.Chart{Series: legend}
	ch.Elements = []gochart.Renderable{gochart.Legend(&keyed)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

// histogramChart draws each series as a filled step line over shared bins.
func histogramChart(spec model.ChartSpec) gochart.Chart {
	var series []gochart.Series
	lo, hi, top := math.Inf(1), math.Inf(-1), 0.0
	for i, s := range spec.Histograms {
		if len(s.Bins) == 0 {
			continue
		}
		xs := make([]float64, 0, 2*len(s.Bins))
		ys := make([]float64, 0, 2*len(s.Bins))
		for _, b := range s.Bins {
			xs = append(xs, b.Lower, b.Upper)
			ys = append(ys, b.Value, b.Value)
			top = math.Max(top, b.Value)
		}
		lo = math.Min(lo, s.Bins[0].Lower)
		hi = math.Max(hi, s.Bins[len(s.Bins)-1].Upper)
		color := seriesColor(i)
		series = append(series, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("%s (n=%d)", s.Name, s.Total),
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				FillColor:   color.WithAlpha(48),
			},
		})
	}
	if top <= 0 {
		top = 1
	}
	return gochart.Chart{
		XAxis: gochart.XAxis{
			Name:  spec.XTitle,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: gochart.YAxis{
			Name:  spec.YTitle,
			Range: &gochart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Series: series,
	}
}

// boxChart draws one outline per box plus outlier dots. Only the first
// outline of each series is returned for the legend.
func boxChart(spec model.ChartSpec) (gochart.Chart, []gochart.Series) {
	categories := boxCategories(spec.Boxes)
	position := make(map[string]float64, len(categories))
	ticks := make([]gochart.Tick, 0, len(categories))
	for i, c := range categories {
		position[c] = float64(i + 1)
		ticks = append(ticks, gochart.Tick{Value: float64(i + 1), Label: c})
	}

	var series, legend []gochart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	count := float64(len(spec.Boxes))
	for si, s := range spec.Boxes {
		color := seriesColor(si)
		offset := 0.0
		if count > 1 {
			offset = (float64(si) - (count-1)/2) * (2 * boxHalfWidth / count)
		}
		half := boxHalfWidth / math.Max(count, 1)
		var outX, outY []float64
		for bi, b := range s.Boxes {
			lo = math.Min(lo, b.Min)
			hi = math.Max(hi, b.Max)
			x := position[b.Category] + offset
			xs, ys := boxOutline(x, half, b)
			name := ""
			if bi == 0 {
				name = s.Name
			}
			outline := gochart.ContinuousSeries{
				Name:    name,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: color,
					StrokeWidth: 1.5,
				},
			}
			series = append(series, outline)
			if bi == 0 {
				legend = append(legend, outline)
			}
			for _, o := range b.Outliers {
				outX = append(outX, x)
				outY = append(outY, o)
			}
		}
		if len(outX) > 0 {
			series = append(series, gochart.ContinuousSeries{
				XValues: outX,
				YValues: outY,
				Style: gochart.Style{
					StrokeWidth: 0,
					DotWidth:    3,
					DotColor:    color,
				},
			})
		}
	}
	pad := (hi - lo) * 0.05
	if pad <= 0 {
		pad = 1
	}
	return gochart.Chart{
		XAxis: gochart.XAxis{
			Name:  spec.XTitle,
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(len(categories) + 1)},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  spec.YTitle,
			Range: &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}, legend
}

// boxOutline traces whiskers, box and median as one connected path.
func boxOutline(x, half float64, b model.Box) ([]float64, []float64) {
	left, right := x-half, x+half
	points := [][2]float64{
		{x, b.LowerWhisker},
		{x, b.Q1},
		{right, b.Q1},
		{right, b.Q3},
		{x, b.Q3},
		{x, b.UpperWhisker},
		{x, b.Q3},
		{left, b.Q3},
		{left, b.Median},
		{right, b.Median},
		{left, b.Median},
		{left, b.Q1},
		{x, b.Q1},
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p[0], p[1]
	}
	return xs, ys
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
	sortNatural(out)
	return out
}
