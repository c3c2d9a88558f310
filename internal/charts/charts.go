// Package charts renders the historical aggregates as SVG.
package charts

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/history"
)

// LabelLimit is the largest number of points that still get value labels.
const LabelLimit = 30

const emptyMessage = "Keine Daten im gewählten Zeitraum"

var (
	colorAverage = drawing.ColorFromHex("808080")
	colorMin     = drawing.ColorFromHex("1f77b4")
	colorMax     = drawing.ColorFromHex("d62728")
	colorRain    = drawing.ColorFromHex("1f77b4")
)

// ErrNoData is returned by the chart builders when nothing can be plotted.
var ErrNoData = errors.New("no data to plot")

// Options size the rendered charts.
type Options struct {
	Width       int
	Height      int
	Granularity history.Granularity
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1000
	}
	if o.Height <= 0 {
		o.Height = 420
	}
	if o.Granularity == "" {
		o.Granularity = history.Daily
	}
	return o
}

func (o Options) timeLayout() string {
	if o.Granularity == history.Hourly {
		return "02.01. 15:04"
	}
	return "02.01.2006"
}

// RenderTemperature plots the average as a grey line and minimum and
// maximum as blue and red markers.
func RenderTemperature(w io.Writer, aggs []weatherdb.Aggregate, opts Options) error {
	opts = opts.withDefaults()
	ch, err := temperatureChart(aggs, opts)
	if errors.Is(err, ErrNoData) {
		return renderEmpty(w, opts)
	}
	if err != nil {
		return err
	}
	return ch.Render(chart.SVG, w)
}

// RenderRain plots the precipitation per bucket as bars.
func RenderRain(w io.Writer, aggs []weatherdb.Aggregate, opts Options) error {
	opts = opts.withDefaults()
	ch, err := rainChart(aggs, opts)
	if errors.Is(err, ErrNoData) {
		return renderEmpty(w, opts)
	}
	if err != nil {
		return err
	}
	return ch.Render(chart.SVG, w)
}

type points struct {
	times  []time.Time
	values []float64
}

func collect(aggs []weatherdb.Aggregate, pick func(weatherdb.Aggregate) *float64) points {
	var p points
	for _, a := range aggs {
		if v := pick(a); v != nil && !math.IsNaN(*v) {
			p.times = append(p.times, a.Time)
			p.values = append(p.values, *v)
		}
	}
	return p
}

// padded returns at least two x values; go-chart cannot draw a zero range.
func (p points) padded(step time.Duration) ([]time.Time, []float64) {
	if len(p.times) == 1 {
		return []time.Time{p.times[0], p.times[0].Add(step)}, []float64{p.values[0], p.values[0]}
	}
	return p.times, p.values
}

func bucketStep(g history.Granularity) time.Duration {
	if g == history.Hourly {
		return time.Hour
	}
	return 24 * time.Hour
}

func temperatureChart(aggs []weatherdb.Aggregate, opts Options) (chart.Chart, error) {
	avg := collect(aggs, func(a weatherdb.Aggregate) *float64 { return a.TempAvg })
	low := collect(aggs, func(a weatherdb.Aggregate) *float64 { return a.TempMin })
	high := collect(aggs, func(a weatherdb.Aggregate) *float64 { return a.TempMax })

	step := bucketStep(opts.Granularity)
	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)

	add := func(name string, p points, style chart.Style) {
		if len(p.times) == 0 {
			return
		}
		xs, ys := p.padded(step)
		series = append(series, chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style})
		for _, v := range p.values {
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	add("Ø", avg, chart.Style{StrokeColor: colorAverage, StrokeWidth: 2})
	add("Min", low, pointStyle(colorMin))
	add("Max", high, pointStyle(colorMax))
	if len(series) == 0 {
		return chart.Chart{}, ErrNoData
	}

	if len(aggs) <= LabelLimit {
		var labels []chart.Value2
		for _, p := range []points{low, high} {
			for i, t := range p.times {
				labels = append(labels, chart.Value2{
					XValue: chart.TimeToFloat64(t),
					YValue: p.values[i],
					Label:  fmt.Sprintf("%.1f°C", p.values[i]),
				})
			}
		}
		if len(labels) > 0 {
			series = append(series, chart.AnnotationSeries{Annotations: labels})
		}
	}

	ch := chart.Chart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(opts.timeLayout()),
		},
		YAxis: chart.YAxis{
			Name:  "Temperatur (°C)",
			Range: &chart.ContinuousRange{Min: math.Floor(yMin) - 1, Max: math.Ceil(yMax) + 1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

// barMargin is the horizontal space reserved for padding and the y axis.
const barMargin = 100

func rainChart(aggs []weatherdb.Aggregate, opts Options) (chart.BarChart, error) {
	rain := binSums(collect(aggs, func(a weatherdb.Aggregate) *float64 { return a.RainMM }), maxBars(opts.Width))
	n := len(rain.times)
	if n == 0 {
		return chart.BarChart{}, ErrNoData
	}

	layout := opts.timeLayout()
	every := int(math.Ceil(float64(n) / float64(LabelLimit/2)))
	maxRain := 0.0
	bars := make([]chart.Value, n)
	for i, t := range rain.times {
		v := rain.values[i]
		maxRain = math.Max(maxRain, v)
		label := ""
		switch {
		case n <= LabelLimit:
			label = fmt.Sprintf("%s %.2fmm", t.Format(layout), v)
		case i%every == 0:
			label = t.Format(layout)
		}
		bars[i] = chart.Value{
			Value: v,
			Label: label,
			Style: chart.Style{FillColor: colorRain, StrokeColor: colorRain},
		}
	}

	slot := max(2, (opts.Width-barMargin)/n)
	barWidth := max(1, slot*2/3)
	return chart.BarChart{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 16}},
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		YAxis: chart.YAxis{
			Name:  "Niederschlag (mm)",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, maxRain*1.15)},
		},
		Bars: bars,
	}, nil
}

// maxBars is how many bars fit at one pixel each plus one pixel spacing.
func maxBars(width int) int {
	return max(1, (width-barMargin)/2)
}

// binSums merges consecutive points into at most limit groups. Each group
// carries the time of its first point and the sum of its values.
func binSums(p points, limit int) points {
	n := len(p.times)
	if n <= limit {
		return p
	}
	size := int(math.Ceil(float64(n) / float64(limit)))
	var out points
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		sum := 0.0
		for _, v := range p.values[start:end] {
			sum += v
		}
		out.times = append(out.times, p.times[start])
		out.values = append(out.values, sum)
	}
	return out
}

// pointStyle renders markers only, without a connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func renderEmpty(w io.Writer, opts Options) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#666">%s</text></svg>`,
		opts.Width, opts.Height, html.EscapeString(emptyMessage))
	return err
}
