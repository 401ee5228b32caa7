// Package render holds the output sinks of the dashboard: PNG charts drawn
// with go-chart and text tables drawn with tablewriter.
package render

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

var _ port.ChartRenderer = (*PNGRenderer)(nil)

// PNGRenderer draws chart specifications as PNG images.
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer with the default canvas size.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: DefaultWidth, Height: DefaultHeight}
}

// RenderChart writes spec to w as a PNG. A spec in its empty state yields
// *domain.ErrEmptyChart so the caller can show the placeholder instead.
func (r *PNGRenderer) RenderChart(ctx context.Context, spec domain.ChartSpecification, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec.Empty || len(spec.Series) == 0 || len(spec.Labels) == 0 {
		msg := spec.EmptyMessage
		if msg == "" {
			msg = "no data points"
		}
		return &domain.ErrEmptyChart{Slot: spec.Slot, Message: msg}
	}

	switch spec.Kind {
	case domain.KindBar:
		return r.renderBar(spec, w)
	case domain.KindLine:
		return r.renderLine(spec, w)
	}
	return &domain.ErrValidation{Field: "type", Message: fmt.Sprintf("unsupported chart type %q", spec.Kind)}
}

func (r *PNGRenderer) background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    40,
			Left:   20,
			Right:  20,
			Bottom: 20,
		},
	}
}

// renderLine draws one continuous series per spec series over evenly spaced
// label ticks.
func (r *PNGRenderer) renderLine(spec domain.ChartSpecification, w io.Writer) error {
	n := len(spec.Labels)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i, label := range spec.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	xRange := &chart.ContinuousRange{Min: 0, Max: float64(n - 1)}

	// go-chart needs two distinct x values; a single point becomes a short
	// flat segment centred on its tick.
	single := n == 1
	if single {
		xs = []float64{-0.5, 0.5}
		xRange = &chart.ContinuousRange{Min: -0.5, Max: 0.5}
	}

	series := make([]chart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		style := chart.Style{
			StrokeColor: toDrawing(s.BorderAt(0)),
			StrokeWidth: 2,
		}
		if s.Fill {
			style.FillColor = toDrawing(s.BackgroundAt(0))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: lineValues(s.Data, n, single),
			Style:   style,
		})
	}

	minY, maxY := valueRange(spec)
	graph := chart.Chart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: xRange,
		},
		YAxis: chart.YAxis{
			ValueFormatter: tickFormatter(spec.ValueAxis),
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	if spec.ShowLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(chart.PNG, w)
}

// renderBar draws the first series as one bar per label with per-bar colors.
// Horizontal specs are drawn with vertical bars.
func (r *PNGRenderer) renderBar(spec domain.ChartSpecification, w io.Writer) error {
	s := spec.Series[0]
	bars := make([]chart.Value, 0, len(spec.Labels))
	for i, label := range spec.Labels {
		v := 0.0
		if i < len(s.Data) {
			v = s.Data[i]
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{
				FillColor:   toDrawing(s.BackgroundAt(i)),
				StrokeColor: toDrawing(s.BorderAt(i)),
				StrokeWidth: float64(s.BorderWidth),
			},
		})
	}

	minY, maxY := valueRange(spec)
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: r.background(),
		Bars:       bars,
		BarSpacing: 10,
		YAxis: chart.YAxis{
			ValueFormatter: tickFormatter(spec.ValueAxis),
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
		},
	}
	if minY < 0 {
		bc.UseBaseValue = true
		bc.BaseValue = 0
	}
	return bc.Render(chart.PNG, w)
}

// valueRange returns the y domain of a spec, widened to include zero when the
// axis begins at zero and never empty.
func valueRange(spec domain.ChartSpecification) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		for _, v := range s.Data {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	if spec.ValueAxis.BeginAtZero || spec.Kind == domain.KindBar {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func tickFormatter(axis domain.ValueAxis) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return axis.FormatTick(f)
		}
		return ""
	}
}

func toDrawing(c domain.Color) drawing.Color {
	a := math.Round(math.Max(0, math.Min(1, c.A)) * 255)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}

func lineValues(data []float64, n int, single bool) []float64 {
	ys := pad(data, n)
	if single {
		return []float64{ys[0], ys[0]}
	}
	return ys
}

func pad(data []float64, n int) []float64 {
	if len(data) >= n {
		return data[:n]
	}
	out := make([]float64, n)
	copy(out, data)
	return out
}
