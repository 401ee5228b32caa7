package domain

import (
	"fmt"
	"strconv"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
)

// ChartSlot is the stable identifier of a chart region on the dashboard.
type ChartSlot string

const (
	SlotIncomeExpense      ChartSlot = "incomeExpenseChart"
	SlotExpenseBreakdown   ChartSlot = "expenseBreakdownChart"
	SlotCashFlow           ChartSlot = "cashFlowChart"
	SlotDailyIncomeExpense ChartSlot = "dailyIncomeExpenseChart"
)

// ChartSlots lists the four slots in page order.
var ChartSlots = []ChartSlot{
	SlotIncomeExpense,
	SlotExpenseBreakdown,
	SlotCashFlow,
	SlotDailyIncomeExpense,
}

// SlotForDataset returns the chart slot fed by an aggregate dataset.
func SlotForDataset(name DatasetName) (ChartSlot, bool) {
	switch name {
	case DatasetMonthlySummary:
		return SlotIncomeExpense, true
	case DatasetExpenseBreakdown:
		return SlotExpenseBreakdown, true
	case DatasetCashFlow:
		return SlotCashFlow, true
	case DatasetDailySummary:
		return SlotDailyIncomeExpense, true
	}
	return "", false
}

// ChartKind is the chart type understood by the rendering sink.
type ChartKind string

const (
	KindLine ChartKind = "line"
	KindBar  ChartKind = "bar"
)

// Color is an RGBA color; alpha is in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA builds a Color.
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// WithAlpha returns the same color with a different opacity.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// String renders the color as a CSS rgba() value, e.g. "rgba(255, 99, 132, 0.7)".
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	var r, g, b uint8
	var a float64
	if _, err := fmt.Sscanf(string(text), "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = Color{R: r, G: g, B: b, A: a}
	return nil
}

// Series is one dataset of a chart. Colors hold either a single entry that
// applies to the whole series or one entry per data point.
type Series struct {
	Label            string    `json:"label"`
	Data             []float64 `json:"data"`
	BackgroundColors []Color   `json:"backgroundColor"`
	BorderColors     []Color   `json:"borderColor"`
	BorderWidth      int       `json:"borderWidth,omitempty"`
	Fill             bool      `json:"fill"`
	Tension          float64   `json:"tension,omitempty"`
}

// BackgroundAt returns the fill color used for point i.
func (s Series) BackgroundAt(i int) Color {
	return colorAt(s.BackgroundColors, i)
}

// BorderAt returns the border color used for point i.
func (s Series) BorderAt(i int) Color {
	return colorAt(s.BorderColors, i)
}

func colorAt(colors []Color, i int) Color {
	switch {
	case len(colors) == 0:
		return Color{}
	case len(colors) == 1:
		return colors[0]
	case i < len(colors):
		return colors[i]
	}
	return colors[len(colors)-1]
}

// ValueAxis describes the numeric axis of a chart.
type ValueAxis struct {
	BeginAtZero bool            `json:"beginAtZero"`
	Currency    format.Currency `json:"currency"`
}

// FormatTick renders a tick value with the chart's currency rule.
func (a ValueAxis) FormatTick(v float64) string {
	return a.Currency.FormatTick(v)
}

// ChartSpecification is the declarative description handed to the rendering sink.
type ChartSpecification struct {
	Slot ChartSlot `json:"slot"`
	Kind ChartKind `json:"type"`
	// IndexAxis is "x" for vertical charts and "y" for horizontal bars.
	IndexAxis    string    `json:"indexAxis"`
	Title        string    `json:"title"`
	Labels       []string  `json:"labels"`
	Series       []Series  `json:"datasets"`
	ValueAxis    ValueAxis `json:"valueAxis"`
	ShowLegend   bool      `json:"showLegend"`
	Empty        bool      `json:"empty"`
	EmptyMessage string    `json:"emptyMessage,omitempty"`
}

// Horizontal reports whether categories run along the vertical axis.
func (c ChartSpecification) Horizontal() bool {
	return c.IndexAxis == "y"
}
