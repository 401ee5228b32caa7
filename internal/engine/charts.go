package engine

import (
	"encoding/json"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
)

// Chart titles and empty-state copy of the four dashboard regions.
const (
	TitleIncomeExpense      = "Income vs. Expense Over Time"
	TitleExpenseBreakdown   = "Monthly Expense Breakdown"
	TitleCashFlow           = "Monthly Cash Flow"
	TitleDailyIncomeExpense = "Daily Income vs. Expense"

	EmptyExpenseBreakdown = "No expense data available for this month."
	EmptyCashFlow         = "No cash flow data available."
	EmptyDaily            = "No daily transaction data available for the last 30 days."
)

const lineTension = 0.3

// ChartAdapter turns the aggregate datasets of a page into chart
// specifications. It holds no state besides the currency rule.
type ChartAdapter struct {
	Currency format.Currency
}

// NewChartAdapter returns an adapter using the given currency rule.
func NewChartAdapter(cur format.Currency) ChartAdapter {
	return ChartAdapter{Currency: cur}
}

func (a ChartAdapter) axis(beginAtZero bool) domain.ValueAxis {
	return domain.ValueAxis{BeginAtZero: beginAtZero, Currency: a.Currency}
}

// BuildTimeSeriesChart builds the monthly income/expense line chart. Labels
// keep the dataset order.
func (a ChartAdapter) BuildTimeSeriesChart(ms domain.MonthlySummary) domain.ChartSpecification {
	labels, income, expense := splitTotals(ms, format.MonthLabel)
	return domain.ChartSpecification{
		Slot:      domain.SlotIncomeExpense,
		Kind:      domain.KindLine,
		IndexAxis: "x",
		Title:     TitleIncomeExpense,
		Labels:    labels,
		Series: []domain.Series{
			lineSeries("Income", income, Accent),
			lineSeries("Expenses", expense, Alert),
		},
		ValueAxis:  a.axis(true),
		ShowLegend: true,
	}
}

// BuildCategoryBreakdownChart builds the horizontal expense-by-category bar
// chart. Bar i is colored ColorForIndex(i).
func (a ChartAdapter) BuildCategoryBreakdownChart(eb domain.ExpenseBreakdown) domain.ChartSpecification {
	spec := domain.ChartSpecification{
		Slot:      domain.SlotExpenseBreakdown,
		Kind:      domain.KindBar,
		IndexAxis: "y",
		Title:     TitleExpenseBreakdown,
		ValueAxis: a.axis(true),
	}
	if len(eb) == 0 {
		return emptyState(spec, EmptyExpenseBreakdown)
	}

	s := domain.Series{Label: "Amount", BorderWidth: 1}
	for i, entry := range eb {
		c := ColorForIndex(i)
		spec.Labels = append(spec.Labels, entry.Category)
		s.Data = append(s.Data, entry.Amount)
		s.BackgroundColors = append(s.BackgroundColors, c)
		s.BorderColors = append(s.BorderColors, c.WithAlpha(borderAlpha))
	}
	spec.Series = []domain.Series{s}
	return spec
}

// BuildCashFlowChart builds the net cash-flow bar chart. Each bar is colored
// by the sign of its own value.
func (a ChartAdapter) BuildCashFlowChart(cf domain.CashFlow) domain.ChartSpecification {
	spec := domain.ChartSpecification{
		Slot:      domain.SlotCashFlow,
		Kind:      domain.KindBar,
		IndexAxis: "x",
		Title:     TitleCashFlow,
		ValueAxis: a.axis(false),
	}
	if len(cf) == 0 {
		return emptyState(spec, EmptyCashFlow)
	}

	s := domain.Series{Label: "Net Cash Flow", BorderWidth: 1}
	for _, entry := range cf {
		c := ColorForSign(entry.Value)
		spec.Labels = append(spec.Labels, format.MonthLabel(entry.Period))
		s.Data = append(s.Data, entry.Value)
		s.BackgroundColors = append(s.BackgroundColors, c)
		s.BorderColors = append(s.BorderColors, c.WithAlpha(borderAlpha))
	}
	spec.Series = []domain.Series{s}
	return spec
}

// BuildDailySeriesChart builds the daily income/expense line chart.
func (a ChartAdapter) BuildDailySeriesChart(ds domain.DailySummary) domain.ChartSpecification {
	spec := domain.ChartSpecification{
		Slot:       domain.SlotDailyIncomeExpense,
		Kind:       domain.KindLine,
		IndexAxis:  "x",
		Title:      TitleDailyIncomeExpense,
		ValueAxis:  a.axis(false),
		ShowLegend: true,
	}
	if len(ds) == 0 {
		return emptyState(spec, EmptyDaily)
	}

	labels, income, expense := splitTotals(ds, format.DayLabel)
	spec.Labels = labels
	spec.Series = []domain.Series{
		lineSeries("Daily Income", income, Accent),
		lineSeries("Daily Expenses", expense, Alert),
	}
	return spec
}

func splitTotals(rows []domain.PeriodTotals, label func(string) string) (labels []string, income, expense []float64) {
	labels = make([]string, 0, len(rows))
	income = make([]float64, 0, len(rows))
	expense = make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, label(r.Period))
		income = append(income, r.Income)
		expense = append(expense, r.Expense)
	}
	return labels, income, expense
}

func lineSeries(label string, data []float64, c domain.Color) domain.Series {
	return domain.Series{
		Label:            label,
		Data:             data,
		BackgroundColors: []domain.Color{c.WithAlpha(areaAlpha)},
		BorderColors:     []domain.Color{c.WithAlpha(borderAlpha)},
		Fill:             true,
		Tension:          lineTension,
	}
}

func emptyState(spec domain.ChartSpecification, msg string) domain.ChartSpecification {
	spec.Empty = true
	spec.EmptyMessage = msg
	spec.ShowLegend = false
	spec.Labels = nil
	spec.Series = nil
	return spec
}

// ChartSet is the outcome of building every chart of a page.
type ChartSet struct {
	Charts  map[domain.ChartSlot]domain.ChartSpecification
	Skipped []domain.ChartSlot
	// Failures holds one *domain.ErrPayload per dataset that was present but
	// could not be decoded.
	Failures []error
}

// BuildAll runs each transform whose dataset is present and decodes. A
// missing or undecodable dataset skips only its own chart.
func (a ChartAdapter) BuildAll(p *domain.PagePayload) ChartSet {
	set := ChartSet{Charts: make(map[domain.ChartSlot]domain.ChartSpecification, len(domain.ChartSlots))}

	for _, name := range domain.AggregateDatasets {
		slot, _ := domain.SlotForDataset(name)
		raw, ok := p.Raw(name)
		if !ok {
			set.Skipped = append(set.Skipped, slot)
			continue
		}
		spec, err := a.build(name, raw)
		if err != nil {
			set.Skipped = append(set.Skipped, slot)
			set.Failures = append(set.Failures, &domain.ErrPayload{Dataset: name, Err: err})
			continue
		}
		set.Charts[slot] = spec
	}
	return set
}

func (a ChartAdapter) build(name domain.DatasetName, raw []byte) (domain.ChartSpecification, error) {
	switch name {
	case domain.DatasetMonthlySummary:
		var ms domain.MonthlySummary
		if err := json.Unmarshal(raw, &ms); err != nil {
			return domain.ChartSpecification{}, err
		}
		return a.BuildTimeSeriesChart(ms), nil
	case domain.DatasetExpenseBreakdown:
		var eb domain.ExpenseBreakdown
		if err := json.Unmarshal(raw, &eb); err != nil {
			return domain.ChartSpecification{}, err
		}
		return a.BuildCategoryBreakdownChart(eb), nil
	case domain.DatasetCashFlow:
		var cf domain.CashFlow
		if err := json.Unmarshal(raw, &cf); err != nil {
			return domain.ChartSpecification{}, err
		}
		return a.BuildCashFlowChart(cf), nil
	case domain.DatasetDailySummary:
		var ds domain.DailySummary
		if err := json.Unmarshal(raw, &ds); err != nil {
			return domain.ChartSpecification{}, err
		}
		return a.BuildDailySeriesChart(ds), nil
	}
	return domain.ChartSpecification{}, &domain.ErrValidation{Field: "dataset", Message: "unknown dataset " + string(name)}
}
