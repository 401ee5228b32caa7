package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowAction is a navigation bound to a table row.
type RowAction struct {
	Kind   string `json:"kind"` // edit | delete
	Target string `json:"target"`
}

// RowDescriptor is one display-ready row of the transaction table. A sentinel
// row carries only Message and ColSpan and stands in for an empty result.
type RowDescriptor struct {
	ID          string      `json:"id,omitempty"`
	Date        string      `json:"date,omitempty"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	TypeLabel   string      `json:"typeLabel,omitempty"`
	TypeClass   string      `json:"typeClass,omitempty"`
	Amount      string      `json:"amount,omitempty"`
	Actions     []RowAction `json:"actions,omitempty"`

	Sentinel bool   `json:"sentinel,omitempty"`
	Message  string `json:"message,omitempty"`
	ColSpan  int    `json:"colspan,omitempty"`
}

// PagePayload holds the raw payloads found on one rendered page. A dataset
// missing from the map is absent; its bytes are decoded later.
type PagePayload struct {
	Source   string
	Datasets map[DatasetName][]byte
	// Dropped counts records the source already discarded as malformed.
	Dropped int
}

// Raw returns the payload of a dataset and whether it was present.
func (p *PagePayload) Raw(name DatasetName) ([]byte, bool) {
	if p == nil || p.Datasets == nil {
		return nil, false
	}
	b, ok := p.Datasets[name]
	return b, ok
}

// PageView is the engine state of one loaded page.
type PageView struct {
	ID           string                           `json:"viewId"`
	Source       string                           `json:"source"`
	LoadedAt     time.Time                        `json:"loadedAt"`
	Transactions []TransactionRecord              `json:"-"`
	Charts       map[ChartSlot]ChartSpecification `json:"charts"`
	Skipped      []ChartSlot                      `json:"skipped,omitempty"`
	Dropped      int                              `json:"droppedTransactions,omitempty"`
	Summary      Summary                          `json:"summary"`
}

// Totals are the headline figures over the whole ledger.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// Summary is the overview block shown above the charts: formatted totals and
// the newest transactions.
type Summary struct {
	Totals         Totals          `json:"totals"`
	TotalIncome    string          `json:"totalIncome"`
	TotalExpenses  string          `json:"totalExpenses"`
	CurrentBalance string          `json:"currentBalance"`
	Recent         []RowDescriptor `json:"recentTransactions"`
}

// Chart returns the specification built for a slot.
func (v *PageView) Chart(slot ChartSlot) (ChartSpecification, bool) {
	spec, ok := v.Charts[slot]
	return spec, ok
}

// PageReadyResult is returned when a page view is created.
type PageReadyResult struct {
	View *PageView       `json:"view"`
	Rows []RowDescriptor `json:"rows"`
}

// FilterResult is returned for every applied filter.
type FilterResult struct {
	ViewID   string          `json:"viewId"`
	Criteria FilterCriteria  `json:"criteria"`
	Matched  int             `json:"matched"`
	Total    int             `json:"total"`
	Rows     []RowDescriptor `json:"rows"`
}

// EngineMetrics is a snapshot of the dashboard counters.
type EngineMetrics struct {
	ViewsCreated      int64   `json:"viewsCreated"`
	FiltersApplied    int64   `json:"filtersApplied"`
	ChartsBuilt       int64   `json:"chartsBuilt"`
	EmptyCharts       int64   `json:"emptyCharts"`
	SkippedCharts     int64   `json:"skippedCharts"`
	DatasetFailures   int64   `json:"datasetFailures"`
	ViewCacheHitRate  float64 `json:"viewCacheHitRate"`
	SourceErrorsTotal int64   `json:"sourceErrors"`
}
