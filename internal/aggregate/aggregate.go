// Package aggregate derives the four dashboard datasets from a transaction
// ledger, the way the tracker's server prepares them for a page.
package aggregate

import (
	"sort"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"

	"github.com/shopspring/decimal"
)

const (
	// MonthWindow is the number of month buckets of the monthly summary.
	MonthWindow = 12
	// DayWindow is the number of day buckets of the daily summary.
	DayWindow = 30
	// RecentCount is the number of transactions in the recent list.
	RecentCount = 5
	// DefaultCategory labels expenses recorded without a category key.
	DefaultCategory = "Other"
)

type bucket struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

func (b *bucket) add(t domain.TransactionRecord) {
	switch t.Type {
	case domain.TypeIncome:
		b.income = b.income.Add(t.Amount)
	case domain.TypeExpense:
		b.expense = b.expense.Add(t.Amount)
	}
}

// window sums transactions into a fixed, ascending set of period keys.
func window(txs []domain.TransactionRecord, keys []string, keyOf func(time.Time) string) []domain.PeriodTotals {
	buckets := make(map[string]*bucket, len(keys))
	for _, k := range keys {
		if _, ok := buckets[k]; !ok {
			buckets[k] = &bucket{}
		}
	}

	for _, t := range txs {
		if b, ok := buckets[keyOf(t.Timestamp)]; ok {
			b.add(t)
		}
	}

	sorted := make([]string, 0, len(buckets))
	for k := range buckets {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	out := make([]domain.PeriodTotals, 0, len(sorted))
	for _, k := range sorted {
		b := buckets[k]
		out = append(out, domain.PeriodTotals{
			Period:  k,
			Income:  b.income.InexactFloat64(),
			Expense: b.expense.InexactFloat64(),
		})
	}
	return out
}

// Monthly buckets the ledger into the months reached by stepping back 30 days
// at a time from now, twelve steps. Buckets are sorted ascending; two steps
// landing in the same month share one bucket.
func Monthly(txs []domain.TransactionRecord, now time.Time) domain.MonthlySummary {
	keys := make([]string, 0, MonthWindow)
	for i := 0; i < MonthWindow; i++ {
		keys = append(keys, format.MonthKey(now.AddDate(0, 0, -30*i)))
	}
	return window(txs, keys, format.MonthKey)
}

// Daily buckets the ledger into the last 30 days, today included.
func Daily(txs []domain.TransactionRecord, now time.Time) domain.DailySummary {
	keys := make([]string, 0, DayWindow)
	for i := 0; i < DayWindow; i++ {
		keys = append(keys, format.DayKey(now.AddDate(0, 0, -i)))
	}
	return window(txs, keys, format.DayKey)
}

// Breakdown sums the current month's expenses by category, in order of first
// appearance.
func Breakdown(txs []domain.TransactionRecord, now time.Time) domain.ExpenseBreakdown {
	current := format.MonthKey(now)
	sums := map[string]decimal.Decimal{}
	var order []string

	for _, t := range txs {
		if t.Type != domain.TypeExpense || format.MonthKey(t.Timestamp) != current {
			continue
		}
		cat := t.CategoryOr(DefaultCategory)
		if _, ok := sums[cat]; !ok {
			order = append(order, cat)
		}
		sums[cat] = sums[cat].Add(t.Amount)
	}

	out := make(domain.ExpenseBreakdown, 0, len(order))
	for _, cat := range order {
		out = append(out, domain.CategoryAmount{Category: cat, Amount: sums[cat].InexactFloat64()})
	}
	return out
}

// CashFlow is income minus expense per month of the monthly summary.
func CashFlow(ms domain.MonthlySummary) domain.CashFlow {
	out := make(domain.CashFlow, 0, len(ms))
	for _, m := range ms {
		net := decimal.NewFromFloat(m.Income).Sub(decimal.NewFromFloat(m.Expense))
		out = append(out, domain.PeriodValue{Period: m.Period, Value: net.InexactFloat64()})
	}
	return out
}

// Summarize computes income, expenses and balance over the whole ledger.
func Summarize(txs []domain.TransactionRecord) domain.Totals {
	var b bucket
	for _, t := range txs {
		b.add(t)
	}
	return domain.Totals{Income: b.income, Expenses: b.expense, Balance: b.income.Sub(b.expense)}
}

// NewestFirst returns a copy of the ledger sorted by descending timestamp.
// Records with equal timestamps keep their relative order.
func NewestFirst(txs []domain.TransactionRecord) []domain.TransactionRecord {
	out := append([]domain.TransactionRecord(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Recent returns the n newest records.
func Recent(txs []domain.TransactionRecord, n int) []domain.TransactionRecord {
	sorted := NewestFirst(txs)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Datasets is the full set of chart inputs derived from one ledger.
type Datasets struct {
	Monthly   domain.MonthlySummary
	Breakdown domain.ExpenseBreakdown
	CashFlow  domain.CashFlow
	Daily     domain.DailySummary
}

// Build derives every dataset at the given instant.
func Build(txs []domain.TransactionRecord, now time.Time) Datasets {
	monthly := Monthly(txs, now)
	return Datasets{
		Monthly:   monthly,
		Breakdown: Breakdown(txs, now),
		CashFlow:  CashFlow(monthly),
		Daily:     Daily(txs, now),
	}
}
