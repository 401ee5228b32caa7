package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/engine"

	"github.com/shopspring/decimal"
)

func tx(id string, ts string, typ domain.TransactionType, amount int64) domain.TransactionRecord {
	t, err := domain.ParseTimestamp(ts)
	if err != nil {
		panic(err)
	}
	return domain.TransactionRecord{
		ID:          id,
		Timestamp:   t,
		Description: "desc " + id,
		Category:    "General",
		Type:        typ,
		Amount:      decimal.NewFromInt(amount),
	}
}

func sampleLedger() []domain.TransactionRecord {
	return []domain.TransactionRecord{
		tx("1", "2024-03-05 09:00:00", domain.TypeIncome, 1000),
		tx("2", "2024-04-02 18:30:00", domain.TypeExpense, 200),
		tx("3", "2024-03-20 12:00:00", domain.TypeExpense, 50),
		tx("4", "2024-03-31 23:59:59", domain.TypeIncome, 75),
		tx("5", "2023-03-10 08:00:00", domain.TypeExpense, 10),
	}
}

func ids(records []domain.TransactionRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyFilter_IdentityWhenUnfiltered(t *testing.T) {
	ledger := sampleLedger()
	got := engine.ApplyFilter(ledger, domain.FilterCriteria{})
	if !reflect.DeepEqual(ids(got), ids(ledger)) {
		t.Fatalf("expected identity, got %v", ids(got))
	}
}

func TestApplyFilter_NilListIsEmpty(t *testing.T) {
	got := engine.ApplyFilter(nil, domain.FilterCriteria{Month: "03"})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestApplyFilter_MonthScenario(t *testing.T) {
	ledger := []domain.TransactionRecord{
		tx("1", "2024-03-05", domain.TypeIncome, 1000),
		tx("2", "2024-04-02", domain.TypeExpense, 200),
	}

	got := engine.ApplyFilter(ledger, domain.FilterCriteria{Month: "03"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected only id 1, got %v", ids(got))
	}

	rows := engine.Render(got)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Sentinel || rows[0].ID != "1" {
		t.Errorf("expected row for id 1, got %+v", rows[0])
	}
}

func TestApplyFilter_Criteria(t *testing.T) {
	cases := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string
	}{
		{"month crosses years", domain.FilterCriteria{Month: "03"}, []string{"1", "3", "4", "5"}},
		{"unpadded month", domain.FilterCriteria{Month: "3"}, []string{"1", "3", "4", "5"}},
		{"type", domain.FilterCriteria{Type: "expense"}, []string{"2", "3", "5"}},
		{"type case-insensitive", domain.FilterCriteria{Type: "INCOME"}, []string{"1", "4"}},
		{"start inclusive", domain.FilterCriteria{StartDate: "2024-03-20"}, []string{"2", "3", "4"}},
		{"end includes whole day", domain.FilterCriteria{EndDate: "2024-03-31"}, []string{"1", "3", "4", "5"}},
		{"range", domain.FilterCriteria{StartDate: "2024-03-01", EndDate: "2024-03-31"}, []string{"1", "3", "4"}},
		{"conjunction", domain.FilterCriteria{Month: "03", Type: "income", StartDate: "2024-01-01"}, []string{"1", "4"}},
		{"malformed start fails open", domain.FilterCriteria{StartDate: "05/03/2024"}, []string{"1", "2", "3", "4", "5"}},
		{"malformed end fails open", domain.FilterCriteria{EndDate: "soon", Type: "income"}, []string{"1", "4"}},
		{"no match", domain.FilterCriteria{Month: "12"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(engine.ApplyFilter(sampleLedger(), tc.criteria))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestApplyFilter_Idempotent(t *testing.T) {
	criteria := []domain.FilterCriteria{
		{},
		{Month: "03"},
		{Type: "expense", EndDate: "2024-03-31"},
		{StartDate: "2024-03-10", EndDate: "bad"},
	}
	for _, c := range criteria {
		once := engine.ApplyFilter(sampleLedger(), c)
		twice := engine.ApplyFilter(once, c)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Errorf("criteria %+v: not idempotent, %v then %v", c, ids(once), ids(twice))
		}
	}
}

func TestApplyFilter_PreservesOrder(t *testing.T) {
	ledger := sampleLedger()
	got := engine.ApplyFilter(ledger, domain.FilterCriteria{Type: "expense"})

	pos := make(map[string]int, len(ledger))
	for i, r := range ledger {
		pos[r.ID] = i
	}
	for i := 1; i < len(got); i++ {
		if pos[got[i-1].ID] >= pos[got[i].ID] {
			t.Fatalf("order not preserved: %v", ids(got))
		}
	}
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	ledger := sampleLedger()
	before := ids(ledger)
	_ = engine.ApplyFilter(ledger, domain.FilterCriteria{Type: "income"})
	if !reflect.DeepEqual(before, ids(ledger)) {
		t.Fatal("input list was modified")
	}
}

func TestApplyFilter_ZonedTimestampUsesWallClockDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	rec := domain.TransactionRecord{ID: "z", Type: domain.TypeIncome, Timestamp: time.Date(2024, 3, 31, 23, 0, 0, 0, loc)}

	got := engine.ApplyFilter([]domain.TransactionRecord{rec}, domain.FilterCriteria{EndDate: "2024-03-31"})
	if len(got) != 1 {
		t.Fatalf("expected record on its local day to match, got %d", len(got))
	}
}
