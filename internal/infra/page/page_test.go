package page_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
)

const dashboardHTML = `<!DOCTYPE html>
<html><head><title>Dashboard</title></head>
<body>
  <table id="transactions-table"></table>
  <script id="transactions-data" type="application/json">
    [{"id": 1, "timestamp": "2024-03-05 09:00:00", "description": "Salary", "category": "Salary", "type": "Income", "amount": 1000},
     {"id": 2, "timestamp": "2024-04-02 18:30:00", "description": "Lunch & tea", "category": "Food", "type": "expense", "amount": "200.50"}]
  </script>
  <script id="monthly-summary-data" type="application/json">{"2024-03": {"income": 1000, "expense": 0}, "2024-04": {"income": 0, "expense": 200.5}}</script>
  <script id="expense-breakdown-data" type="application/json">{}</script>
  <script id="cash-flow-data" type="application/json">   </script>
  <script id="unrelated-data">{"x": 1}</script>
</body></html>`

func TestExtract_FindsDatasets(t *testing.T) {
	p, err := page.Extract(strings.NewReader(dashboardHTML), "dashboard.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Source != "dashboard.html" {
		t.Errorf("unexpected source %q", p.Source)
	}
	for _, name := range []domain.DatasetName{domain.DatasetTransactions, domain.DatasetMonthlySummary, domain.DatasetExpenseBreakdown} {
		if _, ok := p.Raw(name); !ok {
			t.Errorf("expected dataset %s", name)
		}
	}
	if _, ok := p.Raw(domain.DatasetCashFlow); ok {
		t.Error("blank dataset must be reported absent")
	}
	if _, ok := p.Raw(domain.DatasetDailySummary); ok {
		t.Error("missing dataset must be reported absent")
	}
	if len(p.Datasets) != 3 {
		t.Errorf("expected 3 datasets, got %d", len(p.Datasets))
	}

	raw, _ := p.Raw(domain.DatasetTransactions)
	txs, dropped, err := domain.DecodeTransactions(raw)
	if err != nil || dropped != 0 {
		t.Fatalf("decode: %v (dropped %d)", err, dropped)
	}
	if len(txs) != 2 || txs[0].Type != domain.TypeIncome || txs[1].Description != "Lunch & tea" {
		t.Errorf("unexpected transactions %+v", txs)
	}
}

func TestExtract_MonthlyKeepsOrder(t *testing.T) {
	p, err := page.Extract(strings.NewReader(dashboardHTML), "dashboard.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := p.Raw(domain.DatasetMonthlySummary)

	var ms domain.MonthlySummary
	if err := json.Unmarshal(raw, &ms); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ms) != 2 || ms[0].Period != "2024-03" || ms[1].Expense != 200.5 {
		t.Errorf("unexpected summary %+v", ms)
	}
}

func TestFromLedger_DerivesDatasets(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := `[
		{"id": "a", "timestamp": "2024-03-01 10:00:00", "category": "Food", "type": "expense", "amount": 120},
		{"id": "b", "timestamp": "2024-03-10 10:00:00", "category": "Salary", "type": "income", "amount": 5000},
		{"id": "c", "timestamp": "not a date", "type": "expense", "amount": 1}
	]`

	p, err := page.FromLedger([]byte(ledger), "ledger.json", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Dropped != 1 {
		t.Errorf("expected 1 dropped record, got %d", p.Dropped)
	}
	for _, name := range []domain.DatasetName{
		domain.DatasetTransactions, domain.DatasetMonthlySummary, domain.DatasetExpenseBreakdown,
		domain.DatasetCashFlow, domain.DatasetDailySummary,
	} {
		if _, ok := p.Raw(name); !ok {
			t.Errorf("expected dataset %s", name)
		}
	}

	raw, _ := p.Raw(domain.DatasetTransactions)
	txs, _, err := domain.DecodeTransactions(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "b" {
		t.Errorf("expected newest first, got %+v", txs)
	}

	raw, _ = p.Raw(domain.DatasetExpenseBreakdown)
	var eb domain.ExpenseBreakdown
	if err := json.Unmarshal(raw, &eb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(eb) != 1 || eb[0].Category != "Food" || eb[0].Amount != 120 {
		t.Errorf("unexpected breakdown %+v", eb)
	}
}

func TestFromLedger_BreakdownFollowsLedgerOrder(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := `[
		{"id": 1, "timestamp": "2024-03-02 10:00:00", "category": "Food", "type": "expense", "amount": 10},
		{"id": 2, "timestamp": "2024-03-09 10:00:00", "category": "Bills", "type": "expense", "amount": 20}
	]`

	p, err := page.FromLedger([]byte(ledger), "ledger.json", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := p.Raw(domain.DatasetExpenseBreakdown)
	if string(raw) != `{"Food":10,"Bills":20}` {
		t.Errorf("expected ledger order, got %s", raw)
	}

	raw, _ = p.Raw(domain.DatasetTransactions)
	txs, _, _ := domain.DecodeTransactions(raw)
	if len(txs) != 2 || txs[0].ID != "2" {
		t.Errorf("table must still be newest first, got %+v", txs)
	}
}

func TestFromLedger_RejectsNonArray(t *testing.T) {
	_, err := page.FromLedger([]byte(`{"transactions": []}`), "bad.json", time.Now())
	var perr *domain.ErrPayload
	if !errors.As(err, &perr) {
		t.Fatalf("expected ErrPayload, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "dashboard.html")
	if err := os.WriteFile(htmlPath, []byte(dashboardHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "ledger.JSON")
	if err := os.WriteFile(jsonPath, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := page.NewFileSource(htmlPath).FetchPage(context.Background())
	if err != nil {
		t.Fatalf("html: unexpected error: %v", err)
	}
	if len(p.Datasets) != 3 {
		t.Errorf("html: expected 3 datasets, got %d", len(p.Datasets))
	}

	p, err = page.NewFileSource(jsonPath).FetchPage(context.Background())
	if err != nil {
		t.Fatalf("json: unexpected error: %v", err)
	}
	if raw, _ := p.Raw(domain.DatasetTransactions); string(raw) != "[]" {
		t.Errorf("json: expected empty list, got %s", raw)
	}

	_, err = page.NewFileSource(filepath.Join(dir, "missing.html")).FetchPage(context.Background())
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
