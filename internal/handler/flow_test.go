package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/handler"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/cache"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/render"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/resilience"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"go.uber.org/zap"
)

const flowPage = `<html><body>
<script id="transactions-data" type="application/json">[
  {"id": 7, "timestamp": "2024-03-05 09:00:00", "description": "Salary", "category": "Salary", "type": "income", "amount": 250000},
  {"id": 8, "timestamp": "2024-04-02 18:30:00", "description": "Dinner", "category": "Food", "type": "expense", "amount": 200}
]</script>
<script id="monthly-summary-data" type="application/json">{"2024-03": {"income": 250000, "expense": 0}, "2024-04": {"income": 0, "expense": 200}}</script>
<script id="expense-breakdown-data" type="application/json">{"Food": 200}</script>
<script id="cash-flow-data" type="application/json">{"2024-03": 250000, "2024-04": -200}</script>
<script id="daily-summary-data" type="application/json">{}</script>
</body></html>`

type readyResponse struct {
	View struct {
		ID      string             `json:"viewId"`
		Skipped []domain.ChartSlot `json:"skipped"`
		Summary struct {
			CurrentBalance string                 `json:"currentBalance"`
			Recent         []domain.RowDescriptor `json:"recentTransactions"`
		} `json:"summary"`
	} `json:"view"`
	Rows []domain.RowDescriptor `json:"rows"`
}

func newFlowRouter(t *testing.T) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dashboard.html")
	if err := os.WriteFile(path, []byte(flowPage), 0o600); err != nil {
		t.Fatalf("write page: %v", err)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	views := cache.New[*domain.PageView](5 * time.Minute)
	t.Cleanup(views.Close)

	svc := service.NewDashboard(page.NewFileSource(path), "file", views, format.DefaultCurrency, metrics, logger)

	return handler.NewRouter(handler.Deps{
		Dashboard: svc,
		Charts:    render.NewPNGRenderer(),
		Renders:   resilience.NewBulkhead(2),
		Metrics:   metrics,
		Logger:    logger,
	})
}

func do(router http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createView(t *testing.T, router http.Handler) readyResponse {
	t.Helper()

	rec := do(router, http.MethodPost, "/v1/views", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var ready readyResponse
	if err := json.NewDecoder(rec.Body).Decode(&ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ready
}

func TestFlow_PageReadyAndFilter(t *testing.T) {
	router := newFlowRouter(t)
	ready := createView(t, router)

	if ready.View.ID == "" {
		t.Fatal("expected a view id")
	}
	if len(ready.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ready.Rows))
	}
	if ready.Rows[0].Amount != "₹2,50,000.00" {
		t.Errorf("unexpected amount %q", ready.Rows[0].Amount)
	}
	if ready.View.Summary.CurrentBalance != "₹2,49,800.00" {
		t.Errorf("unexpected balance %q", ready.View.Summary.CurrentBalance)
	}
	if len(ready.View.Summary.Recent) != 2 || ready.View.Summary.Recent[0].ID != "8" {
		t.Errorf("unexpected recent rows %+v", ready.View.Summary.Recent)
	}

	body, _ := json.Marshal(domain.FilterCriteria{Month: "4", Type: "expense"})
	rec := do(router, http.MethodPost, "/v1/views/"+ready.View.ID+"/filters", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.FilterResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Matched != 1 || result.Total != 2 || result.Rows[0].ID != "8" {
		t.Errorf("unexpected filter result %+v", result)
	}

	// Empty body resets the table.
	rec = do(router, http.MethodPost, "/v1/views/"+ready.View.ID+"/filters", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on reset, got %d", rec.Code)
	}
}

func TestFlow_Table(t *testing.T) {
	router := newFlowRouter(t)
	ready := createView(t, router)

	rec := do(router, http.MethodGet, "/v1/views/"+ready.View.ID+"/table?format=markdown&type=income", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Salary") || strings.Contains(out, "Dinner") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}

	rec = do(router, http.MethodGet, "/v1/views/"+ready.View.ID+"/table?start_date=2025-01-01", nil, "")
	if !strings.Contains(rec.Body.String(), "No transactions found.") {
		t.Errorf("expected sentinel message, got:\n%s", rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/v1/views/"+ready.View.ID+"/table?format=csv", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestFlow_Charts(t *testing.T) {
	router := newFlowRouter(t)
	ready := createView(t, router)
	base := "/v1/views/" + ready.View.ID + "/charts/"

	rec := do(router, http.MethodGet, base+"cashFlowChart", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var spec map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["title"] != "Monthly Cash Flow" {
		t.Errorf("unexpected title %v", spec["title"])
	}

	rec = do(router, http.MethodGet, base+"expenseBreakdownChart.png", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG image")
	}

	rec = do(router, http.MethodGet, base+"dailyIncomeExpenseChart.png", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for empty chart, got %d", rec.Code)
	}

	rec = do(router, http.MethodGet, base+"pieChart", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown slot, got %d", rec.Code)
	}
}

func TestFlow_UnknownView(t *testing.T) {
	router := newFlowRouter(t)

	rec := do(router, http.MethodGet, "/v1/views/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestFlow_PostedLedger(t *testing.T) {
	router := newFlowRouter(t)

	ledger := []byte(`[{"id": 1, "timestamp": "2024-03-05 09:00:00", "description": "Rent", "category": "Housing", "type": "expense", "amount": 15000}]`)
	rec := do(router, http.MethodPost, "/v1/views", ledger, "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var ready readyResponse
	if err := json.NewDecoder(rec.Body).Decode(&ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ready.Rows) != 1 || ready.Rows[0].Description != "Rent" {
		t.Errorf("unexpected rows %+v", ready.Rows)
	}

	rec = do(router, http.MethodPost, "/v1/views", []byte(`{"not": "a ledger"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-array ledger, got %d", rec.Code)
	}
}

func TestFlow_OversizedPageRejected(t *testing.T) {
	router := newFlowRouter(t)

	body := append([]byte(`<html><body><script id="transactions-data">[`), bytes.Repeat([]byte(" "), 8<<20)...)
	body = append(body, []byte(`]</script></body></html>`)...)

	rec := do(router, http.MethodPost, "/v1/views", body, "text/html")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}
