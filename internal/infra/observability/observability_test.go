package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrViewCreated()
	m.IncrViewCreated()
	m.RecordChart(domain.SlotIncomeExpense, observability.ChartBuilt)
	m.RecordChart(domain.SlotCashFlow, observability.ChartEmpty)
	m.RecordChart(domain.SlotDailyIncomeExpense, observability.ChartSkipped)
	m.IncrDatasetFailure(domain.DatasetDailySummary)
	m.RecordFilter(3)
	m.RecordFilter(0)
	m.IncrCacheHit(observability.ViewCache)
	m.IncrCacheHit(observability.ViewCache)
	m.IncrCacheHit(observability.ViewCache)
	m.IncrCacheMiss(observability.ViewCache)
	m.IncrSourceError("http")

	s := m.Snapshot()
	if s.ViewsCreated != 2 {
		t.Errorf("expected 2 views, got %d", s.ViewsCreated)
	}
	if s.ChartsBuilt != 2 || s.EmptyCharts != 1 || s.SkippedCharts != 1 {
		t.Errorf("unexpected chart counters %+v", s)
	}
	if s.DatasetFailures != 1 {
		t.Errorf("expected 1 dataset failure, got %d", s.DatasetFailures)
	}
	if s.FiltersApplied != 2 {
		t.Errorf("expected 2 filters, got %d", s.FiltersApplied)
	}
	if s.ViewCacheHitRate != 0.75 {
		t.Errorf("expected hit rate 0.75, got %v", s.ViewCacheHitRate)
	}
	if s.SourceErrorsTotal != 1 {
		t.Errorf("expected 1 source error, got %d", s.SourceErrorsTotal)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.IncrViewCreated()

	if b.Snapshot().ViewsCreated != 0 {
		t.Fatal("metrics instances must not share counters")
	}
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer("", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestZapLoggerMiddleware_PassesThrough(t *testing.T) {
	h := observability.ZapLoggerMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}

func TestZapLoggerMiddleware_LogsViewRoute(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(observability.ZapLoggerMiddleware(zap.New(core)))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/views/{viewId}/charts/{slot}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/views/abc/charts/pieChart", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("expected warn for 404, got %s", e.Level)
	}
	fields := e.ContextMap()
	if fields["view_id"] != "abc" || fields["chart_slot"] != "pieChart" {
		t.Errorf("expected view fields, got %v", fields)
	}
	if fields["route"] != "/v1/views/{viewId}/charts/{slot}" {
		t.Errorf("unexpected route %v", fields["route"])
	}
}

func TestZapLoggerMiddleware_NoRouteFieldsOutsideChi(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := observability.ZapLoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	if len(logs.All()) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs.All()))
	}
	if _, ok := logs.All()[0].ContextMap()["view_id"]; ok {
		t.Error("view_id must be absent without a routed view")
	}
}
