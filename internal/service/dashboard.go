package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/aggregate"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/engine"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/dashboard")

// Dashboard hosts the filter and chart engine for page views. It is the only
// place where the engine meets I/O: page sources, the view store, metrics.
type Dashboard struct {
	source     port.PageSource
	sourceKind string
	views      port.Cache[*domain.PageView]
	adapter    engine.ChartAdapter
	currency   format.Currency
	metrics    *observability.Metrics
	logger     *zap.Logger

	newID func() string
	now   func() time.Time
}

// NewDashboard creates the dashboard service with all dependencies injected.
// sourceKind labels page-source errors in metrics ("http" or "file").
func NewDashboard(
	source port.PageSource,
	sourceKind string,
	views port.Cache[*domain.PageView],
	currency format.Currency,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Dashboard {
	return &Dashboard{
		source:     source,
		sourceKind: sourceKind,
		views:      views,
		adapter:    engine.NewChartAdapter(currency),
		currency:   currency,
		metrics:    metrics,
		logger:     logger,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Currency returns the formatting rule applied to tables and chart axes.
func (d *Dashboard) Currency() format.Currency {
	return d.currency
}

// OnPageReady loads a page, builds its charts, and stores the resulting view.
// The rows returned are the unfiltered table.
func (d *Dashboard) OnPageReady(ctx context.Context) (*domain.PageReadyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Dashboard.OnPageReady")
	defer span.End()

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("page_ready", time.Since(start))
	}()

	payload, err := d.source.FetchPage(ctx)
	if err != nil {
		d.logger.Error("failed to fetch page", zap.String("source", d.sourceKind), zap.Error(err))
		d.metrics.IncrSourceError(d.sourceKind)
		span.RecordError(err)
		return nil, fmt.Errorf("page fetch: %w", err)
	}

	return d.OnPagePayload(ctx, payload)
}

// OnPagePayload builds and stores a view from a payload that was delivered
// with the request instead of fetched from the configured source.
func (d *Dashboard) OnPagePayload(ctx context.Context, payload *domain.PagePayload) (*domain.PageReadyResult, error) {
	span := trace.SpanFromContext(ctx)

	view, err := d.Load(ctx, payload)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("view.id", view.ID),
		attribute.Int("view.transactions", len(view.Transactions)),
		attribute.Int("view.skipped", len(view.Skipped)),
	)

	return &domain.PageReadyResult{
		View: view,
		Rows: engine.RenderWith(d.currency, view.Transactions),
	}, nil
}

// Load turns a fetched payload into a stored page view. The table and each
// chart are independent units of failure: a bad payload only empties or skips
// its own region.
func (d *Dashboard) Load(ctx context.Context, payload *domain.PagePayload) (*domain.PageView, error) {
	var (
		txs     []domain.TransactionRecord
		dropped int
		charts  engine.ChartSet
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		txs, dropped = d.loadTransactions(payload)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		charts = d.adapter.BuildAll(payload)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading page view: %w", err)
	}

	d.recordCharts(charts)

	view := &domain.PageView{
		ID:           d.newID(),
		Source:       payload.Source,
		LoadedAt:     d.now(),
		Transactions: txs,
		Charts:       charts.Charts,
		Skipped:      charts.Skipped,
		Dropped:      dropped + payload.Dropped,
		Summary:      d.summarize(txs),
	}
	d.views.Set(view.ID, view)
	d.metrics.IncrViewCreated()

	d.logger.Info("page view loaded",
		zap.String("view_id", view.ID),
		zap.String("source", view.Source),
		zap.Int("transactions", len(txs)),
		zap.Int("dropped", view.Dropped),
		zap.Int("charts", len(view.Charts)),
	)
	return view, nil
}

// loadTransactions decodes the transaction list. An absent or undecodable
// list is an empty table, never an error.
func (d *Dashboard) loadTransactions(payload *domain.PagePayload) ([]domain.TransactionRecord, int) {
	raw, ok := payload.Raw(domain.DatasetTransactions)
	if !ok {
		d.logger.Warn("transaction list missing from page", zap.String("dataset", string(domain.DatasetTransactions)))
		return []domain.TransactionRecord{}, 0
	}

	txs, dropped, err := domain.DecodeTransactions(raw)
	if err != nil {
		d.logger.Warn("transaction list could not be decoded",
			zap.String("dataset", string(domain.DatasetTransactions)),
			zap.Error(err),
		)
		d.metrics.IncrDatasetFailure(domain.DatasetTransactions)
		return []domain.TransactionRecord{}, 0
	}
	if dropped > 0 {
		d.logger.Warn("malformed transactions dropped", zap.Int("dropped", dropped))
	}
	return txs, dropped
}

// summarize computes the totals and the recent list of a view.
func (d *Dashboard) summarize(txs []domain.TransactionRecord) domain.Summary {
	totals := aggregate.Summarize(txs)

	recent := []domain.RowDescriptor{}
	if newest := aggregate.Recent(txs, aggregate.RecentCount); len(newest) > 0 {
		recent = engine.RenderWith(d.currency, newest)
	}

	return domain.Summary{
		Totals:         totals,
		TotalIncome:    d.currency.FormatAmount(totals.Income),
		TotalExpenses:  d.currency.FormatAmount(totals.Expenses),
		CurrentBalance: d.currency.FormatAmount(totals.Balance),
		Recent:         recent,
	}
}

func (d *Dashboard) recordCharts(set engine.ChartSet) {
	for _, err := range set.Failures {
		var perr *domain.ErrPayload
		if errors.As(err, &perr) {
			d.metrics.IncrDatasetFailure(perr.Dataset)
			d.logger.Warn("dataset could not be decoded",
				zap.String("dataset", string(perr.Dataset)),
				zap.Error(perr.Err),
			)
		}
	}
	for _, slot := range set.Skipped {
		d.metrics.RecordChart(slot, observability.ChartSkipped)
		d.logger.Warn("chart skipped", zap.String("slot", string(slot)))
	}
	for slot, spec := range set.Charts {
		state := observability.ChartBuilt
		if spec.Empty {
			state = observability.ChartEmpty
		}
		d.metrics.RecordChart(slot, state)
	}
}

// OnApplyFilters recomputes the table of a view from its full transaction
// list.
func (d *Dashboard) OnApplyFilters(ctx context.Context, viewID string, criteria domain.FilterCriteria) (*domain.FilterResult, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.OnApplyFilters")
	defer span.End()
	span.SetAttributes(attribute.String("view.id", viewID))

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("apply_filters", time.Since(start))
	}()

	view, err := d.View(ctx, viewID)
	if err != nil {
		return nil, err
	}

	filtered := engine.ApplyFilter(view.Transactions, criteria)
	d.metrics.RecordFilter(len(filtered))

	return &domain.FilterResult{
		ViewID:   view.ID,
		Criteria: criteria,
		Matched:  len(filtered),
		Total:    len(view.Transactions),
		Rows:     engine.RenderWith(d.currency, filtered),
	}, nil
}

// View returns a stored page view.
func (d *Dashboard) View(ctx context.Context, viewID string) (*domain.PageView, error) {
	_, span := tracer.Start(ctx, "Dashboard.View")
	defer span.End()

	if view, ok := d.views.Get(viewID); ok {
		d.metrics.IncrCacheHit(observability.ViewCache)
		return view, nil
	}
	d.metrics.IncrCacheMiss(observability.ViewCache)
	return nil, &domain.ErrNotFound{Resource: "view", ID: viewID}
}

// Chart returns the specification of one chart slot of a view.
func (d *Dashboard) Chart(ctx context.Context, viewID string, slot domain.ChartSlot) (domain.ChartSpecification, error) {
	if !knownSlot(slot) {
		return domain.ChartSpecification{}, &domain.ErrValidation{Field: "slot", Message: fmt.Sprintf("unknown chart slot %q", slot)}
	}

	view, err := d.View(ctx, viewID)
	if err != nil {
		return domain.ChartSpecification{}, err
	}
	spec, ok := view.Chart(slot)
	if !ok {
		return domain.ChartSpecification{}, &domain.ErrNotFound{Resource: "chart", ID: string(slot)}
	}
	return spec, nil
}

func knownSlot(slot domain.ChartSlot) bool {
	for _, s := range domain.ChartSlots {
		if s == slot {
			return true
		}
	}
	return false
}
