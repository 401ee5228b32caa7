// Command rupeectl loads a dashboard page or ledger from disk, prints the
// filtered transaction table and optionally renders the charts to PNG files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/config"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/cache"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/render"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"go.uber.org/zap"
)

// Command line flags
var (
	pagePath  = flag.String("page", "", "Dashboard HTML page or JSON ledger to load")
	month     = flag.String("month", "", "Month filter (01-12)")
	txType    = flag.String("type", "", "Type filter: income, expense")
	startDate = flag.String("start-date", "", "Start date filter (YYYY-MM-DD)")
	endDate   = flag.String("end-date", "", "End date filter (YYYY-MM-DD)")
	format    = flag.String("format", render.FormatText, "Output format: text, markdown, json")
	chartsDir = flag.String("charts", "", "Directory to write chart PNGs to")
	logLevel  = flag.String("log-level", "warn", "Log level")
)

func main() {
	flag.Parse()

	logger := observability.NewLogger(*logLevel)
	defer logger.Sync()

	if *pagePath == "" {
		logger.Fatal("page is required; use -page to name an HTML page or JSON ledger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("rupeectl failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()
	currency, err := cfg.Currency()
	if err != nil {
		return err
	}

	views := cache.New[*domain.PageView](time.Hour)
	defer views.Close()

	dashboard := service.NewDashboard(page.NewFileSource(*pagePath), config.SourceFile, views, currency, observability.NewMetrics(), logger)

	ready, err := dashboard.OnPageReady(ctx)
	if err != nil {
		return err
	}

	criteria := domain.FilterCriteria{Month: *month, Type: *txType, StartDate: *startDate, EndDate: *endDate}
	result, err := dashboard.OnApplyFilters(ctx, ready.View.ID, criteria)
	if err != nil {
		return err
	}

	if err := printTable(result); err != nil {
		return err
	}
	sum := ready.View.Summary
	fmt.Fprintf(os.Stderr, "income %s  expenses %s  balance %s\n", sum.TotalIncome, sum.TotalExpenses, sum.CurrentBalance)

	if *chartsDir == "" {
		return nil
	}
	exported, err := render.ExportCharts(ctx, render.NewPNGRenderer(), ready.View.Charts, *chartsDir, cfg.MaxConcurrency)
	if err != nil {
		return err
	}
	for _, f := range exported.Files {
		fmt.Fprintf(os.Stderr, "wrote %s\n", f)
	}
	for _, slot := range exported.Empty {
		fmt.Fprintf(os.Stderr, "%s: %s\n", slot, ready.View.Charts[slot].EmptyMessage)
	}
	for _, slot := range ready.View.Skipped {
		fmt.Fprintf(os.Stderr, "%s: no data on page\n", slot)
	}
	return nil
}

func printTable(result *domain.FilterResult) error {
	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw, err := render.NewTableWriter(*format)
	if err != nil {
		return err
	}
	if err := tw.RenderTable(result.Rows, os.Stdout); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d of %d transactions\n", result.Matched, result.Total)
	return nil
}
