package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/config"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/handler"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/cache"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/client"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/render"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/resilience"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	currency, _ := cfg.Currency()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("page_source", cfg.PageSource),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("view_ttl", cfg.ViewTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("currency_locale", currency.Locale),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "rupeetrack-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- View store ---
	views := cache.New[*domain.PageView](cfg.ViewTTL)
	defer views.Close()

	// --- Page source ---
	var source port.PageSource
	switch cfg.PageSource {
	case config.SourceFile:
		logger.Info("reading pages from disk", zap.String("page_file", cfg.PageFile))
		source = page.NewFileSource(cfg.PageFile)
	default:
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("page-source")
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

		logger.Info("fetching pages over HTTP", zap.String("page_url", cfg.PageEndpoint()))
		source = client.NewPageClient(httpClient, cfg.PageEndpoint(), cb, resilienceCfg)
	}

	// --- Services ---
	dashboard := service.NewDashboard(source, cfg.PageSource, views, currency, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Dashboard: dashboard,
		Charts:    render.NewPNGRenderer(),
		Renders:   resilience.NewBulkhead(cfg.MaxConcurrency),
		Metrics:   metrics,
		Logger:    logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
