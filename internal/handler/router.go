package handler

import (
	"net/http"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/resilience"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps are the collaborators of the HTTP layer. A nil Dashboard leaves only
// the operational endpoints working.
type Deps struct {
	Dashboard *service.Dashboard
	Charts    port.ChartRenderer
	// Renders bounds concurrent PNG rendering.
	Renders *resilience.Bulkhead
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(requestCounter(d.Metrics))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/dashboard", dashboardMetricsHandler(d.Metrics))

		r.Group(func(r chi.Router) {
			r.Use(RequireDashboard(d.Dashboard, logger))

			// Page views
			r.Post("/views", createViewHandler(d.Dashboard, logger))
			r.Get("/views/{viewId}", getViewHandler(d.Dashboard, logger))

			// Filtering
			r.Post("/views/{viewId}/filters", applyFiltersHandler(d.Dashboard, logger))
			r.Get("/views/{viewId}/table", tableHandler(d.Dashboard, logger))

			// Charts; "{slot}.png" renders the image.
			r.Get("/views/{viewId}/charts/{slot}", chartHandler(d.Dashboard, d.Charts, d.Renders, logger))
		})
	})

	return r
}

func healthzHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ComponentHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}

		overall := "healthy"
		if d.Dashboard == nil {
			services = append(services, domain.ComponentHealth{
				Name: "dashboard", Status: "degraded", Detail: "no page source configured", LastChecked: now,
			})
			overall = "degraded"
		}
		if d.Renders != nil && d.Renders.InUse() > 0 {
			services = append(services, domain.ComponentHealth{
				Name: "chart-renderer", Status: "healthy", Detail: "rendering", LastChecked: now,
			})
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func dashboardMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
