package handler

import (
	"net/http"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/observability"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequireDashboard rejects API calls when no page source was configured.
func RequireDashboard(svc *service.Dashboard, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				logger.Warn("dashboard unavailable",
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				writeError(w, http.StatusServiceUnavailable, "dashboard not configured")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestCounter counts responses by outcome.
func requestCounter(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := "success"
			if ww.Status() >= 400 {
				status = "error"
			}
			metrics.IncrRequest(status)
		})
	}
}
