package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/resilience"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pngSuffix = ".png"

// chartHandler returns a chart specification as JSON, or the rendered image
// when the slot carries a ".png" suffix.
func chartHandler(svc *service.Dashboard, renderer port.ChartRenderer, renders *resilience.Bulkhead, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/views/{viewId}/charts/{slot}")
		defer span.End()

		slot := chi.URLParam(r, "slot")
		image := strings.HasSuffix(slot, pngSuffix)
		slot = strings.TrimSuffix(slot, pngSuffix)

		spec, err := svc.Chart(ctx, chi.URLParam(r, "viewId"), domain.ChartSlot(slot))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if !image {
			writeJSON(w, http.StatusOK, spec)
			return
		}
		if renderer == nil {
			writeError(w, http.StatusNotImplemented, "chart rendering not configured")
			return
		}

		if renders != nil {
			if err := renders.Acquire(ctx); err != nil {
				logger.Warn("chart render rejected", zap.String("slot", slot), zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "too many concurrent renders")
				return
			}
			defer renders.Release()
		}

		// Render into a buffer so a failure can still produce a JSON error.
		var buf bytes.Buffer
		if err := renderer.RenderChart(ctx, spec, &buf); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
