package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/engine"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/render"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxPageBody = 8 << 20

// createViewHandler loads a page into a new view. With an empty body the
// configured page source is used; an HTML page or a JSON ledger may also be
// posted directly.
func createViewHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/views")
		defer span.End()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPageBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("posted page too large", zap.Int64("limit", tooLarge.Limit))
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("page exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var result *domain.PageReadyResult
		if len(body) == 0 {
			result, err = svc.OnPageReady(ctx)
		} else {
			payload, perr := postedPayload(r.Header.Get("Content-Type"), body)
			if perr != nil {
				logger.Debug("rejected posted page", zap.Error(perr))
				writeError(w, http.StatusBadRequest, perr.Error())
				return
			}
			result, err = svc.OnPagePayload(ctx, payload)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}

func postedPayload(contentType string, body []byte) (*domain.PagePayload, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json":
		return page.FromLedger(body, "request", time.Now())
	case "text/html", "":
		return page.Extract(bytes.NewReader(body), "request")
	}
	return nil, &domain.ErrValidation{Field: "Content-Type", Message: "expected text/html or application/json"}
}

func getViewHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/views/{viewId}")
		defer span.End()

		view, err := svc.View(ctx, chi.URLParam(r, "viewId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.PageReadyResult{
			View: view,
			Rows: engine.RenderWith(svc.Currency(), view.Transactions),
		})
	}
}

// applyFiltersHandler accepts the criteria as a JSON body. An empty body
// resets the table to the full list.
func applyFiltersHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/views/{viewId}/filters")
		defer span.End()

		var criteria domain.FilterCriteria
		if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.OnApplyFilters(ctx, chi.URLParam(r, "viewId"), criteria)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// tableHandler renders the filtered table as text. Criteria come from the
// query string; format is text (default) or markdown.
func tableHandler(svc *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/views/{viewId}/table")
		defer span.End()

		format := r.URL.Query().Get("format")
		if format == "" {
			format = render.FormatText
		}
		tw, err := render.NewTableWriter(format)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.OnApplyFilters(ctx, chi.URLParam(r, "viewId"), criteriaFromQuery(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		contentType := "text/plain; charset=utf-8"
		if format == render.FormatMarkdown {
			contentType = "text/markdown; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if err := tw.RenderTable(result.Rows, w); err != nil {
			logger.Error("table render failed", zap.Error(err))
		}
	}
}
