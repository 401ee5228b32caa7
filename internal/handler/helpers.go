package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// criteriaFromQuery reads filter criteria from query parameters. Both the
// camelCase names and the form names of the tracker are accepted.
func criteriaFromQuery(r *http.Request) domain.FilterCriteria {
	q := r.URL.Query()
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := q.Get(k); v != "" {
				return v
			}
		}
		return ""
	}
	return domain.FilterCriteria{
		Month:     first("month", "filter_month"),
		Type:      first("type", "filter_type"),
		StartDate: first("startDate", "start_date"),
		EndDate:   first("endDate", "end_date"),
	}
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var emptyChart *domain.ErrEmptyChart
	var payload *domain.ErrPayload
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &emptyChart):
		logger.Debug("empty chart", zap.String("slot", string(emptyChart.Slot)))
		writeError(w, http.StatusUnprocessableEntity, emptyChart.Message)
	case errors.As(err, &payload):
		logger.Warn("undecodable page payload", zap.String("dataset", string(payload.Dataset)), zap.Error(payload.Err))
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &external):
		logger.Error("page source failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
