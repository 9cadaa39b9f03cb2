package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/adapter"
	"github.com/TCC-RagBot/RagBot-Back/internal/api"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

var logRH = logger_i.NewLogger("ResponseWriter")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

// validateContext answers 503 when the request deadline already passed.
func (h *Handler) validateContext(w http.ResponseWriter, r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.logger.FromContext(r.Context()).Warn("context error", "error", err)
		WriteRejection(w, r, http.StatusServiceUnavailable, "Requisição cancelada ou tempo limite excedido")
		return false
	}
	return true
}

func (h *Handler) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := adapter.HTTPStatus(err)
	log := h.logger.FromContext(r.Context())
	if ragErrors.IsClientFault(err) {
		log.Warn("Request rejected", "status", status, "error", err)
	} else {
		log.Error("Request failed", "status", status, "stage", ragErrors.StageOf(err), "error", err)
	}
	writeJsonResponse(w, status, adapter.ToErrorResponse(err, logger_i.TraceID(r.Context()), h.now()))
}

// WriteRejection is used by middleware for refusals outside the error
// taxonomy, such as rate limiting.
func WriteRejection(w http.ResponseWriter, r *http.Request, httpCode int, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{
		Error:     http.StatusText(httpCode),
		Detail:    message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		TraceId:   logger_i.TraceID(r.Context()),
	})
}
