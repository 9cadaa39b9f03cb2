package handlers

import (
	"net/http"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/api"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
)

// HealthHandler godoc
// @Summary      Health check
// @Description  healthy when the database and the vector index answer, degraded when one of them does not, unhealthy when neither does.
// @Tags         Sistema
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db := statusOf(h.services.Database != nil && h.services.Database.TestConnection(ctx))
	index := statusOf(h.services.VectorIndex != nil && h.services.VectorIndex.TestConnection(ctx))

	overall := api.Degraded
	switch {
	case db == api.Healthy && index == api.Healthy:
		overall = api.Healthy
	case db == api.Unhealthy && index == api.Unhealthy:
		overall = api.Unhealthy
	}
	if overall != api.Healthy {
		h.logger.FromContext(ctx).Warn("Health check failing", "database", db, "vectorIndex", index)
	}

	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:            overall,
		Timestamp:         h.now().UTC().Format(time.RFC3339),
		Version:           config.AppVersion,
		DatabaseStatus:    db,
		VectorIndexStatus: index,
	})
}

func statusOf(ok bool) api.HealthStatus {
	if ok {
		return api.Healthy
	}
	return api.Unhealthy
}
