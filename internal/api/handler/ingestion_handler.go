package handler

import (
	"log/slog"
	"net/http"
	"time"

	"credit-engine/internal/api/handler/dto"
)

// IngestionStarter is the subset of the ingestion job the API needs.
type IngestionStarter interface {
	Start(timeout time.Duration) (string, error)
}

type IngestionHandler struct {
	job     IngestionStarter
	timeout time.Duration
	logger  *slog.Logger
}

func NewIngestionHandler(job IngestionStarter, timeout time.Duration, l *slog.Logger) *IngestionHandler {
	if job == nil {
		panic("ingestion job cannot be nil")
	}
	return &IngestionHandler{
		job:     job,
		timeout: timeout,
		logger:  l.With("component", "IngestionHandler"),
	}
}

// TriggerIngestion handles POST /admin/ingest
// @Summary Trigger a bulk data ingestion run
// @Description Starts a background run that loads customer and loan spreadsheets and reconciles cached debts. Only one run may be in flight.
// @Tags Admin
// @Produce json
// @Success 202 {object} dto.IngestionStartedResponse "Run accepted"
// @Failure 409 {object} dto.ErrorResponse "A run is already in progress"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/ingest [post]
// @Security BearerAuth
func (h *IngestionHandler) TriggerIngestion(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Received ingestion trigger request")

	runID, err := h.job.Start(h.timeout)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to start ingestion run", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Ingestion run accepted", slog.String("runID", runID))
	respondJSON(w, http.StatusAccepted, dto.IngestionStartedResponse{
		RunID:  runID,
		Status: "accepted",
	})
}
