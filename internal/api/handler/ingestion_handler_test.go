package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestTriggerIngestion(t *testing.T) {
	t.Run("should accept the run and return its ID", func(t *testing.T) {
		job := new(mockIngestionJob)
		h := NewIngestionHandler(job, time.Hour, testLogger)
		job.On("Start", time.Hour).Return("run-123", nil)

		rr := httptest.NewRecorder()
		h.TriggerIngestion(rr, httptest.NewRequest(http.MethodPost, "/admin/ingest", nil))

		assert.Equal(t, http.StatusAccepted, rr.Code)
		var resp dto.IngestionStartedResponse
		decodeBody(t, rr.Body, &resp)
		assert.Equal(t, "run-123", resp.RunID)
		assert.Equal(t, "accepted", resp.Status)
	})

	t.Run("should return 409 when a run is already in flight", func(t *testing.T) {
		job := new(mockIngestionJob)
		h := NewIngestionHandler(job, time.Hour, testLogger)
		job.On("Start", time.Hour).Return("", apperrors.ErrIngestionRunning)

		rr := httptest.NewRecorder()
		h.TriggerIngestion(rr, httptest.NewRequest(http.MethodPost, "/admin/ingest", nil))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
