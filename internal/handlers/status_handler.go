package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/interfaces"
	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/pipeline"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	jobStorage interfaces.JobStorage
	dispatcher *pipeline.Dispatcher
	logger     arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(jobStorage interfaces.JobStorage, dispatcher *pipeline.Dispatcher, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		jobStorage: jobStorage,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	counts := map[string]int{}
	for _, status := range []models.JobStatus{
		models.JobStatusQueued,
		models.JobStatusRunning,
		models.JobStatusSucceeded,
		models.JobStatusFailed,
	} {
		jobs, err := h.jobStorage.ListJobsByStatus(r.Context(), status)
		if err != nil {
			h.logger.Warn().Err(err).Str("status", string(status)).Msg("Failed to count jobs for status endpoint")
			continue
		}
		counts[string(status)] = len(jobs)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":            common.GetVersion(),
		"dispatcher_running": h.dispatcher.IsRunning(),
		"jobs":               counts,
	})
}
