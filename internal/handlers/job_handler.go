package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/services/courses"
)

// JobHandler handles job polling requests
type JobHandler struct {
	courseService *courses.Service
	logger        arbor.ILogger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(courseService *courses.Service, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// GetJobHandler handles GET /api/jobs/{id}
func (h *JobHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		WriteError(w, http.StatusBadRequest, "job id is required")
		return
	}

	result, err := h.courseService.GetJobStatus(r.Context(), jobID)
	if err != nil {
		WriteKindError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
