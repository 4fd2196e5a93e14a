package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/services/courses"
)

// CourseHandler handles course submission and content queries
type CourseHandler struct {
	courseService *courses.Service
	logger        arbor.ILogger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(courseService *courses.Service, logger arbor.ILogger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logger,
	}
}

// GenerateHandler handles POST /api/courses/generate
func (h *CourseHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.GenerateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteKindError(w, models.WrapKindError(models.ErrorKindValidation, "invalid request body", err))
		return
	}

	result, err := h.courseService.Submit(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Str("topic", req.Topic).Msg("Course submission rejected")
		WriteKindError(w, err)
		return
	}

	status := http.StatusAccepted
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	WriteJSON(w, status, result)
}

// GetCourseHandler handles GET /api/courses/{id}
func (h *CourseHandler) GetCourseHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	courseID := strings.TrimPrefix(r.URL.Path, "/api/courses/")
	if courseID == "" || strings.Contains(courseID, "/") {
		WriteError(w, http.StatusBadRequest, "course id is required")
		return
	}

	tree, err := h.courseService.GetCourseTree(r.Context(), courseID)
	if err != nil {
		WriteKindError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tree)
}
