package server

import (
	"net/http"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Course generation
	mux.HandleFunc("/api/courses/generate", s.app.CourseHandler.GenerateHandler) // POST - submit a generation job
	mux.HandleFunc("/api/courses/", s.app.CourseHandler.GetCourseHandler)        // GET /{id} - full course tree

	// API routes - Job polling
	mux.HandleFunc("/api/jobs/", s.app.JobHandler.GetJobHandler) // GET /{id} - status, progress, events

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/version", s.versionHandler)

	return mux
}

// healthHandler handles GET /api/health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !handlers.RequireMethod(w, r, "GET") {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// versionHandler handles GET /api/version
func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if !handlers.RequireMethod(w, r, "GET") {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
