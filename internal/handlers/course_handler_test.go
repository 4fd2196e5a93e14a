package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/coursecraft/coursecraft/internal/common"
	"github.com/coursecraft/coursecraft/internal/models"
	"github.com/coursecraft/coursecraft/internal/services/courses"
	badgerstorage "github.com/coursecraft/coursecraft/internal/storage/badger"
)

func newTestHandlers(t *testing.T) (*CourseHandler, *JobHandler) {
	t.Helper()

	logger := common.GetLogger()
	mgr, err := badgerstorage.NewManager(&common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	}, logger)
	if err != nil {
		t.Fatalf("failed to open test storage: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	svc := courses.NewService(mgr, &common.PipelineConfig{PollInterval: "2s", MaxVideoResults: 5, EventPollLimit: 100}, logger)
	return NewCourseHandler(svc, logger), NewJobHandler(svc, logger)
}

func postGenerate(t *testing.T, handler *CourseHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/courses/generate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.GenerateHandler(rec, req)
	return rec
}

func TestGenerateHandler(t *testing.T) {
	courseHandler, _ := newTestHandlers(t)

	body := map[string]interface{}{
		"topic":           "Docker Containers",
		"level":           "beginner",
		"time_per_day":    20,
		"idempotency_key": "8d4f2c1a-63b9-4e57-a180-5f9c7e2b3d46",
	}

	rec := postGenerate(t, courseHandler, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var first models.SubmitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if first.JobID == "" || first.CourseID == "" {
		t.Errorf("expected job and course ids, got %+v", first)
	}

	// Duplicate key returns 200 with the same job id.
	rec = postGenerate(t, courseHandler, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
	var second models.SubmitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !second.AlreadyExisted || second.JobID != first.JobID {
		t.Errorf("duplicate must return the original job id, got %+v", second)
	}
}

func TestGenerateHandlerRejectsInvalidSubmission(t *testing.T) {
	courseHandler, _ := newTestHandlers(t)

	rec := postGenerate(t, courseHandler, map[string]interface{}{
		"topic":           "Docker Containers",
		"time_per_day":    3,
		"idempotency_key": "8d4f2c1a-63b9-4e57-a180-5f9c7e2b3d46",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp["error_code"] != string(models.ErrorKindValidation) {
		t.Errorf("expected validation_error code, got %q", resp["error_code"])
	}
	if resp["suggested_fix"] == "" {
		t.Error("expected a suggested fix in the error response")
	}
}

func TestGenerateHandlerRejectsMalformedBody(t *testing.T) {
	courseHandler, _ := newTestHandlers(t)

	req := httptest.NewRequest("POST", "/api/courses/generate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	courseHandler.GenerateHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateHandlerMethodNotAllowed(t *testing.T) {
	courseHandler, _ := newTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/courses/generate", nil)
	rec := httptest.NewRecorder()
	courseHandler.GenerateHandler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestGetJobHandlerNotFound(t *testing.T) {
	_, jobHandler := newTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/jobs/job_unknown", nil)
	rec := httptest.NewRecorder()
	jobHandler.GetJobHandler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp["error_code"] != string(models.ErrorKindJobNotFound) {
		t.Errorf("expected job_not_found code, got %q", resp["error_code"])
	}
}

func TestGetCourseHandlerNotFound(t *testing.T) {
	courseHandler, _ := newTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/courses/crs_unknown", nil)
	rec := httptest.NewRecorder()
	courseHandler.GetCourseHandler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
