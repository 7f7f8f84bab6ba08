package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/usecase"
)

type stubJobManager struct {
	submitErr error
	status    *entity.JobStatus
	lastURL   string
	lastMode  string
	lastForce bool
}

func (s *stubJobManager) Submit(_ context.Context, url, mode string, force bool) (string, error) {
	s.lastURL, s.lastMode, s.lastForce = url, mode, force
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "job-123", nil
}

func (s *stubJobManager) GetStatus(_ context.Context, url string) (*entity.JobStatus, error) {
	return s.status, nil
}

func TestHandleSubmitScrape(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		submitErr  error
		wantStatus int
	}{
		{"accepted", `{"url": "https://example.com", "mode": "http"}`, nil, http.StatusAccepted},
		{"default mode", `{"url": "https://example.com"}`, nil, http.StatusAccepted},
		{"invalid json", `{"url": `, nil, http.StatusBadRequest},
		{"invalid url", `{"url": "not a url"}`, nil, http.StatusBadRequest},
		{"invalid mode", `{"url": "https://example.com", "mode": "carrier-pigeon"}`, nil, http.StatusBadRequest},
		{"recently submitted", `{"url": "https://example.com"}`, usecase.ErrURLRecentlySubmitted, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubJobManager{submitErr: tt.submitErr})
			req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleSubmitScrape(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestHandleSubmitScrapeForwardsFields(t *testing.T) {
	jm := &stubJobManager{}
	h := NewHandler(jm)
	body := `{"url": "https://example.com/p", "mode": "browser", "force": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSubmitScrape(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if jm.lastURL != "https://example.com/p" || jm.lastMode != "browser" || !jm.lastForce {
		t.Errorf("submit called with (%q, %q, %v)", jm.lastURL, jm.lastMode, jm.lastForce)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["job_id"] != "job-123" {
		t.Errorf("job_id = %v", resp["job_id"])
	}
}

func TestHandleGetJobStatus(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		status     *entity.JobStatus
		wantStatus int
	}{
		{"found", "/api/status?url=https://example.com", &entity.JobStatus{URL: "https://example.com", CurrentStatus: "completed"}, http.StatusOK},
		{"failed job", "/api/status?url=https://example.com", &entity.JobStatus{URL: "https://example.com", CurrentStatus: "failed", ErrorKind: "fatal"}, http.StatusOK},
		{"not found", "/api/status?url=https://example.com", &entity.JobStatus{URL: "https://example.com", CurrentStatus: "not_found"}, http.StatusNotFound},
		{"missing param", "/api/status", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubJobManager{status: tt.status})
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			h.HandleGetJobStatus(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusOK && tt.status.ErrorKind != "" {
				var resp map[string]any
				_ = json.Unmarshal(rec.Body.Bytes(), &resp)
				if resp["error_kind"] != tt.status.ErrorKind {
					t.Errorf("error_kind = %v", resp["error_kind"])
				}
			}
		})
	}
}
