package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExportRejectsUnknownType(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := s.as(http.MethodPost, "/v1/exports", testOwner, map[string]any{"type": "pdf"})
	requireError(t, rr, http.StatusBadRequest, "UNKNOWN_EXPORT_TYPE")

	rr = s.as(http.MethodPost, "/v1/exports", testOwner, `{"type":"tabular","unexpected":true}`)
	requireError(t, rr, http.StatusBadRequest, "INVALID_JSON")

	rr = s.as(http.MethodGet, "/v1/exports", testOwner, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, dataOf(t, rr)["items"])
}

func TestExportRoutesRequireCallerHeaders(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := s.do(http.MethodPost, "/v1/exports", testTenant, "", map[string]any{"type": "tabular"})
	requireError(t, rr, http.StatusUnauthorized, "USER_REQUIRED")

	rr = s.do(http.MethodGet, "/v1/exports", "", testOwner, nil)
	requireError(t, rr, http.StatusBadRequest, "TENANT_REQUIRED")

	rr = s.do(http.MethodGet, "/v1/exports/job-1", "", "", nil)
	requireError(t, rr, http.StatusUnauthorized, "USER_REQUIRED")
}

func TestExportLifecycleErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := s.as(http.MethodPost, "/v1/exports", testOwner, map[string]any{"type": "tabular"})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	job := dataOf(t, rr)
	jobID := job["job_id"].(string)
	assert.Equal(t, "pending", job["status"])
	assert.EqualValues(t, 0, job["progress"])

	rr = s.as(http.MethodGet, "/v1/exports/"+jobID+"/download", testOwner, nil)
	requireError(t, rr, http.StatusConflict, "ARTIFACT_UNAVAILABLE")

	rr = s.as(http.MethodGet, "/v1/exports/unknown-job", testOwner, nil)
	requireError(t, rr, http.StatusNotFound, "NOT_FOUND")

	s.addMember("reviewer-1", "reviewer")
	rr = s.as(http.MethodGet, "/v1/exports/"+jobID, "reviewer-1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = s.as(http.MethodDelete, "/v1/exports/"+jobID, "reviewer-1", nil)
	requireError(t, rr, http.StatusForbidden, "PERMISSION_DENIED")
	rr = s.as(http.MethodPost, "/v1/exports", "reviewer-1", map[string]any{"type": "tabular"})
	requireError(t, rr, http.StatusForbidden, "PERMISSION_DENIED")
}

func TestCreateExportIsRateLimitedPerTenant(t *testing.T) {
	s := newTestServer(t, Options{ExportRatePerMinute: 1})

	rr := s.as(http.MethodPost, "/v1/exports", testOwner, map[string]any{"type": "combined"})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = s.as(http.MethodPost, "/v1/exports", testOwner, map[string]any{"type": "combined"})
	requireError(t, rr, http.StatusTooManyRequests, "RATE_LIMITED")
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}
