package httpserver

import (
	"errors"
	"net/http"
	"time"

	exporterrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	exporthttp "docketdesk/contexts/public-comment/export-service/transport/http"
)

const createExportRoute = "POST /v1/exports"

func writeExportError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, exporthttp.ErrorEnvelope{
		Status: "error",
		Error: exporthttp.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeExportDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exporterrors.ErrUnknownJobType):
		writeExportError(w, http.StatusBadRequest, "UNKNOWN_EXPORT_TYPE", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrValidation):
		writeExportError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrAuthorizationDenied):
		writeExportError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrNotFound):
		writeExportError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrArtifactUnavailable):
		writeExportError(w, http.StatusConflict, "ARTIFACT_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrConflict):
		writeExportError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrDependencyUnavailable):
		writeExportError(w, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, exporterrors.ErrTransientStore):
		writeExportError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store temporarily unavailable", nil)
	default:
		writeExportError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func requireExportCaller(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tenantID, userID := caller(r)
	if userID == "" {
		writeExportError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Id header is required", nil)
		return "", "", false
	}
	if tenantID == "" {
		writeExportError(w, http.StatusBadRequest, "TENANT_REQUIRED", "X-Tenant-Id header is required", nil)
		return "", "", false
	}
	return tenantID, userID, true
}

func (s *Server) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireExportCaller(w, r)
	if !ok {
		return
	}
	if !s.exportLimiter.Allow(tenantID) {
		if s.metrics != nil {
			s.metrics.RateLimited(createExportRoute)
		}
		s.logger.Warn("export creation rate limited",
			"event", "http_export_rate_limited",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"tenant_id", tenantID,
		)
		w.Header().Set("Retry-After", "60")
		writeExportError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many export requests for this tenant", nil)
		return
	}
	var req exporthttp.CreateExportRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeExportError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.exports.Handler.CreateExportHandler(r.Context(), tenantID, userID, req)
	if err != nil {
		writeExportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireExportCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.exports.Handler.ListExportsHandler(r.Context(), tenantID, userID, r.URL.Query().Get("limit"))
	if err != nil {
		writeExportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireExportCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.exports.Handler.GetExportHandler(r.Context(), tenantID, userID, r.PathValue("job_id"))
	if err != nil {
		writeExportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteExport(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireExportCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.exports.Handler.DeleteExportHandler(r.Context(), tenantID, userID, r.PathValue("job_id"))
	if err != nil {
		writeExportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireExportCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.exports.Handler.DownloadURLHandler(r.Context(), tenantID, userID, r.PathValue("job_id"))
	if err != nil {
		writeExportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
