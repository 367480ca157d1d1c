package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	moderationerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	moderationhttp "docketdesk/contexts/public-comment/moderation-service/transport/http"
)

func writeModerationError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, moderationhttp.ErrorEnvelope{
		Status: "error",
		Error: moderationhttp.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeModerationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, moderationerrors.ErrInvalidTransition):
		writeModerationError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrDocketClosed):
		writeModerationError(w, http.StatusConflict, "DOCKET_CLOSED", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrValidation):
		writeModerationError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrAuthorizationDenied):
		writeModerationError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrNotFound):
		writeModerationError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrIdempotencyConflict):
		writeModerationError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrConflict):
		writeModerationError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrDependencyUnavailable):
		writeModerationError(w, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrTransientStore):
		writeModerationError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store temporarily unavailable", nil)
	default:
		writeModerationError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func requireModerationCaller(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tenantID, userID := caller(r)
	if userID == "" {
		writeModerationError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Id header is required", nil)
		return "", "", false
	}
	if tenantID == "" {
		writeModerationError(w, http.StatusBadRequest, "TENANT_REQUIRED", "X-Tenant-Id header is required", nil)
		return "", "", false
	}
	return tenantID, userID, true
}

func (s *Server) handleListDockets(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.ListDocketsHandler(r.Context(), tenantID, userID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateDocket(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	var req moderationhttp.CreateDocketRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeModerationError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.moderation.Handler.CreateDocketHandler(r.Context(), tenantID, userID, req)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleSubmitComment is the public intake route; it needs a tenant but no user.
func (s *Server) handleSubmitComment(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := caller(r)
	if tenantID == "" {
		writeModerationError(w, http.StatusBadRequest, "TENANT_REQUIRED", "X-Tenant-Id header is required", nil)
		return
	}
	var req moderationhttp.SubmitCommentRequest
	if err := decodeJSON(w, r, &req, maxSubmissionBody); err != nil {
		writeModerationError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.moderation.Handler.SubmitCommentHandler(r.Context(), tenantID, r.PathValue("docket_id"), req)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.moderation.Handler.ListCommentsHandler(
		r.Context(),
		tenantID,
		userID,
		query.Get("docket_id"),
		query.Get("status"),
		query.Get("limit"),
		query.Get("offset"),
	)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.GetCommentHandler(r.Context(), tenantID, userID, r.PathValue("comment_id"))
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommentLog(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.ListLogHandler(r.Context(), tenantID, userID, r.PathValue("comment_id"))
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	var req moderationhttp.ModerateRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeModerationError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.moderation.Handler.ModerateHandler(
		r.Context(),
		tenantID,
		userID,
		strings.TrimSpace(r.Header.Get(headerIdempotencyKey)),
		r.PathValue("comment_id"),
		req,
	)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulkModerate(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	var req moderationhttp.BulkModerateRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeModerationError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.moderation.Handler.BulkModerateHandler(
		r.Context(),
		tenantID,
		userID,
		strings.TrimSpace(r.Header.Get(headerIdempotencyKey)),
		req,
	)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommentStats(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.StatsHandler(r.Context(), tenantID, userID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttachmentPreview(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireModerationCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.AttachmentPreviewHandler(
		r.Context(),
		tenantID,
		userID,
		r.PathValue("comment_id"),
		r.PathValue("attachment_id"),
	)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
