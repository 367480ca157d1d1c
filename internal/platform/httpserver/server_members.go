package httpserver

import (
	"errors"
	"net/http"
	"time"

	accesserrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	accesshttp "docketdesk/contexts/identity-access/access-control/transport/http"
)

func writeAccessError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, accesshttp.ErrorEnvelope{
		Status: "error",
		Error: accesshttp.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	var denied *accesserrors.DeniedError
	switch {
	case errors.As(err, &denied):
		writeAccessError(w, http.StatusForbidden, "PERMISSION_DENIED", denied.Error(), map[string]any{
			"permission":    denied.Permission,
			"role":          denied.Role,
			"required_role": denied.RequiredRole,
		})
	case errors.Is(err, accesserrors.ErrAuthorizationDenied):
		writeAccessError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrValidation):
		writeAccessError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrNotFound):
		writeAccessError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrInvariantViolation):
		writeAccessError(w, http.StatusConflict, "INVARIANT_VIOLATION", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrConflict):
		writeAccessError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrIdempotencyConflict):
		writeAccessError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error(), nil)
	case errors.Is(err, accesserrors.ErrTransientStore):
		writeAccessError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store temporarily unavailable", nil)
	default:
		writeAccessError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func requireAccessCaller(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tenantID, userID := caller(r)
	if userID == "" {
		writeAccessError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Id header is required", nil)
		return "", "", false
	}
	if tenantID == "" {
		writeAccessError(w, http.StatusBadRequest, "TENANT_REQUIRED", "X-Tenant-Id header is required", nil)
		return "", "", false
	}
	return tenantID, userID, true
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.ListMembersHandler(r.Context(), tenantID, userID, r.URL.Query().Get("status"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignableRoles(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.AssignableRolesHandler(r.Context(), tenantID, userID)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.InviteMemberRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeAccessError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.access.Handler.InviteHandler(r.Context(), tenantID, userID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.AcceptInvitationHandler(r.Context(), tenantID, userID)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.ChangeRoleRequest
	if err := decodeJSON(w, r, &req, maxJSONBody); err != nil {
		writeAccessError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	resp, err := s.access.Handler.ChangeRoleHandler(r.Context(), tenantID, userID, r.PathValue("actor_id"), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateMember(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.DeactivateHandler(r.Context(), tenantID, userID, r.PathValue("actor_id"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
