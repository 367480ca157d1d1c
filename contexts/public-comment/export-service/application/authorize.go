package application

import (
	"fmt"
	"log/slog"
	"strings"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
)

// Authorize checks a single permission for actor and returns a denial that
// names the minimum role when it is missing.
func Authorize(policy ports.AccessPolicy, actor entities.Actor, permission string, logger *slog.Logger) error {
	if strings.TrimSpace(actor.TenantID) == "" || strings.TrimSpace(actor.ActorID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	if policy == nil {
		return domainerrors.ErrDependencyUnavailable
	}
	if policy.Authorize(actor.Role, permission) {
		return nil
	}
	ResolveLogger(logger).Warn("export permission denied",
		"event", "export_permission_denied",
		"module", "public-comment/export-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"role", actor.Role,
		"permission", permission,
	)
	return fmt.Errorf("%w: %s", domainerrors.ErrAuthorizationDenied, policy.ExplainDenial(permission, actor.Role))
}
