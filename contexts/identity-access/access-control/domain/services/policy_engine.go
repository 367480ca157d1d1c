package services

import (
	"fmt"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
)

// grants is the static permission matrix. It is built once and only read
// through Authorize and the helpers below.
var grants = buildMatrix(map[entities.Role][]entities.Permission{
	entities.RoleViewer: {
		entities.PermissionCommentsView,
	},
	entities.RoleReviewer: {
		entities.PermissionCommentsView,
		entities.PermissionCommentsFlag,
		entities.PermissionExportsView,
	},
	entities.RoleManager: {
		entities.PermissionCommentsView,
		entities.PermissionCommentsFlag,
		entities.PermissionCommentsApprove,
		entities.PermissionCommentsReject,
		entities.PermissionExportsView,
		entities.PermissionExportsCreate,
		entities.PermissionMembersView,
	},
	entities.RoleAdmin: {
		entities.PermissionCommentsView,
		entities.PermissionCommentsFlag,
		entities.PermissionCommentsApprove,
		entities.PermissionCommentsReject,
		entities.PermissionExportsView,
		entities.PermissionExportsCreate,
		entities.PermissionExportsDelete,
		entities.PermissionMembersView,
		entities.PermissionMembersInvite,
		entities.PermissionMembersManage,
		entities.PermissionDocketsManage,
	},
	entities.RoleOwner: {
		entities.PermissionCommentsView,
		entities.PermissionCommentsFlag,
		entities.PermissionCommentsApprove,
		entities.PermissionCommentsReject,
		entities.PermissionExportsView,
		entities.PermissionExportsCreate,
		entities.PermissionExportsDelete,
		entities.PermissionMembersView,
		entities.PermissionMembersInvite,
		entities.PermissionMembersManage,
		entities.PermissionDocketsManage,
		entities.PermissionTenantManage,
	},
})

func buildMatrix(table map[entities.Role][]entities.Permission) map[entities.Role]map[entities.Permission]struct{} {
	out := make(map[entities.Role]map[entities.Permission]struct{}, len(table))
	for role, permissions := range table {
		set := make(map[entities.Permission]struct{}, len(permissions))
		for _, p := range permissions {
			set[p] = struct{}{}
		}
		out[role] = set
	}
	return out
}

// Authorize reports whether the role grants the permission.
func Authorize(role entities.Role, permission entities.Permission) bool {
	_, ok := grants[role][permission]
	return ok
}

// CanManageRole reports whether an actor holding actorRole may invite,
// promote, demote or deactivate a member holding targetRole.
func CanManageRole(actorRole entities.Role, targetRole entities.Role) bool {
	if !targetRole.Valid() {
		return false
	}
	switch actorRole {
	case entities.RoleOwner:
		return true
	case entities.RoleAdmin:
		return targetRole.Rank() <= entities.RoleManager.Rank()
	default:
		return false
	}
}

// AssignableRoles lists the roles the actor may assign, highest rank first.
func AssignableRoles(actorRole entities.Role) []entities.Role {
	out := make([]entities.Role, 0, 5)
	for _, role := range entities.Roles() {
		if CanManageRole(actorRole, role) {
			out = append(out, role)
		}
	}
	return out
}

// MinimumRole returns the lowest-ranked role that grants the permission.
func MinimumRole(permission entities.Permission) (entities.Role, bool) {
	roles := entities.Roles()
	for i := len(roles) - 1; i >= 0; i-- {
		if Authorize(roles[i], permission) {
			return roles[i], true
		}
	}
	return "", false
}

// ExplainDenial describes the minimum role required for the permission.
func ExplainDenial(permission entities.Permission, role entities.Role) string {
	minimum, ok := MinimumRole(permission)
	if !ok {
		return fmt.Sprintf("permission %q is not granted to any role", permission)
	}
	if role == "" {
		return fmt.Sprintf("permission %q requires at least the %s role", permission, minimum)
	}
	return fmt.Sprintf("permission %q requires at least the %s role; current role is %s", permission, minimum, role)
}

// Require returns a DeniedError when the role does not grant the permission.
func Require(role entities.Role, permission entities.Permission) error {
	if Authorize(role, permission) {
		return nil
	}
	minimum, _ := MinimumRole(permission)
	return &domainerrors.DeniedError{
		Permission:   string(permission),
		Role:         string(role),
		RequiredRole: string(minimum),
		Explanation:  ExplainDenial(permission, role),
	}
}
