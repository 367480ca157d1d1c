package entities

import "strings"

// Permission names a capability checked against the static role matrix.
type Permission string

const (
	PermissionCommentsView    Permission = "comments.view"
	PermissionCommentsFlag    Permission = "comments.flag"
	PermissionCommentsApprove Permission = "comments.approve"
	PermissionCommentsReject  Permission = "comments.reject"
	PermissionExportsView     Permission = "exports.view"
	PermissionExportsCreate   Permission = "exports.create"
	PermissionExportsDelete   Permission = "exports.delete"
	PermissionMembersView     Permission = "members.view"
	PermissionMembersInvite   Permission = "members.invite"
	PermissionMembersManage   Permission = "members.manage"
	PermissionDocketsManage   Permission = "dockets.manage"
	PermissionTenantManage    Permission = "tenant.manage"
)

var allPermissions = [...]Permission{
	PermissionCommentsView,
	PermissionCommentsFlag,
	PermissionCommentsApprove,
	PermissionCommentsReject,
	PermissionExportsView,
	PermissionExportsCreate,
	PermissionExportsDelete,
	PermissionMembersView,
	PermissionMembersInvite,
	PermissionMembersManage,
	PermissionDocketsManage,
	PermissionTenantManage,
}

func Permissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions[:])
	return out
}

func ParsePermission(raw string) (Permission, bool) {
	value := Permission(strings.ToLower(strings.TrimSpace(raw)))
	for _, p := range allPermissions {
		if p == value {
			return p, true
		}
	}
	return "", false
}
