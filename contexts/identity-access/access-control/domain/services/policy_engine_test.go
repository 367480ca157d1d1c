package services

import (
	"errors"
	"strings"
	"testing"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
)

var expectedMatrix = map[entities.Permission]entities.Role{
	entities.PermissionCommentsView:    entities.RoleViewer,
	entities.PermissionExportsView:     entities.RoleReviewer,
	entities.PermissionCommentsFlag:    entities.RoleReviewer,
	entities.PermissionCommentsApprove: entities.RoleManager,
	entities.PermissionCommentsReject:  entities.RoleManager,
	entities.PermissionExportsCreate:   entities.RoleManager,
	entities.PermissionMembersView:     entities.RoleManager,
	entities.PermissionExportsDelete:   entities.RoleAdmin,
	entities.PermissionMembersInvite:   entities.RoleAdmin,
	entities.PermissionMembersManage:   entities.RoleAdmin,
	entities.PermissionDocketsManage:   entities.RoleAdmin,
	entities.PermissionTenantManage:    entities.RoleOwner,
}

func TestAuthorizeMatchesMatrix(t *testing.T) {
	if len(expectedMatrix) != len(entities.Permissions()) {
		t.Fatalf("matrix fixture covers %d permissions, want %d", len(expectedMatrix), len(entities.Permissions()))
	}
	for _, role := range entities.Roles() {
		for _, permission := range entities.Permissions() {
			want := role.Rank() >= expectedMatrix[permission].Rank()
			if got := Authorize(role, permission); got != want {
				t.Errorf("Authorize(%s, %s) = %v, want %v", role, permission, got, want)
			}
		}
	}
}

func TestAuthorizeUnknownRole(t *testing.T) {
	if Authorize(entities.Role("superuser"), entities.PermissionCommentsView) {
		t.Fatal("unknown role must not be granted anything")
	}
}

func TestRolesFormTotalOrder(t *testing.T) {
	roles := entities.Roles()
	if len(roles) != 5 {
		t.Fatalf("expected 5 roles, got %d", len(roles))
	}
	seen := map[int]bool{}
	for i, role := range roles {
		if seen[role.Rank()] {
			t.Fatalf("duplicate rank %d", role.Rank())
		}
		seen[role.Rank()] = true
		if i > 0 && !roles[i-1].Outranks(role) {
			t.Fatalf("%s should outrank %s", roles[i-1], role)
		}
	}
}

func TestCanManageRole(t *testing.T) {
	for _, target := range entities.Roles() {
		if !CanManageRole(entities.RoleOwner, target) {
			t.Errorf("owner should manage %s", target)
		}
		if CanManageRole(entities.RoleViewer, target) {
			t.Errorf("viewer should not manage %s", target)
		}
		if CanManageRole(entities.RoleReviewer, target) || CanManageRole(entities.RoleManager, target) {
			t.Errorf("reviewer/manager should not manage %s", target)
		}
	}
	cases := []struct {
		target entities.Role
		want   bool
	}{
		{entities.RoleOwner, false},
		{entities.RoleAdmin, false},
		{entities.RoleManager, true},
		{entities.RoleReviewer, true},
		{entities.RoleViewer, true},
	}
	for _, tc := range cases {
		if got := CanManageRole(entities.RoleAdmin, tc.target); got != tc.want {
			t.Errorf("CanManageRole(admin, %s) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestAssignableRolesHighestFirst(t *testing.T) {
	got := AssignableRoles(entities.RoleAdmin)
	want := []entities.Role{entities.RoleManager, entities.RoleReviewer, entities.RoleViewer}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(AssignableRoles(entities.RoleOwner)) != 5 {
		t.Fatal("owner should be able to assign every role")
	}
	if len(AssignableRoles(entities.RoleReviewer)) != 0 {
		t.Fatal("reviewer should not assign roles")
	}
}

func TestExplainDenialNamesMinimumRole(t *testing.T) {
	text := ExplainDenial(entities.PermissionCommentsApprove, entities.RoleReviewer)
	if !strings.Contains(text, "manager") {
		t.Fatalf("expected minimum role manager in %q", text)
	}
	err := Require(entities.RoleViewer, entities.PermissionExportsDelete)
	var denied *domainerrors.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.RequiredRole != "admin" {
		t.Fatalf("expected admin, got %s", denied.RequiredRole)
	}
	if !errors.Is(err, domainerrors.ErrAuthorizationDenied) {
		t.Fatal("denied error must unwrap to ErrAuthorizationDenied")
	}
	if Require(entities.RoleOwner, entities.PermissionTenantManage) != nil {
		t.Fatal("owner should hold tenant.manage")
	}
}

func TestCheckOwnerContinuity(t *testing.T) {
	owner := entities.Membership{Role: entities.RoleOwner, Status: entities.MembershipStatusActive}
	if err := CheckOwnerContinuity(owner, entities.RoleAdmin, entities.MembershipStatusActive, 1); !errors.Is(err, domainerrors.ErrInvariantViolation) {
		t.Fatalf("demoting sole owner: expected invariant violation, got %v", err)
	}
	if err := CheckOwnerContinuity(owner, entities.RoleOwner, entities.MembershipStatusDeactivated, 1); !errors.Is(err, domainerrors.ErrInvariantViolation) {
		t.Fatalf("deactivating sole owner: expected invariant violation, got %v", err)
	}
	if err := CheckOwnerContinuity(owner, entities.RoleAdmin, entities.MembershipStatusActive, 2); err != nil {
		t.Fatalf("demoting one of two owners should pass, got %v", err)
	}
	admin := entities.Membership{Role: entities.RoleAdmin, Status: entities.MembershipStatusActive}
	if err := CheckOwnerContinuity(admin, entities.RoleViewer, entities.MembershipStatusActive, 1); err != nil {
		t.Fatalf("non-owner change should pass, got %v", err)
	}
}
