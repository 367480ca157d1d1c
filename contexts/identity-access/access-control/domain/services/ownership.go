package services

import (
	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
)

// CheckOwnerContinuity rejects a change that would leave the tenant without an
// active owner. activeOwners is the count before the change is applied.
func CheckOwnerContinuity(
	target entities.Membership,
	newRole entities.Role,
	newStatus entities.MembershipStatus,
	activeOwners int,
) error {
	if !target.IsActiveOwner() {
		return nil
	}
	stillOwner := newRole == entities.RoleOwner && newStatus == entities.MembershipStatusActive
	if stillOwner {
		return nil
	}
	if activeOwners <= 1 {
		return domainerrors.ErrSoleOwner
	}
	return nil
}
