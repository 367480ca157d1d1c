package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docketdesk/contexts/identity-access/access-control/adapters/memory"
	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	"docketdesk/contexts/identity-access/access-control/ports"
)

type recordingNotifier struct {
	sent chan ports.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification ports.Notification) error {
	n.sent <- notification
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, ports.Notification) error {
	return errors.New("smtp unavailable")
}

func newService(t *testing.T, notifier ports.Notifier) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return Service{Repo: store, Clock: store, IDs: store, Notifier: notifier}, store
}

func seedMember(store *memory.Store, tenantID string, actorID string, role entities.Role) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Seed(entities.Membership{
		TenantID:  tenantID,
		ActorID:   actorID,
		Email:     actorID + "@agency.example",
		Role:      role,
		Status:    entities.MembershipStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func actorFor(t *testing.T, svc Service, tenantID string, actorID string) entities.Actor {
	t.Helper()
	actor, err := svc.ResolveActor(context.Background(), tenantID, actorID)
	if err != nil {
		t.Fatalf("resolve actor %s: %v", actorID, err)
	}
	return actor
}

func TestSoleOwnerCannotBeDemotedByAnyone(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "admin-1", entities.RoleAdmin)

	for _, actorID := range []string{"owner-1", "admin-1"} {
		actor := actorFor(t, svc, "tenant-a", actorID)
		_, err := svc.ChangeRole(context.Background(), actor, "owner-1", "admin")
		if !errors.Is(err, domainerrors.ErrInvariantViolation) {
			t.Fatalf("%s demoting sole owner: expected invariant violation, got %v", actorID, err)
		}
		_, err = svc.Deactivate(context.Background(), actor, "owner-1")
		if !errors.Is(err, domainerrors.ErrInvariantViolation) {
			t.Fatalf("%s deactivating sole owner: expected invariant violation, got %v", actorID, err)
		}
	}

	owner, err := store.GetMembership(context.Background(), "tenant-a", "owner-1")
	if err != nil {
		t.Fatalf("get owner: %v", err)
	}
	if owner.Role != entities.RoleOwner || owner.Status != entities.MembershipStatusActive {
		t.Fatalf("owner membership mutated: %+v", owner)
	}
}

func TestOwnerCanStepDownWhenAnotherOwnerExists(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "owner-2", entities.RoleOwner)

	actor := actorFor(t, svc, "tenant-a", "owner-1")
	updated, err := svc.ChangeRole(context.Background(), actor, "owner-1", "admin")
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != entities.RoleAdmin {
		t.Fatalf("expected admin, got %s", updated.Role)
	}

	remaining := actorFor(t, svc, "tenant-a", "owner-2")
	if _, err := svc.Deactivate(context.Background(), remaining, "owner-2"); !errors.Is(err, domainerrors.ErrSoleOwner) {
		t.Fatalf("expected sole owner error for last owner, got %v", err)
	}
}

func TestConcurrentOwnerDemotionsKeepOneOwner(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "owner-2", entities.RoleOwner)
	actor1 := actorFor(t, svc, "tenant-a", "owner-1")
	actor2 := actorFor(t, svc, "tenant-a", "owner-2")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.ChangeRole(context.Background(), actor1, "owner-2", "viewer")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.ChangeRole(context.Background(), actor2, "owner-1", "viewer")
	}()
	wg.Wait()

	owners, err := store.CountActiveOwners(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("count owners: %v", err)
	}
	if owners != 1 {
		t.Fatalf("expected exactly one active owner, got %d (errors: %v)", owners, errs)
	}
}

func TestAdminCannotManageAdminsOrOwners(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "admin-1", entities.RoleAdmin)
	seedMember(store, "tenant-a", "admin-2", entities.RoleAdmin)
	seedMember(store, "tenant-a", "manager-1", entities.RoleManager)
	admin := actorFor(t, svc, "tenant-a", "admin-1")

	if _, err := svc.ChangeRole(context.Background(), admin, "admin-2", "viewer"); !errors.Is(err, domainerrors.ErrAuthorizationDenied) {
		t.Fatalf("expected denial demoting a peer admin, got %v", err)
	}
	if _, err := svc.ChangeRole(context.Background(), admin, "manager-1", "admin"); !errors.Is(err, domainerrors.ErrAuthorizationDenied) {
		t.Fatalf("expected denial promoting to admin, got %v", err)
	}
	updated, err := svc.ChangeRole(context.Background(), admin, "manager-1", "reviewer")
	if err != nil {
		t.Fatalf("demote manager: %v", err)
	}
	if updated.Role != entities.RoleReviewer || updated.UpdatedBy != "admin-1" {
		t.Fatalf("unexpected membership after demotion: %+v", updated)
	}
}

func TestManagerLacksMembersManage(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "manager-1", entities.RoleManager)
	seedMember(store, "tenant-a", "viewer-1", entities.RoleViewer)
	manager := actorFor(t, svc, "tenant-a", "manager-1")

	_, err := svc.Deactivate(context.Background(), manager, "viewer-1")
	var denied *domainerrors.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected denied error, got %v", err)
	}
	if denied.RequiredRole != string(entities.RoleAdmin) {
		t.Fatalf("expected admin as required role, got %s", denied.RequiredRole)
	}
}

func TestInviteAcceptLifecycle(t *testing.T) {
	notifier := &recordingNotifier{sent: make(chan ports.Notification, 1)}
	svc, store := newService(t, notifier)
	seedMember(store, "tenant-a", "admin-1", entities.RoleAdmin)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	admin := actorFor(t, svc, "tenant-a", "admin-1")

	invited, err := svc.Invite(context.Background(), admin, InviteInput{
		ActorID: "reviewer-1",
		Email:   " Reviewer@Agency.Example ",
		Role:    "reviewer",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if invited.Status != entities.MembershipStatusPending || invited.Email != "reviewer@agency.example" {
		t.Fatalf("unexpected invited membership: %+v", invited)
	}
	if _, err := svc.ResolveActor(context.Background(), "tenant-a", "reviewer-1"); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("pending member must not resolve as actor, got %v", err)
	}

	select {
	case sent := <-notifier.sent:
		if sent.Recipient != "reviewer@agency.example" || sent.Kind != "membership.invited" {
			t.Fatalf("unexpected notification: %+v", sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected invitation notification")
	}

	accepted, err := svc.AcceptInvitation(context.Background(), "tenant-a", "reviewer-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != entities.MembershipStatusActive || accepted.AcceptedAt == nil {
		t.Fatalf("expected active membership, got %+v", accepted)
	}
	if _, err := svc.AcceptInvitation(context.Background(), "tenant-a", "reviewer-1"); !errors.Is(err, domainerrors.ErrMembershipNotPending) {
		t.Fatalf("expected not pending on second accept, got %v", err)
	}
	reviewer := actorFor(t, svc, "tenant-a", "reviewer-1")
	if reviewer.Role != entities.RoleReviewer {
		t.Fatalf("expected reviewer role, got %s", reviewer.Role)
	}
}

func TestInviteRejections(t *testing.T) {
	svc, store := newService(t, failingNotifier{})
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "admin-1", entities.RoleAdmin)
	seedMember(store, "tenant-a", "manager-1", entities.RoleManager)
	admin := actorFor(t, svc, "tenant-a", "admin-1")
	manager := actorFor(t, svc, "tenant-a", "manager-1")

	cases := []struct {
		name  string
		actor entities.Actor
		input InviteInput
		want  error
	}{
		{"unknown role", admin, InviteInput{ActorID: "x", Email: "x@agency.example", Role: "superuser"}, domainerrors.ErrInvalidRole},
		{"bad email", admin, InviteInput{ActorID: "x", Email: "not-an-email", Role: "viewer"}, domainerrors.ErrValidation},
		{"admin invites admin", admin, InviteInput{ActorID: "x", Email: "x@agency.example", Role: "admin"}, domainerrors.ErrRoleOutsideActorReach},
		{"manager cannot invite", manager, InviteInput{ActorID: "x", Email: "x@agency.example", Role: "viewer"}, domainerrors.ErrAuthorizationDenied},
		{"existing member", admin, InviteInput{ActorID: "manager-1", Email: "m@agency.example", Role: "viewer"}, domainerrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Invite(context.Background(), tc.actor, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestInviteSucceedsWhenNotifierFails(t *testing.T) {
	svc, store := newService(t, failingNotifier{})
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	owner := actorFor(t, svc, "tenant-a", "owner-1")
	if _, err := svc.Invite(context.Background(), owner, InviteInput{ActorID: "admin-9", Email: "a9@agency.example", Role: "admin"}); err != nil {
		t.Fatalf("invite must not depend on notification delivery: %v", err)
	}
}

func TestResolveActorIsTenantScoped(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	if _, err := svc.ResolveActor(context.Background(), "tenant-b", "owner-1"); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found in foreign tenant, got %v", err)
	}
}

func TestListMembersOrdering(t *testing.T) {
	svc, store := newService(t, nil)
	seedMember(store, "tenant-a", "viewer-1", entities.RoleViewer)
	seedMember(store, "tenant-a", "owner-1", entities.RoleOwner)
	seedMember(store, "tenant-a", "manager-1", entities.RoleManager)
	seedMember(store, "tenant-b", "owner-b", entities.RoleOwner)
	manager := actorFor(t, svc, "tenant-a", "manager-1")

	items, err := svc.ListMembers(context.Background(), manager, "")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.ActorID)
	}
	want := []string{"owner-1", "manager-1", "viewer-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	viewer := actorFor(t, svc, "tenant-a", "viewer-1")
	if _, err := svc.ListMembers(context.Background(), viewer, ""); !errors.Is(err, domainerrors.ErrAuthorizationDenied) {
		t.Fatalf("expected viewer denial, got %v", err)
	}
	if _, err := svc.ListMembers(context.Background(), manager, "archived"); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestProvisionOwnerOnlyOnEmptyTenant(t *testing.T) {
	svc, _ := newService(t, nil)
	owner, err := svc.ProvisionOwner(context.Background(), "tenant-new", "founder", "Founder@Agency.Example")
	if err != nil {
		t.Fatalf("provision owner: %v", err)
	}
	if owner.Role != entities.RoleOwner || !owner.IsActive() {
		t.Fatalf("expected active owner, got %+v", owner)
	}
	if _, err := svc.ProvisionOwner(context.Background(), "tenant-new", "someone", "s@agency.example"); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict on second provision, got %v", err)
	}
}
