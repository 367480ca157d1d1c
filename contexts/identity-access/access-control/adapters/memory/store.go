package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	"docketdesk/contexts/identity-access/access-control/domain/services"
	"docketdesk/contexts/identity-access/access-control/ports"
)

type Store struct {
	mu sync.RWMutex

	memberships map[string]entities.Membership
	sequence    uint64
}

func NewStore() *Store {
	return &Store{
		memberships: make(map[string]entities.Membership),
	}
}

// Seed inserts memberships as-is. It is meant for fixtures and local runs.
func (s *Store) Seed(items ...entities.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.MembershipID == "" {
			item.MembershipID = s.nextID("membership")
		}
		s.memberships[membershipKey(item.TenantID, item.ActorID)] = item
	}
}

func (s *Store) GetMembership(ctx context.Context, tenantID string, actorID string) (entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.memberships[membershipKey(tenantID, actorID)]
	if !ok {
		return entities.Membership{}, domainerrors.ErrMembershipNotFound
	}
	return item, nil
}

func (s *Store) ListMemberships(ctx context.Context, filter ports.MembershipFilter) ([]entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Membership, 0)
	for _, item := range s.memberships {
		if item.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Role.Rank() != items[j].Role.Rank() {
			return items[i].Role.Rank() > items[j].Role.Rank()
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ActorID < items[j].ActorID
	})
	return items, nil
}

func (s *Store) CountActiveOwners(ctx context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countActiveOwnersLocked(tenantID), nil
}

func (s *Store) CreateMembership(ctx context.Context, membership entities.Membership) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey(membership.TenantID, membership.ActorID)
	if _, exists := s.memberships[key]; exists {
		return entities.Membership{}, domainerrors.ErrMembershipAlreadyExist
	}
	if membership.MembershipID == "" {
		membership.MembershipID = s.nextID("membership")
	}
	s.memberships[key] = membership
	return membership, nil
}

func (s *Store) ActivateMembership(ctx context.Context, tenantID string, actorID string, now time.Time) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey(tenantID, actorID)
	item, ok := s.memberships[key]
	if !ok {
		return entities.Membership{}, domainerrors.ErrMembershipNotFound
	}
	if item.Status != entities.MembershipStatusPending {
		return entities.Membership{}, domainerrors.ErrMembershipNotPending
	}
	now = now.UTC()
	item.Status = entities.MembershipStatusActive
	item.AcceptedAt = &now
	item.UpdatedAt = now
	item.UpdatedBy = actorID
	s.memberships[key] = item
	return item, nil
}

func (s *Store) ApplyMembershipChange(ctx context.Context, change ports.MembershipChange) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey(change.TenantID, change.ActorID)
	item, ok := s.memberships[key]
	if !ok {
		return entities.Membership{}, domainerrors.ErrMembershipNotFound
	}
	owners := s.countActiveOwnersLocked(change.TenantID)
	if err := services.CheckOwnerContinuity(item, change.Role, change.Status, owners); err != nil {
		return entities.Membership{}, err
	}
	item.Role = change.Role
	item.Status = change.Status
	item.UpdatedBy = change.UpdatedBy
	item.UpdatedAt = change.UpdatedAt.UTC()
	s.memberships[key] = item
	return item, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return s.nextID("membership"), nil
}

func (s *Store) countActiveOwnersLocked(tenantID string) int {
	count := 0
	for _, item := range s.memberships {
		if item.TenantID == tenantID && item.IsActiveOwner() {
			count++
		}
	}
	return count
}

func (s *Store) nextID(prefix string) string {
	n := atomic.AddUint64(&s.sequence, 1)
	if strings.TrimSpace(prefix) == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

func membershipKey(tenantID string, actorID string) string {
	return strings.TrimSpace(tenantID) + "|" + strings.TrimSpace(actorID)
}

var _ ports.MembershipRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
