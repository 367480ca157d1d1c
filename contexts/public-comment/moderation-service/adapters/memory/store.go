package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	"docketdesk/contexts/public-comment/moderation-service/ports"

	gocache "github.com/patrickmn/go-cache"
)

type Store struct {
	mu sync.RWMutex

	dockets  map[string]entities.Docket
	comments map[string]entities.Comment
	logs     map[string][]entities.LogEntry
	sequence uint64

	idempotency *gocache.Cache
}

func NewStore() *Store {
	return &Store{
		dockets:     make(map[string]entities.Docket),
		comments:    make(map[string]entities.Comment),
		logs:        make(map[string][]entities.LogEntry),
		idempotency: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// SeedDocket and SeedComment insert fixtures as-is.
func (s *Store) SeedDocket(docket entities.Docket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if docket.DocketID == "" {
		docket.DocketID = s.nextID("docket")
	}
	s.dockets[docket.DocketID] = docket
}

func (s *Store) SeedComment(comment entities.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.CommentID == "" {
		comment.CommentID = s.nextID("comment")
	}
	s.comments[comment.CommentID] = cloneComment(comment)
}

func (s *Store) CreateDocket(ctx context.Context, docket entities.Docket) (entities.Docket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.dockets {
		if existing.TenantID == docket.TenantID && strings.EqualFold(existing.Reference, docket.Reference) {
			return entities.Docket{}, domainerrors.ErrDocketAlreadyExists
		}
	}
	s.dockets[docket.DocketID] = docket
	return docket, nil
}

func (s *Store) GetDocket(ctx context.Context, tenantID string, docketID string) (entities.Docket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docket, ok := s.dockets[docketID]
	if !ok || docket.TenantID != tenantID {
		return entities.Docket{}, domainerrors.ErrDocketNotFound
	}
	return docket, nil
}

func (s *Store) ListDockets(ctx context.Context, tenantID string) ([]entities.Docket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Docket, 0)
	for _, docket := range s.dockets {
		if docket.TenantID == tenantID {
			items = append(items, docket)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].DocketID < items[j].DocketID
	})
	return items, nil
}

func (s *Store) CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.comments[comment.CommentID]; exists {
		return entities.Comment{}, fmt.Errorf("%w: comment %s", domainerrors.ErrConflict, comment.CommentID)
	}
	s.comments[comment.CommentID] = cloneComment(comment)
	return cloneComment(comment), nil
}

func (s *Store) GetComment(ctx context.Context, tenantID string, commentID string) (entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[commentID]
	if !ok || comment.TenantID != tenantID {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return cloneComment(comment), nil
}

func (s *Store) GetComments(ctx context.Context, tenantID string, commentIDs []string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0, len(commentIDs))
	for _, id := range commentIDs {
		comment, ok := s.comments[id]
		if !ok || comment.TenantID != tenantID {
			continue
		}
		items = append(items, cloneComment(comment))
	}
	return items, nil
}

func (s *Store) ListComments(ctx context.Context, filter ports.CommentFilter) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.TenantID != filter.TenantID {
			continue
		}
		if filter.DocketID != "" && comment.DocketID != filter.DocketID {
			continue
		}
		if filter.Status != "" && comment.Status != filter.Status {
			continue
		}
		items = append(items, cloneComment(comment))
	}
	sortBySubmission(items)
	if filter.Offset >= len(items) {
		return []entities.Comment{}, nil
	}
	items = items[filter.Offset:]
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) ListTenantComments(ctx context.Context, tenantID string) ([]entities.Comment, error) {
	return s.ListComments(ctx, ports.CommentFilter{TenantID: tenantID})
}

// ApplyTransition writes unconditionally: concurrent moderators race and the
// later write wins.
func (s *Store) ApplyTransition(ctx context.Context, transition ports.Transition) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[transition.CommentID]
	if !ok || comment.TenantID != transition.TenantID {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return s.applyLocked(comment, transition), nil
}

func (s *Store) ApplyBulkTransition(ctx context.Context, transitions []ports.Transition) ([]entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, transition := range transitions {
		comment, ok := s.comments[transition.CommentID]
		if !ok || comment.TenantID != transition.TenantID {
			return nil, fmt.Errorf("%w: %s", domainerrors.ErrCommentNotFound, transition.CommentID)
		}
	}
	out := make([]entities.Comment, 0, len(transitions))
	for _, transition := range transitions {
		out = append(out, s.applyLocked(s.comments[transition.CommentID], transition))
	}
	return out, nil
}

func (s *Store) ListLog(ctx context.Context, tenantID string, commentID string) ([]entities.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.LogEntry, 0, len(s.logs[commentID]))
	for _, entry := range s.logs[commentID] {
		if entry.TenantID == tenantID {
			items = append(items, entry)
		}
	}
	return items, nil
}

// LogCount returns the number of audit entries stored for a tenant.
func (s *Store) LogCount(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entries := range s.logs {
		for _, entry := range entries {
			if entry.TenantID == tenantID {
				count++
			}
		}
	}
	return count
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	raw, ok := s.idempotency.Get(key)
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	record := raw.(ports.IdempotencyRecord)
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		s.idempotency.Delete(key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	ttl := gocache.NoExpiration
	if !record.ExpiresAt.IsZero() {
		ttl = time.Until(record.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	s.idempotency.Set(record.Key, record, ttl)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return s.nextID("mod"), nil
}

func (s *Store) applyLocked(comment entities.Comment, transition ports.Transition) entities.Comment {
	comment.Status = transition.Status
	comment.UpdatedBy = transition.UpdatedBy
	comment.UpdatedAt = transition.UpdatedAt.UTC()
	s.comments[comment.CommentID] = comment
	if transition.LogEntry != nil {
		s.logs[comment.CommentID] = append(s.logs[comment.CommentID], *transition.LogEntry)
	}
	return cloneComment(comment)
}

func (s *Store) nextID(prefix string) string {
	n := atomic.AddUint64(&s.sequence, 1)
	if strings.TrimSpace(prefix) == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

func sortBySubmission(items []entities.Comment) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].SubmittedAt.Before(items[j].SubmittedAt)
		}
		return items[i].CommentID < items[j].CommentID
	})
}

func cloneComment(comment entities.Comment) entities.Comment {
	comment.Attachments = append([]entities.Attachment(nil), comment.Attachments...)
	return comment
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
