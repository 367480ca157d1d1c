package ports

import (
	"context"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ActorResolver maps an authenticated user to an active tenant role.
type ActorResolver interface {
	ResolveActor(ctx context.Context, tenantID string, actorID string) (entities.Actor, error)
}

// AccessPolicy answers static permission questions for a role.
type AccessPolicy interface {
	Authorize(role string, permission string) bool
	ExplainDenial(permission string, role string) string
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type CommentFilter struct {
	TenantID string
	DocketID string
	Status   entities.CommentStatus
	Limit    int
	Offset   int
}

// Transition is one comment status change. LogEntry is nil when no audit
// record should be written.
type Transition struct {
	TenantID  string
	CommentID string
	Status    entities.CommentStatus
	UpdatedBy string
	UpdatedAt time.Time
	LogEntry  *entities.LogEntry
}

type Repository interface {
	CreateDocket(ctx context.Context, docket entities.Docket) (entities.Docket, error)
	GetDocket(ctx context.Context, tenantID string, docketID string) (entities.Docket, error)
	ListDockets(ctx context.Context, tenantID string) ([]entities.Docket, error)

	CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error)
	GetComment(ctx context.Context, tenantID string, commentID string) (entities.Comment, error)
	GetComments(ctx context.Context, tenantID string, commentIDs []string) ([]entities.Comment, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]entities.Comment, error)
	ListTenantComments(ctx context.Context, tenantID string) ([]entities.Comment, error)

	// ApplyTransition persists a single status change and its optional log
	// entry. ApplyBulkTransition applies every change or none of them.
	ApplyTransition(ctx context.Context, transition Transition) (entities.Comment, error)
	ApplyBulkTransition(ctx context.Context, transitions []Transition) ([]entities.Comment, error)

	ListLog(ctx context.Context, tenantID string, commentID string) ([]entities.LogEntry, error)
}

// BlobStore holds attachment binaries and mints preview links for them.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

type Notification struct {
	Kind      string
	TenantID  string
	Recipient string
	Subject   string
	Body      string
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// EventPublisher emits integration events after a change is committed.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event eventsv1.Envelope) error
}
