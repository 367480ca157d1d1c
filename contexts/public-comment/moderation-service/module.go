package moderationservice

import (
	"log/slog"
	"time"

	httpadapter "docketdesk/contexts/public-comment/moderation-service/adapters/http"
	"docketdesk/contexts/public-comment/moderation-service/adapters/memory"
	"docketdesk/contexts/public-comment/moderation-service/application"
	"docketdesk/contexts/public-comment/moderation-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Actors         ports.ActorResolver
	Policy         ports.AccessPolicy
	Blobs          ports.BlobStore
	Notifier       ports.Notifier
	Events         ports.EventPublisher
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	PreviewURLTTL  time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:           deps.Repository,
		Policy:         deps.Policy,
		Idempotency:    deps.Idempotency,
		Blobs:          deps.Blobs,
		Notifier:       deps.Notifier,
		Events:         deps.Events,
		Clock:          deps.Clock,
		IDs:            deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		PreviewURLTTL:  deps.PreviewURLTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Actors:  deps.Actors,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule backs the module with a memory store. Collaborators that
// live in other contexts are supplied by the caller.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Repository = store
	deps.Idempotency = store
	deps.Clock = store
	deps.IDGenerator = store
	if deps.IdempotencyTTL <= 0 {
		deps.IdempotencyTTL = 7 * 24 * time.Hour
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
