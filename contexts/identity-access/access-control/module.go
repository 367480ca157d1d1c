package accesscontrol

import (
	"log/slog"

	httpadapter "docketdesk/contexts/identity-access/access-control/adapters/http"
	"docketdesk/contexts/identity-access/access-control/adapters/memory"
	"docketdesk/contexts/identity-access/access-control/application"
	"docketdesk/contexts/identity-access/access-control/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.MembershipRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Notifier    ports.Notifier
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Clock:    deps.Clock,
		IDs:      deps.IDGenerator,
		Notifier: deps.Notifier,
		Logger:   deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(notifier ports.Notifier, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Notifier:    notifier,
		Logger:      logger,
	})
	module.Store = store
	return module
}
