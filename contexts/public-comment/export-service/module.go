package exportservice

import (
	"log/slog"
	"time"

	httpadapter "docketdesk/contexts/public-comment/export-service/adapters/http"
	"docketdesk/contexts/public-comment/export-service/adapters/archive"
	"docketdesk/contexts/public-comment/export-service/adapters/memory"
	"docketdesk/contexts/public-comment/export-service/application/commands"
	"docketdesk/contexts/public-comment/export-service/application/queries"
	"docketdesk/contexts/public-comment/export-service/application/workers"
	"docketdesk/contexts/public-comment/export-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Processor  workers.Processor
	Dispatcher workers.Dispatcher
	Sweeper    workers.ExpirySweeper
	Store      *memory.Store
}

type Dependencies struct {
	Jobs              ports.JobRepository
	Comments          ports.CommentSource
	Artifacts         ports.ArtifactStore
	Archives          ports.ArchiveFactory
	Actors            ports.ActorResolver
	Policy            ports.AccessPolicy
	Events            ports.EventPublisher
	Observer          ports.JobObserver
	Pool              ports.Admitter
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	ReportURLTTL      time.Duration
	ArtifactRetention time.Duration
	SweepGrace        time.Duration
	StaleAfter        time.Duration
	DispatchBatch     int
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Archives == nil {
		deps.Archives = archive.ZipFactory{}
	}
	processor := workers.Processor{
		Jobs:              deps.Jobs,
		Comments:          deps.Comments,
		Artifacts:         deps.Artifacts,
		Archives:          deps.Archives,
		Events:            deps.Events,
		Observer:          deps.Observer,
		Clock:             deps.Clock,
		IDGenerator:       deps.IDGenerator,
		ArtifactRetention: deps.ArtifactRetention,
		Logger:            deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			CreateJob: commands.CreateJobUseCase{
				Jobs:        deps.Jobs,
				Policy:      deps.Policy,
				Events:      deps.Events,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			DeleteJob: commands.DeleteJobUseCase{
				Jobs:      deps.Jobs,
				Artifacts: deps.Artifacts,
				Policy:    deps.Policy,
				Logger:    deps.Logger,
			},
			GetJob: queries.GetJobUseCase{
				Jobs:   deps.Jobs,
				Policy: deps.Policy,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			ListJobs: queries.ListJobsUseCase{
				Jobs:   deps.Jobs,
				Policy: deps.Policy,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			DownloadURL: queries.DownloadURLUseCase{
				Jobs:         deps.Jobs,
				Artifacts:    deps.Artifacts,
				Policy:       deps.Policy,
				Clock:        deps.Clock,
				ReportURLTTL: deps.ReportURLTTL,
				Logger:       deps.Logger,
			},
			Actors: deps.Actors,
			Logger: deps.Logger,
		},
		Processor: processor,
		Dispatcher: workers.Dispatcher{
			Jobs:      deps.Jobs,
			Processor: processor,
			Pool:      deps.Pool,
			BatchSize: deps.DispatchBatch,
			Logger:    deps.Logger,
		},
		Sweeper: workers.ExpirySweeper{
			Jobs:       deps.Jobs,
			Artifacts:  deps.Artifacts,
			Clock:      deps.Clock,
			Grace:      deps.SweepGrace,
			StaleAfter: deps.StaleAfter,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule backs jobs with a memory store. The store doubles as the
// comment source unless the caller supplies one.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Jobs = store
	if deps.Comments == nil {
		deps.Comments = store
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDGenerator == nil {
		deps.IDGenerator = store
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
