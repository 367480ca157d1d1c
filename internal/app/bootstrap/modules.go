package bootstrap

import (
	"context"
	"errors"

	accesscontrol "docketdesk/contexts/identity-access/access-control"
	accesspostgres "docketdesk/contexts/identity-access/access-control/adapters/postgres"
	accesserrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	exportservice "docketdesk/contexts/public-comment/export-service"
	exportpostgres "docketdesk/contexts/public-comment/export-service/adapters/postgres"
	moderationservice "docketdesk/contexts/public-comment/moderation-service"
	moderationpostgres "docketdesk/contexts/public-comment/moderation-service/adapters/postgres"
	"docketdesk/internal/platform/httpserver"
)

const exportDispatchBatch = 50

// buildModules wires the three contexts onto the shared infrastructure. With
// no database every context runs on its memory store and the export worker
// reads comments straight from the moderation store.
func buildModules(infra *infrastructure) (httpserver.Modules, error) {
	cfg := infra.cfg
	logger := infra.logger
	notifier := mailer{sender: infra.notifier}

	if infra.database == nil {
		access := accesscontrol.NewInMemoryModule(accessMailer{notifier}, logger)
		moderation := moderationservice.NewInMemoryModule(moderationservice.Dependencies{
			Actors:         moderationActors{access: access.Service},
			Policy:         accessPolicy{},
			Blobs:          infra.objects,
			Notifier:       moderationMailer{notifier},
			Events:         infra.bus,
			IdempotencyTTL: cfg.IdempotencyTTL,
			PreviewURLTTL:  cfg.PreviewURLTTL,
			Logger:         logger,
		})
		exports := exportservice.NewInMemoryModule(exportservice.Dependencies{
			Comments:          moderationCommentSource{repo: moderation.Store},
			Artifacts:         infra.objects,
			Actors:            exportActors{access: access.Service},
			Policy:            accessPolicy{},
			Events:            infra.bus,
			Observer:          infra.metrics,
			Pool:              infra.pool,
			ReportURLTTL:      cfg.ReportURLTTL,
			ArtifactRetention: cfg.ArtifactRetention,
			SweepGrace:        cfg.ExportSweepGrace,
			StaleAfter:        cfg.ExportStaleAfter,
			DispatchBatch:     exportDispatchBatch,
			Logger:            logger,
		})
		return httpserver.Modules{Access: access, Moderation: moderation, Exports: exports}, nil
	}

	models := append([]any{}, accesspostgres.Models()...)
	models = append(models, moderationpostgres.Models()...)
	models = append(models, exportpostgres.Models()...)
	if err := infra.database.AutoMigrate(models...); err != nil {
		return httpserver.Modules{}, err
	}

	accessRepo := accesspostgres.NewRepository(infra.database.DB, logger)
	access := accesscontrol.NewModule(accesscontrol.Dependencies{
		Repository:  accessRepo,
		Clock:       accesspostgres.SystemClock{},
		IDGenerator: accesspostgres.UUIDGenerator{},
		Notifier:    accessMailer{notifier},
		Logger:      logger,
	})

	moderationRepo := moderationpostgres.NewRepository(infra.database.DB, logger)
	moderation := moderationservice.NewModule(moderationservice.Dependencies{
		Repository:     moderationRepo,
		Idempotency:    moderationRepo,
		Actors:         moderationActors{access: access.Service},
		Policy:         accessPolicy{},
		Blobs:          infra.objects,
		Notifier:       moderationMailer{notifier},
		Events:         infra.bus,
		Clock:          moderationRepo,
		IDGenerator:    moderationRepo,
		IdempotencyTTL: cfg.IdempotencyTTL,
		PreviewURLTTL:  cfg.PreviewURLTTL,
		Logger:         logger,
	})

	exportRepo := exportpostgres.NewRepository(infra.database.DB, logger)
	exports := exportservice.NewModule(exportservice.Dependencies{
		Jobs:              exportRepo,
		Comments:          exportRepo,
		Artifacts:         infra.objects,
		Actors:            exportActors{access: access.Service},
		Policy:            accessPolicy{},
		Events:            infra.bus,
		Observer:          infra.metrics,
		Pool:              infra.pool,
		Clock:             exportRepo,
		IDGenerator:       exportRepo,
		ReportURLTTL:      cfg.ReportURLTTL,
		ArtifactRetention: cfg.ArtifactRetention,
		SweepGrace:        cfg.ExportSweepGrace,
		StaleAfter:        cfg.ExportStaleAfter,
		DispatchBatch:     exportDispatchBatch,
		Logger:            logger,
	})
	return httpserver.Modules{Access: access, Moderation: moderation, Exports: exports}, nil
}

// provisionOwner seeds the configured first owner. A tenant that already has
// members is left alone.
func provisionOwner(ctx context.Context, infra *infrastructure, access accesscontrol.Module) error {
	owner := infra.cfg.Owner
	if owner.TenantID == "" {
		return nil
	}
	_, err := access.Service.ProvisionOwner(ctx, owner.TenantID, owner.ActorID, owner.Email)
	if errors.Is(err, accesserrors.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	infra.logger.Info("tenant owner provisioned",
		"event", "bootstrap_owner_provisioned",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"tenant_id", owner.TenantID,
		"actor_id", owner.ActorID,
	)
	return nil
}
