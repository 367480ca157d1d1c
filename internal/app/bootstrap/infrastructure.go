package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docketdesk/internal/platform/config"
	"docketdesk/internal/platform/db"
	"docketdesk/internal/platform/messaging"
	"docketdesk/internal/platform/metrics"
	"docketdesk/internal/platform/notify"
	"docketdesk/internal/platform/objectstore"
	platformotel "docketdesk/internal/platform/otel"
	"docketdesk/internal/platform/workerpool"
)

// infrastructure holds the process-wide adapters every context shares.
type infrastructure struct {
	cfg          config.Config
	logger       *slog.Logger
	database     *db.Postgres
	signer       *objectstore.Signer
	objects      objectstore.Store
	bus          messaging.Bus
	pool         *workerpool.Pool
	metrics      *metrics.Registry
	notifier     notify.Sender
	otelShutdown func(context.Context) error
}

func newInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger, process string) (_ *infrastructure, err error) {
	infra := &infrastructure{
		cfg:          cfg,
		logger:       logger,
		metrics:      metrics.New(),
		otelShutdown: func(context.Context) error { return nil },
	}
	defer func() {
		if err != nil {
			_ = infra.close(context.Background())
		}
	}()

	infra.otelShutdown, err = platformotel.Setup(ctx, cfg.ServiceName+"-"+process, cfg.OTELEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres, config.StorageSQLite:
		infra.database, err = db.Open(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
	}

	secret := strings.TrimSpace(cfg.SigningSecret)
	if secret == "" {
		secret, err = ephemeralSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("SIGNING_SECRET not set; download links will not survive a restart",
			"event", "bootstrap_ephemeral_signing_secret",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	infra.signer, err = objectstore.NewSigner(secret, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	var objects objectstore.Store
	if dir := strings.TrimSpace(cfg.ObjectStoreDir); dir != "" {
		objects, err = objectstore.NewFileSystem(dir, infra.signer)
		if err != nil {
			return nil, err
		}
	} else {
		objects = objectstore.NewMemory(infra.signer)
	}
	infra.objects = objectstore.NewRetrying(objects, cfg.ObjectStoreMaxRetries, logger)

	var bus messaging.Bus
	switch cfg.BusDriver {
	case config.BusNATS:
		bus, err = messaging.NewNATS(cfg.NATSURL, cfg.ServiceName+"-"+process, logger)
		if err != nil {
			return nil, err
		}
	default:
		bus = messaging.NewMemory(logger)
	}
	infra.bus = messaging.Observed{Bus: bus, Observer: infra.metrics}

	var sender notify.Sender = notify.NewLog(logger)
	if cfg.HasSMTP() {
		sender = notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
	}
	infra.notifier = notify.Observed{Next: sender, Observer: infra.metrics}

	infra.pool = workerpool.New("export", cfg.ExportWorkerConcurrency, logger)
	infra.metrics.RegisterGauge("export", "pool_in_flight", "Export tasks currently running.", func() float64 {
		return float64(infra.pool.InFlight())
	})
	return infra, nil
}

// ready pings the database when one is configured.
func (i *infrastructure) ready(ctx context.Context) error {
	if i.database == nil {
		return nil
	}
	sqlDB, err := i.database.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// close drains the pool before the bus and database so running exports can
// finish their writes.
func (i *infrastructure) close(ctx context.Context) error {
	var errs []error
	if i.pool != nil {
		if err := i.pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain export pool: %w", err))
		}
	}
	if i.bus != nil {
		if err := i.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if i.database != nil {
		if err := i.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.otelShutdown != nil {
		if err := i.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	return errors.Join(errs...)
}

func ephemeralSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
