package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	BusMemory = "memory"
	BusNATS   = "nats"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string `env:"SERVICE_NAME" envDefault:"docketdesk"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	BusDriver     string `env:"BUS_DRIVER" envDefault:"memory"`
	NATSURL       string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`

	ObjectStoreDir        string `env:"OBJECT_STORE_DIR"`
	ObjectStoreMaxRetries uint64 `env:"OBJECT_STORE_MAX_RETRIES" envDefault:"3"`
	PublicBaseURL         string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	SigningSecret         string `env:"SIGNING_SECRET"`

	ReportURLTTL      time.Duration `env:"REPORT_URL_TTL" envDefault:"15m"`
	PreviewURLTTL     time.Duration `env:"PREVIEW_URL_TTL" envDefault:"24h"`
	ArtifactRetention time.Duration `env:"ARTIFACT_RETENTION" envDefault:"168h"`
	IdempotencyTTL    time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"168h"`

	ExportSweepGrace        time.Duration `env:"EXPORT_SWEEP_GRACE" envDefault:"24h"`
	ExportSweepInterval     time.Duration `env:"EXPORT_SWEEP_INTERVAL" envDefault:"1h"`
	ExportStaleAfter        time.Duration `env:"EXPORT_STALE_AFTER" envDefault:"1h"`
	ExportWorkerConcurrency int           `env:"EXPORT_WORKER_CONCURRENCY" envDefault:"4"`
	ExportPollInterval      time.Duration `env:"EXPORT_POLL_INTERVAL" envDefault:"5s"`
	ExportRatePerMinute     int           `env:"EXPORT_RATE_PER_MINUTE" envDefault:"10"`
	EmbeddedWorker          bool          `env:"EMBEDDED_WORKER" envDefault:"true"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	// Owner is provisioned at startup when the tenant has no members yet.
	Owner OwnerConfig `envPrefix:"BOOTSTRAP_"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// SMTPConfig enables email notifications when Host is set.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@docketdesk.local"`
}

type OwnerConfig struct {
	TenantID string `env:"TENANT_ID"`
	ActorID  string `env:"OWNER_ID"`
	Email    string `env:"OWNER_EMAIL"`
}

// Load reads optional .env files without overriding the real environment,
// then parses and validates the typed config.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.BusDriver = strings.ToLower(strings.TrimSpace(cfg.BusDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageMemory:
		if !c.EmbeddedWorker {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory requires EMBEDDED_WORKER=true"))
		}
	case StoragePostgres, StorageSQLite:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			errs = append(errs, fmt.Errorf("STORAGE_DRIVER=%s requires DATABASE_DSN", c.StorageDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.BusDriver {
	case BusMemory:
	case BusNATS:
		if strings.TrimSpace(c.NATSURL) == "" {
			errs = append(errs, errors.New("BUS_DRIVER=nats requires NATS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported BUS_DRIVER %q", c.BusDriver))
	}
	if c.ExportWorkerConcurrency < 1 {
		errs = append(errs, errors.New("EXPORT_WORKER_CONCURRENCY must be at least 1"))
	}
	if c.ReportURLTTL <= 0 || c.PreviewURLTTL <= 0 || c.ArtifactRetention <= 0 {
		errs = append(errs, errors.New("REPORT_URL_TTL, PREVIEW_URL_TTL and ARTIFACT_RETENTION must be positive"))
	}
	if c.ReportURLTTL > c.PreviewURLTTL {
		errs = append(errs, errors.New("REPORT_URL_TTL must not exceed PREVIEW_URL_TTL"))
	}
	if c.ExportPollInterval <= 0 {
		errs = append(errs, errors.New("EXPORT_POLL_INTERVAL must be positive"))
	}
	if (c.Owner.TenantID == "") != (c.Owner.ActorID == "") {
		errs = append(errs, errors.New("BOOTSTRAP_TENANT_ID and BOOTSTRAP_OWNER_ID must be set together"))
	}
	return errors.Join(errs...)
}

// HasSMTP reports whether email notifications are configured.
func (c Config) HasSMTP() bool {
	return strings.TrimSpace(c.SMTP.Host) != ""
}
