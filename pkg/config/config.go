package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Storage      StorageConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Places       PlacesConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.GCS); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ABC_APP_ENV" required:"true"`
	Port         string   `envconfig:"ABC_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ABC_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ABC_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"ABC_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"ABC_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ABC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ABC_DB_DSN"`
	Driver string `envconfig:"ABC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ABC_DB_HOST"`
	LegacyPort     int    `envconfig:"ABC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ABC_DB_USER"`
	LegacyPassword string `envconfig:"ABC_DB_PASSWORD"`
	LegacyName     string `envconfig:"ABC_DB_NAME"`
	LegacySSLMode  string `envconfig:"ABC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ABC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ABC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ABC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ABC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ABC_REDIS_URL"`
	Address      string        `envconfig:"ABC_REDIS_ADDR"`
	Password     string        `envconfig:"ABC_REDIS_PASSWORD"`
	DB           int           `envconfig:"ABC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ABC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ABC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ABC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ABC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ABC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ABC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ABC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ABC_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ABC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ABC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ABC_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ABC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ABC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"ABC_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"ABC_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

// StorageConfig selects the backend holding staged and permanent place assets.
type StorageConfig struct {
	Driver        string `envconfig:"ABC_STORAGE_DRIVER" default:"local"`
	LocalRoot     string `envconfig:"ABC_STORAGE_LOCAL_ROOT" default:"./uploads"`
	PublicBaseURL string `envconfig:"ABC_STORAGE_PUBLIC_BASE_URL" default:"/uploads"`
}

func (s StorageConfig) validate(gcs GCSConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverLocal:
		if strings.TrimSpace(s.LocalRoot) == "" {
			return fmt.Errorf("%s is required for the local storage driver", EnvStorageLocalRoot)
		}
	case StorageDriverGCS:
		if strings.TrimSpace(gcs.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs storage driver", EnvGCSBucket)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

type MediaConfig struct {
	MaxUploadMB      int           `envconfig:"ABC_MAX_UPLOAD_MB" default:"10"`
	// UploadRateLimit caps uploads per actor within UploadRateWindow; 0 disables it.
	UploadRateLimit  int           `envconfig:"ABC_UPLOAD_RATE_LIMIT" default:"60"`
	UploadRateWindow time.Duration `envconfig:"ABC_UPLOAD_RATE_WINDOW" default:"10m"`
}

// MaxUploadBytes returns the upload cap in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	PlaceEventsTopic string `envconfig:"ABC_PUBSUB_PLACE_EVENTS_TOPIC" default:"place-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ABC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ABC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ABC_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"ABC_OUTBOX_RETENTION_DAYS" default:"30"`
}

type PlacesConfig struct {
	MaxSlugAttempts   int `envconfig:"ABC_PLACES_MAX_SLUG_ATTEMPTS" default:"1000"`
	CreateRetries     int `envconfig:"ABC_PLACES_CREATE_RETRIES" default:"3"`
	DefaultPageSize   int `envconfig:"ABC_PLACES_DEFAULT_PAGE_SIZE" default:"20"`
	IdempotencyTTLHrs int `envconfig:"ABC_PLACES_IDEMPOTENCY_TTL_HOURS" default:"24"`
}

// IdempotencyTTL returns how long create/upload responses are replayed.
func (p PlacesConfig) IdempotencyTTL() time.Duration {
	if p.IdempotencyTTLHrs <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(p.IdempotencyTTLHrs) * time.Hour
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"ABC_CRON_INTERVAL" default:"1h"`
	StagingTTL  time.Duration `envconfig:"ABC_STAGING_TTL" default:"48h"`
	LockTTL     time.Duration `envconfig:"ABC_CRON_LOCK_TTL" default:"10m"`
	// MetricsAddr is where the worker serves /metrics; empty disables it.
	MetricsAddr string        `envconfig:"ABC_CRON_METRICS_ADDR" default:":9102"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
