package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LANDGRID"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "LANDGRID_APP_ENV"
	EnvPort   = "LANDGRID_APP_PORT"
	EnvDBDSN  = "LANDGRID_DB_DSN"
	EnvDBHost = "LANDGRID_DB_HOST"
	EnvDBUser = "LANDGRID_DB_USER"
	EnvDBName = "LANDGRID_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Ledger        LedgerConfig
	Registry      RegistryConfig
	World         WorldConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Features      FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LANDGRID_APP_ENV" required:"true"`
	Port         string `envconfig:"LANDGRID_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LANDGRID_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LANDGRID_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LANDGRID_DB_DSN"`
	Driver string `envconfig:"LANDGRID_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LANDGRID_DB_HOST"`
	LegacyPort     int    `envconfig:"LANDGRID_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LANDGRID_DB_USER"`
	LegacyPassword string `envconfig:"LANDGRID_DB_PASSWORD"`
	LegacyName     string `envconfig:"LANDGRID_DB_NAME"`
	LegacySSLMode  string `envconfig:"LANDGRID_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LANDGRID_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LANDGRID_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LANDGRID_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LANDGRID_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LANDGRID_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LANDGRID_REDIS_ADDR"`
	Password     string        `envconfig:"LANDGRID_REDIS_PASSWORD"`
	DB           int           `envconfig:"LANDGRID_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LANDGRID_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LANDGRID_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LANDGRID_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LANDGRID_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LANDGRID_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LANDGRID_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LANDGRID_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LANDGRID_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTTLHours   int    `envconfig:"LANDGRID_JWT_REFRESH_TTL_HOURS" default:"720"`
	// BootstrapSecret guards the session-mint endpoint. Identity lives
	// upstream; only callers holding this secret may exchange a wallet for
	// a token pair.
	BootstrapSecret string `envconfig:"LANDGRID_JWT_BOOTSTRAP_SECRET"`
}

// RefreshTokenTTL returns how long a refresh session stays valid.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTTLHours) * time.Hour
}

// LedgerConfig bounds every call made to the authoritative ownership ledger.
// AuthRateLimitConfig throttles token minting and refresh. Wallet limits
// count attempts per normalized wallet; the refresh surface carries no wallet
// in the body, so only its IP dimension applies.
type AuthRateLimitConfig struct {
	SessionWindow      time.Duration `envconfig:"LANDGRID_AUTH_RL_SESSION_WINDOW" default:"1m"`
	SessionIPLimit     int           `envconfig:"LANDGRID_AUTH_RL_SESSION_IP_LIMIT" default:"20"`
	SessionWalletLimit int           `envconfig:"LANDGRID_AUTH_RL_SESSION_WALLET_LIMIT" default:"5"`
	RefreshWindow      time.Duration `envconfig:"LANDGRID_AUTH_RL_REFRESH_WINDOW" default:"1m"`
	RefreshIPLimit     int           `envconfig:"LANDGRID_AUTH_RL_REFRESH_IP_LIMIT" default:"60"`
}

type LedgerConfig struct {
	Mode         string        `envconfig:"LANDGRID_LEDGER_MODE" default:"mock"`
	CallTimeout  time.Duration `envconfig:"LANDGRID_LEDGER_CALL_TIMEOUT" default:"5s"`
	MaxRetries   int           `envconfig:"LANDGRID_LEDGER_MAX_RETRIES" default:"3"`
	RetryBackoff time.Duration `envconfig:"LANDGRID_LEDGER_RETRY_BACKOFF" default:"200ms"`
}

// IsMock reports whether the deterministic in-process ledger should be used.
func (l LedgerConfig) IsMock() bool {
	return !strings.EqualFold(l.Mode, "live")
}

type RegistryConfig struct {
	CacheTTL        time.Duration `envconfig:"LANDGRID_REGISTRY_CACHE_TTL" default:"5m"`
	DefaultPageSize int           `envconfig:"LANDGRID_REGISTRY_DEFAULT_PAGE_SIZE" default:"100"`
	MaxPageSize     int           `envconfig:"LANDGRID_REGISTRY_MAX_PAGE_SIZE" default:"1000"`
	// DAOWallet identifies treasury-held parcels in statistics.
	DAOWallet string `envconfig:"LANDGRID_REGISTRY_DAO_WALLET" default:""`
}

// WorldConfig fixes the spatial constants shared by every region.
type WorldConfig struct {
	ParcelSize int64 `envconfig:"LANDGRID_WORLD_PARCEL_SIZE" default:"16"`
	SlotPitch  int64 `envconfig:"LANDGRID_WORLD_SLOT_PITCH" default:"4096"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"LANDGRID_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"LANDGRID_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	ParcelEventsTopic string `envconfig:"LANDGRID_PUBSUB_PARCEL_EVENTS_TOPIC" default:"landgrid-parcel-events"`
	RegionEventsTopic string `envconfig:"LANDGRID_PUBSUB_REGION_EVENTS_TOPIC" default:"landgrid-region-events"`
}

type OutboxConfig struct {
	BatchSize          int `envconfig:"LANDGRID_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS     int `envconfig:"LANDGRID_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts        int `envconfig:"LANDGRID_OUTBOX_MAX_ATTEMPTS" default:"10"`
	PublishGuardTTLHrs int `envconfig:"LANDGRID_OUTBOX_PUBLISH_GUARD_TTL_HOURS" default:"24"`
}

// PublishGuardTTL returns how long a published event ID stays deduplicated.
func (c OutboxConfig) PublishGuardTTL() time.Duration {
	if c.PublishGuardTTLHrs <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.PublishGuardTTLHrs) * time.Hour
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LANDGRID_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LANDGRID_AUTO_MIGRATE" default:"false"`
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
