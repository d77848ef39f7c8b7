package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	BestPrice BestPriceConfig
	Offers    OffersConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Outbox    OutboxConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"AUTOLENIS_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOLENIS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUTOLENIS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOLENIS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AUTOLENIS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOLENIS_DB_DSN"`
	Driver string `envconfig:"AUTOLENIS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOLENIS_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOLENIS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOLENIS_DB_USER"`
	LegacyPassword string `envconfig:"AUTOLENIS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOLENIS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOLENIS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOLENIS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOLENIS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOLENIS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOLENIS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOLENIS_REDIS_URL"`
	Address      string        `envconfig:"AUTOLENIS_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOLENIS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOLENIS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOLENIS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOLENIS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOLENIS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOLENIS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOLENIS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AUTOLENIS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AUTOLENIS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AUTOLENIS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// BestPriceConfig carries the ranking weights and budget thresholds. The
// balanced-category weights default to the product-approved split; the two
// budget thresholds here and in OffersConfig are independent knobs, not a
// single derived constant.
type BestPriceConfig struct {
	OtdWeight     float64 `envconfig:"AUTOLENIS_BESTPRICE_OTD_WEIGHT" default:"0.35"`
	MonthlyWeight float64 `envconfig:"AUTOLENIS_BESTPRICE_MONTHLY_WEIGHT" default:"0.35"`
	VehicleWeight float64 `envconfig:"AUTOLENIS_BESTPRICE_VEHICLE_WEIGHT" default:"0.15"`
	DealerWeight  float64 `envconfig:"AUTOLENIS_BESTPRICE_DEALER_WEIGHT" default:"0.10"`
	JunkFeeWeight float64 `envconfig:"AUTOLENIS_BESTPRICE_JUNK_FEE_WEIGHT" default:"0.05"`

	ShorterTermWeight   float64 `envconfig:"AUTOLENIS_BESTPRICE_SHORTER_TERM_WEIGHT" default:"1.0"`
	AprWeight           float64 `envconfig:"AUTOLENIS_BESTPRICE_APR_WEIGHT" default:"1.0"`
	MonthlyBudgetWeight float64 `envconfig:"AUTOLENIS_BESTPRICE_MONTHLY_BUDGET_WEIGHT" default:"1.0"`

	BudgetPenaltyPercent float64 `envconfig:"AUTOLENIS_BESTPRICE_BUDGET_PENALTY_PERCENT" default:"10"`
	TopN                 int     `envconfig:"AUTOLENIS_BESTPRICE_TOP_N" default:"5"`
}

type OffersConfig struct {
	OtdToleranceCents    int64   `envconfig:"AUTOLENIS_OFFERS_OTD_TOLERANCE_CENTS" default:"500"`
	BudgetWarningPercent float64 `envconfig:"AUTOLENIS_OFFERS_BUDGET_WARNING_PERCENT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AUTOLENIS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AUTOLENIS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUTOLENIS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AUTOLENIS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUTOLENIS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DealTopic        string `envconfig:"AUTOLENIS_PUBSUB_DEAL_TOPIC" default:"al-deal-events"`
	DealSubscription string `envconfig:"AUTOLENIS_PUBSUB_DEAL_SUBSCRIPTION"`
}

// RateLimitConfig throttles authenticated API traffic per user. Zero values
// disable the limiter.
type RateLimitConfig struct {
	Window            time.Duration `envconfig:"AUTOLENIS_RATE_LIMIT_WINDOW" default:"1m"`
	RequestsPerWindow int           `envconfig:"AUTOLENIS_RATE_LIMIT_REQUESTS_PER_WINDOW" default:"120"`
}

// CronConfig drives the scheduled worker. The interval is short because the
// expiry sweep is what actually closes auctions at their deadline.
type CronConfig struct {
	Interval            time.Duration `envconfig:"AUTOLENIS_CRON_INTERVAL" default:"1m"`
	LockTTL             time.Duration `envconfig:"AUTOLENIS_CRON_LOCK_TTL" default:"5m"`
	SweepBatchSize      int           `envconfig:"AUTOLENIS_CRON_SWEEP_BATCH_SIZE" default:"100"`
	OutboxRetentionDays int           `envconfig:"AUTOLENIS_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AUTOLENIS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AUTOLENIS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AUTOLENIS_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
