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
	Monitor      MonitorConfig
	Reorder      ReorderConfig
	Supplier     SupplierConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reorder.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVENTORY_APP_ENV" required:"true"`
	Port         string `envconfig:"INVENTORY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"INVENTORY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"INVENTORY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"INVENTORY_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"INVENTORY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"INVENTORY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"INVENTORY_DB_DSN"`
	Driver string `envconfig:"INVENTORY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INVENTORY_DB_HOST"`
	LegacyPort     int    `envconfig:"INVENTORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVENTORY_DB_USER"`
	LegacyPassword string `envconfig:"INVENTORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVENTORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVENTORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INVENTORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVENTORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"INVENTORY_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL            string        `envconfig:"INVENTORY_REDIS_URL" required:"true"`
	Address        string        `envconfig:"INVENTORY_REDIS_ADDR"`
	Password       string        `envconfig:"INVENTORY_REDIS_PASSWORD"`
	DB             int           `envconfig:"INVENTORY_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"INVENTORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"INVENTORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"INVENTORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"INVENTORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"INVENTORY_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"INVENTORY_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type MonitorConfig struct {
	Enabled     bool          `envconfig:"INVENTORY_MONITOR_ENABLED" default:"true"`
	Interval    time.Duration `envconfig:"INVENTORY_MONITOR_INTERVAL" default:"30s"`
	BackoffBase time.Duration `envconfig:"INVENTORY_MONITOR_BACKOFF_BASE" default:"1s"`
	BackoffMax  time.Duration `envconfig:"INVENTORY_MONITOR_BACKOFF_MAX" default:"30s"`
}

type ReorderConfig struct {
	WindowDays  int `envconfig:"INVENTORY_REORDER_WINDOW_DAYS" default:"30"`
	MinQuantity int `envconfig:"INVENTORY_REORDER_MIN_QUANTITY" default:"10"`
}

func (r ReorderConfig) validate() error {
	if r.WindowDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvReorderWindowDays)
	}
	if r.MinQuantity < 0 {
		return fmt.Errorf("%s must not be negative", EnvReorderMinQuantity)
	}
	return nil
}

type SupplierConfig struct {
	WebhookURL       string        `envconfig:"INVENTORY_SUPPLIER_WEBHOOK_URL" default:"http://localhost:8080/webhook/order-confirmation"`
	WebhookSecret    string        `envconfig:"INVENTORY_SUPPLIER_WEBHOOK_SECRET"`
	WebhookIssuer    string        `envconfig:"INVENTORY_SUPPLIER_WEBHOOK_ISSUER" default:"supplier-simulator"`
	ConfirmDelay     time.Duration `envconfig:"INVENTORY_SUPPLIER_CONFIRM_DELAY" default:"1500ms"`
	ConfirmWorkers   int           `envconfig:"INVENTORY_SUPPLIER_CONFIRM_WORKERS" default:"4"`
	ConfirmQueueSize int           `envconfig:"INVENTORY_SUPPLIER_CONFIRM_QUEUE_SIZE" default:"256"`
	ConfirmAutomatic bool          `envconfig:"INVENTORY_SUPPLIER_CONFIRM_AUTOMATIC" default:"false"`
	RequestTimeout   time.Duration `envconfig:"INVENTORY_SUPPLIER_REQUEST_TIMEOUT" default:"10s"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"INVENTORY_CRON_INTERVAL" default:"1h"`
	LockTTL          time.Duration `envconfig:"INVENTORY_CRON_LOCK_TTL" default:"30m"`
	DemandSimulation bool          `envconfig:"INVENTORY_CRON_DEMAND_SIMULATION" default:"false"`
	// MetricsAddr serves /metrics for the long-running worker; empty disables it.
	MetricsAddr string `envconfig:"INVENTORY_CRON_METRICS_ADDR" default:":9091"`
}

// RateLimitConfig throttles the supplier webhook per client IP. A zero limit disables it.
type RateLimitConfig struct {
	WebhookWindow time.Duration `envconfig:"INVENTORY_WEBHOOK_RATE_LIMIT_WINDOW" default:"1m"`
	WebhookLimit  int           `envconfig:"INVENTORY_WEBHOOK_RATE_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"INVENTORY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"INVENTORY_AUTO_MIGRATE" default:"false"`
	SeedData    bool `envconfig:"INVENTORY_SEED_DATA" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:inventory.db?_foreign_keys=on"
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
