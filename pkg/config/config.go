package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Commission    CommissionConfig
	Realtime      RealtimeConfig
	Cron          CronConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETPLACE_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETPLACE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MARKETPLACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETPLACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETPLACE_DB_DSN"`
	Driver string `envconfig:"MARKETPLACE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MARKETPLACE_DB_HOST"`
	Port     int    `envconfig:"MARKETPLACE_DB_PORT" default:"5432"`
	User     string `envconfig:"MARKETPLACE_DB_USER"`
	Password string `envconfig:"MARKETPLACE_DB_PASSWORD"`
	Name     string `envconfig:"MARKETPLACE_DB_NAME"`
	SSLMode  string `envconfig:"MARKETPLACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETPLACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETPLACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETPLACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETPLACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MARKETPLACE_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// IsSQLite reports whether the local file-backed driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETPLACE_REDIS_URL"`
	Address      string        `envconfig:"MARKETPLACE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"MARKETPLACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETPLACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETPLACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETPLACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MARKETPLACE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MARKETPLACE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MARKETPLACE_JWT_ISSUER" default:"marketplace"`
	ExpirationMinutes int    `envconfig:"MARKETPLACE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL is the lifetime of an access token and its redis session.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MARKETPLACE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MARKETPLACE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MARKETPLACE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MARKETPLACE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MARKETPLACE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MARKETPLACE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CommissionConfig struct {
	Rate string `envconfig:"MARKETPLACE_COMMISSION_RATE" default:"0.10"`
}

// DecimalRate parses Rate. Load has already validated it.
func (c CommissionConfig) DecimalRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.Rate))
	if err != nil {
		return decimal.RequireFromString("0.10")
	}
	return rate
}

// commissionRateScale matches the numeric(5,4) rate column of commissions.
const commissionRateScale = 4

func (c CommissionConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.Rate))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvCommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be in [0, 1), got %s", EnvCommissionRate, c.Rate)
	}
	if !rate.Equal(rate.Truncate(commissionRateScale)) {
		return fmt.Errorf("%s allows at most %d decimal places, got %s", EnvCommissionRate, commissionRateScale, c.Rate)
	}
	return nil
}

type RealtimeConfig struct {
	ClientBuffer int           `envconfig:"MARKETPLACE_REALTIME_CLIENT_BUFFER" default:"32"`
	WriteTimeout time.Duration `envconfig:"MARKETPLACE_REALTIME_WRITE_TIMEOUT" default:"10s"`
	PingInterval time.Duration `envconfig:"MARKETPLACE_REALTIME_PING_INTERVAL" default:"30s"`
	RelayEnabled bool          `envconfig:"MARKETPLACE_REALTIME_RELAY_ENABLED" default:"false"`
	RelayChannel string        `envconfig:"MARKETPLACE_REALTIME_RELAY_CHANNEL" default:"mk:events"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"MARKETPLACE_CRON_INTERVAL" default:"15m"`
	LockTTL    time.Duration `envconfig:"MARKETPLACE_CRON_LOCK_TTL" default:"10m"`
	JobTimeout time.Duration `envconfig:"MARKETPLACE_CRON_JOB_TIMEOUT" default:"2m"`
	// MetricsAddr serves /metrics from the worker when set, e.g. ":9091".
	MetricsAddr string `envconfig:"MARKETPLACE_CRON_METRICS_ADDR"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MARKETPLACE_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETPLACE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
