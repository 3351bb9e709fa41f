package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "MARKETPLACE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "MARKETPLACE_APP_ENV"
	EnvPort             = "MARKETPLACE_APP_PORT"
	EnvLogLevel         = "MARKETPLACE_LOG_LEVEL"
	EnvDBDSN            = "MARKETPLACE_DB_DSN"
	EnvDBDriver         = "MARKETPLACE_DB_DRIVER"
	EnvDBHost           = "MARKETPLACE_DB_HOST"
	EnvDBUser           = "MARKETPLACE_DB_USER"
	EnvDBName           = "MARKETPLACE_DB_NAME"
	EnvRedisURL         = "MARKETPLACE_REDIS_URL"
	EnvJWTSecret        = "MARKETPLACE_JWT_SECRET"
	EnvJWTIssuer        = "MARKETPLACE_JWT_ISSUER"
	EnvJWTExpMins       = "MARKETPLACE_JWT_EXPIRATION_MINUTES"
	EnvCommissionRate   = "MARKETPLACE_COMMISSION_RATE"
	EnvRealtimeRelay    = "MARKETPLACE_REALTIME_RELAY_ENABLED"
	EnvCronInterval     = "MARKETPLACE_CRON_INTERVAL"
	EnvCORSAllowOrigins = "MARKETPLACE_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
