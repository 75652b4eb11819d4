package config

const (
	EnvPrefix = "INVENTORY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "INVENTORY_APP_ENV"
	EnvPort     = "INVENTORY_APP_PORT"
	EnvLogLevel = "INVENTORY_LOG_LEVEL"

	EnvDBDSN    = "INVENTORY_DB_DSN"
	EnvDBDriver = "INVENTORY_DB_DRIVER"
	EnvDBHost   = "INVENTORY_DB_HOST"
	EnvDBUser   = "INVENTORY_DB_USER"
	EnvDBName   = "INVENTORY_DB_NAME"

	EnvRedisURL = "INVENTORY_REDIS_URL"

	EnvMonitorInterval    = "INVENTORY_MONITOR_INTERVAL"
	EnvReorderWindowDays  = "INVENTORY_REORDER_WINDOW_DAYS"
	EnvReorderMinQuantity = "INVENTORY_REORDER_MIN_QUANTITY"

	EnvSupplierWebhookURL       = "INVENTORY_SUPPLIER_WEBHOOK_URL"
	EnvSupplierWebhookSecret    = "INVENTORY_SUPPLIER_WEBHOOK_SECRET"
	EnvSupplierConfirmDelay     = "INVENTORY_SUPPLIER_CONFIRM_DELAY"
	EnvSupplierConfirmAutomatic = "INVENTORY_SUPPLIER_CONFIRM_AUTOMATIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
