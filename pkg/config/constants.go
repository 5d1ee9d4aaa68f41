package config

const (
	EnvPrefix = "ABC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

const (
	EnvAppEnv   = "ABC_APP_ENV"
	EnvPort     = "ABC_APP_PORT"
	EnvLogLevel = "ABC_LOG_LEVEL"

	EnvDBDSN  = "ABC_DB_DSN"
	EnvDBHost = "ABC_DB_HOST"
	EnvDBUser = "ABC_DB_USER"
	EnvDBName = "ABC_DB_NAME"

	EnvRedisURL = "ABC_REDIS_URL"

	EnvJWTSecret = "ABC_JWT_SECRET"
	EnvJWTIssuer = "ABC_JWT_ISSUER"

	EnvGCPProjectID = "ABC_GCP_PROJECT_ID"
	EnvGCSBucket    = "ABC_GCS_BUCKET_NAME"

	EnvStorageDriver    = "ABC_STORAGE_DRIVER"
	EnvStorageLocalRoot = "ABC_STORAGE_LOCAL_ROOT"

	EnvStagingTTL = "ABC_STAGING_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
