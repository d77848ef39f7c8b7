package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry explicit
	// AUTOLENIS_* names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AUTOLENIS_DB_DSN"
	EnvDBHost = "AUTOLENIS_DB_HOST"
	EnvDBUser = "AUTOLENIS_DB_USER"
	EnvDBName = "AUTOLENIS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
