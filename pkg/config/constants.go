package config

const (
	EnvPrefix = "CRAMSHEETS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CRAMSHEETS_DB_DSN"
	EnvDBHost = "CRAMSHEETS_DB_HOST"
	EnvDBUser = "CRAMSHEETS_DB_USER"
	EnvDBName = "CRAMSHEETS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
