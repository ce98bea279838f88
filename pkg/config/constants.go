package config

const (
	EnvPrefix = "PATIO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
