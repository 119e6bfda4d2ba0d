package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/flashdeck/internal/timex"
)

// envFile is loaded into the process environment when present. Variables
// already set in the environment win over the file.
var envFile = ".env"

// parseEnv overlays values from environment variables:
//
//	PORT            HTTP port (binds ":"+PORT)
//	STORAGE_DRIVER  postgres | badger
//	DATABASE_DSN    PostgreSQL DSN
//	BADGER_PATH     badger data directory
//	JWT_SECRET      token signing secret
//	JWT_EXPIRE      token lifetime ("7d", "168h")
//	BCRYPT_COST     password hashing work factor
//	LOG_BACKEND     slog | zap | logrus
//	SEED_ON_START   true | false
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Malformed numeric, boolean or duration values panic, like a malformed
// config file does.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	lookupString("STORAGE_DRIVER", &config.StorageDriver)
	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("BADGER_PATH", &config.BadgerPath)
	lookupString("JWT_SECRET", &config.SecretKey)
	if v, ok := os.LookupEnv("JWT_EXPIRE"); ok && v != "" {
		d, err := timex.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
	lookupString("LOG_BACKEND", &config.LogBackend)
	if v, ok := os.LookupEnv("SEED_ON_START"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SeedOnStart = b
	}
	lookupString("S3_ROOT_USER", &config.S3RootUser)
	lookupString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	lookupString("S3_BUCKET", &config.S3Bucket)
	lookupString("S3_REGION", &config.S3Region)
	lookupString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
