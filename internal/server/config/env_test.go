package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	origEnv := envFile
	t.Cleanup(func() { envFile = origEnv })
	envFile = filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("PORT", "5050")
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("DATABASE_DSN", "postgres://x")
	t.Setenv("BADGER_PATH", "/data")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_EXPIRE", "7d")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("LOG_BACKEND", "logrus")
	t.Setenv("SEED_ON_START", "true")
	t.Setenv("S3_BUCKET", "images")
	t.Setenv("S3_BASE_ENDPOINT", "http://minio:9000/")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":5050", cfg.EndpointAddrHTTP)
	assert.Equal(t, StorageBadger, cfg.StorageDriver)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, "/data", cfg.BadgerPath)
	assert.Equal(t, "s3cr3t", cfg.SecretKey)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, "logrus", cfg.LogBackend)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, "images", cfg.S3Bucket)
	assert.Equal(t, "http://minio:9000/", cfg.S3BaseEndpoint)
	assert.Equal(t, "admin", cfg.S3RootUser, "unset variables keep their value")
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	origEnv := envFile
	t.Cleanup(func() { envFile = origEnv })

	envFile = filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FLASHDECK_TEST_DOTENV=1\nLOG_BACKEND=zap\n"), 0o600))
	t.Setenv("LOG_BACKEND", "")
	t.Cleanup(func() { os.Unsetenv("FLASHDECK_TEST_DOTENV") })
	require.NoError(t, os.Unsetenv("LOG_BACKEND"))

	cfg := &Config{LogBackend: "slog"}
	parseEnv(cfg)

	assert.Equal(t, "zap", cfg.LogBackend)
	assert.Equal(t, "1", os.Getenv("FLASHDECK_TEST_DOTENV"))
}

func Test_parseEnv_Malformed(t *testing.T) {
	origEnv := envFile
	t.Cleanup(func() { envFile = origEnv })
	envFile = filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		key, value string
	}{
		{"JWT_EXPIRE", "soon"},
		{"BCRYPT_COST", "high"},
		{"SEED_ON_START", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			require.Panics(t, func() { parseEnv(&Config{}) })
		})
	}
}
