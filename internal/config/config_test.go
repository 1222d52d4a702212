package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "SERVER_SHUTDOWN_TIMEOUT", "DB_ENABLED", "REDIS_ENABLED", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "2m")
	t.Setenv("LOG_FORMAT", "console")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Minute, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("DB_ENABLED", "maybe")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MOOVE_TEST_FROM_FILE=file\nMOOVE_TEST_PRESET=file\n"), 0o600))

	t.Setenv("MOOVE_TEST_PRESET", "env")
	t.Setenv("MOOVE_TEST_FROM_FILE", "")
	os.Unsetenv("MOOVE_TEST_FROM_FILE")

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("MOOVE_TEST_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("MOOVE_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("MOOVE_TEST_PRESET"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
