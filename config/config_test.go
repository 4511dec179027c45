package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"HOST":              "127.0.0.1",
		"PORT":              "9090",
		"DB_PATH":           "/tmp/hub.db",
		"AUTO_MIGRATE":      "false",
		"ADMIN_ADDR":        ":9091",
		"MAX_REQUEST_BYTES": "1024",
		"NOTIFY_TIMEOUT":    "250ms",
		"LOG_LEVEL":         "DEBUG",
		"LOG_FORMAT":        "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr())
	assert.Equal(t, "/tmp/hub.db", cfg.DBPath)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, ":9091", cfg.AdminAddr)
	assert.Equal(t, int64(1024), cfg.MaxRequestBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":              "http",
		"AUTO_MIGRATE":      "sometimes",
		"MAX_REQUEST_BYTES": "big",
		"NOTIFY_TIMEOUT":    "soon",
	}
	for key, value := range cases {
		_, err := FromEnv(envMap(map[string]string{key: value}))
		if assert.Error(t, err, key) {
			assert.Contains(t, err.Error(), key)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxRequestBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_PATH=from-dotenv.db\n"), 0o600))

	// godotenv never overrides variables that are already set
	t.Setenv("PORT", "7070")
	os.Unsetenv("DB_PATH")
	t.Cleanup(func() { os.Unsetenv("DB_PATH") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
