package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600)
	require.NoError(t, err)
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeEnvFile(t, "DB_SOURCE=postgres://u:p@localhost:5432/pins?sslmode=disable\nSERVER_ADDRESS=0.0.0.0:9000\nREQUEST_TIMEOUT=3s\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/pins?sslmode=disable", cfg.DBSource)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.DBPingTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := writeEnvFile(t, "DB_SOURCE=postgres://file\n")
	t.Setenv("DB_SOURCE", "postgres://env")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DBSource)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgres://env-only")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-only", cfg.DBSource)
	assert.Equal(t, ":8080", cfg.ServerAddress)
}

func TestLoadConfig_RequiresDBSource(t *testing.T) {
	t.Setenv("DB_SOURCE", "")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
