package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("BACKEND_URL", "https://example.supabase.co")
	t.Setenv("BACKEND_ANON_KEY", "anon-key")
}

func TestNew_RequiredFieldMissing(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BACKEND_ANON_KEY", "anon-key")

	cfg, err := New()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required config")
	assert.Contains(t, err.Error(), "BACKEND_URL")
	assert.Contains(t, err.Error(), "backend_url")
	assert.NotContains(t, err.Error(), "BACKEND_ANON_KEY")
}

func TestNew_BothRequiredFieldsMissing(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BACKEND_ANON_KEY", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL (backend_url)")
	assert.Contains(t, err.Error(), "BACKEND_ANON_KEY (backend_anon_key)")
}

func TestNew_WithEnvVar(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKEND_URL", "https://example.supabase.co/")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", cfg.BackendURL)
	assert.Equal(t, "anon-key", cfg.BackendAnonKey)
	assert.Equal(t, "anon-key", cfg.StorageKey())
}

func TestNew_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backend_url: https://file.supabase.co
backend_anon_key: file-key
server_port: 8080
database_url: /data/rakbuku.db
storage_bucket: covers
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "https://file.supabase.co", cfg.BackendURL)
	assert.Equal(t, "/data/rakbuku.db", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "covers", cfg.StorageBucket)
}

func TestNew_EnvVarOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backend_url: https://file.supabase.co
backend_anon_key: file-key
server_port: 8080
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("BACKEND_ANON_KEY", "env-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.BackendAnonKey)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestNew_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DatabaseConnectRetryCount)
	assert.Equal(t, 2*time.Second, cfg.DatabaseConnectRetryDelay)
	assert.Equal(t, 3689, cfg.ServerPort)
	assert.Equal(t, "book-covers", cfg.StorageBucket)
	assert.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, IdentityDriverBackend, cfg.IdentityDriver)
	assert.Equal(t, StorageDriverBackend, cfg.StorageDriver)
	assert.Equal(t, RevalidateDriverLog, cfg.RevalidateDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiry)
	assert.True(t, cfg.ExposeInternalErrors, "development exposes internal errors")
}

func TestNew_ProductionHidesInternalErrors(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := New()
	require.NoError(t, err)
	assert.False(t, cfg.ExposeInternalErrors)
	assert.Equal(t, "production", cfg.Environment)
}

func TestNew_LocalIdentityRequiresJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IDENTITY_DRIVER", "local")
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage_driver")
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, IdentityDriverLocal, cfg.IdentityDriver)
	assert.Equal(t, StorageDriverLocal, cfg.StorageDriver)
	assert.True(t, cfg.IsTest())
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "backend_anon_key", toSnakeCase("BackendAnonKey"))
	assert.Equal(t, "server_port", toSnakeCase("ServerPort"))
	assert.Equal(t, "upload_max_bytes", toSnakeCase("UploadMaxBytes"))
}
