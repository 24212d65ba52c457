package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomovies/config"
	"gomovies/internal/domain"
)

// withoutFile aponta CONFIG_PATH para um arquivo inexistente.
func withoutFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "ausente.yaml"))
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	withoutFile(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := config.LoadConfig()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadConfigDefaults(t *testing.T) {
	withoutFile(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/gomovies")
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, domain.EligibleUnpublished, cfg.RatingEligibility)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.Equal(t, "gomovies", cfg.JWTIssuer)
	assert.Equal(t, "gomovies-api", cfg.JWTAudience)
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database_url: "file:gomovies.db"
db_driver: SQLite
jwt_secret_key: do-arquivo
jwt_expiry_hours: 2
rating_eligibility: published
rate_limit_max_requests: 0
api_keys:
  - chave-a
  - chave-b
cors_allowed_origins: "https://a.dev, https://b.dev"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET_KEY", "do-ambiente")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:gomovies.db", cfg.DatabaseURL)
	assert.Equal(t, "do-ambiente", cfg.JWTSecretKey)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, domain.EligiblePublished, cfg.RatingEligibility)
	assert.Equal(t, 0, cfg.RateLimitMaxRequests)
	assert.Equal(t, []string{"chave-a", "chave-b"}, cfg.APIKeys)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigCollectsInvalidValues(t *testing.T) {
	withoutFile(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/gomovies")
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("DB_TIMEOUT_SEC", "cinco")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("RATING_ELIGIBILITY", "sempre")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "-1")

	_, err := config.LoadConfig()

	require.Error(t, err)
	for _, key := range []string{"DB_TIMEOUT_SEC", "DB_DRIVER", "RATING_ELIGIBILITY", "RATE_LIMIT_MAX_REQUESTS"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [8080"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := config.LoadConfig()

	assert.Error(t, err)
}
