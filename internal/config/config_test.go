package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard_test")
	t.Setenv("PORT", "")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(5), cfg.MaxCVSizeMB)
	assert.Equal(t, 5*time.Second, cfg.AnalysisDelay)
	assert.Equal(t, int64(2), cfg.AnalysisWorkers)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadServerRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadServerRejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard_test")

	t.Setenv("PORT", "not-a-number")
	_, err := LoadServer()
	assert.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = LoadServer()
	assert.Error(t, err)

	t.Setenv("PORT", "8080")
	t.Setenv("ANALYSIS_WORKERS", "0")
	_, err = LoadServer()
	assert.Error(t, err)
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "72")
	cfg, err = NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}
