package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_PREFIX", "")
	t.Setenv("PREFS_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kanban-board", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:3000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "http://localhost:5225/api/api", cfg.API.Endpoint())
	assert.Equal(t, 15*time.Second, cfg.API.Timeout())
	assert.Equal(t, PrefsBackendSQLite, cfg.Preferences.Backend)
	assert.Equal(t, "default", cfg.Preferences.Scope)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "en", cfg.View.Locale)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://tracker.example.com/")
	t.Setenv("API_PREFIX", "v2/")
	t.Setenv("API_TIMEOUT_SECONDS", "0")
	t.Setenv("PREFS_BACKEND", "Redis")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example.com/v2", cfg.API.Endpoint())
	assert.Zero(t, cfg.API.Timeout())
	assert.Equal(t, PrefsBackendRedis, cfg.Preferences.Backend)
	assert.True(t, cfg.Auth.Enabled)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("PREFS_BACKEND", "localstorage")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREFS_BACKEND")
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	require.Error(t, err)
}
