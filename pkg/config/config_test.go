package config

import (
	"testing"
	"time"

	"NeighborWatch/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	for _, k := range []string{"ADDR", "PORT", "DB_DRIVER", "DB_DATABASE", "DB_NAME", "UPLOAD_DIR", "CORS_ORIGINS", "STORAGE_DRIVER", "DB_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "0.0.0.0:5173", cfg.ListenAddr())
	assert.Equal(t, util.DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.DB.Timeout)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.Equal(t, DefaultOrigins, cfg.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "pg")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "barrio")
	t.Setenv("DB_DATABASE", "")
	t.Setenv("DB_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://app.example.org, https://admin.example.org")
	t.Setenv("UPLOAD_DIR", "/var/lib/alerts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
	assert.Equal(t, util.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "barrio", cfg.DB.Name)
	assert.Equal(t, 2*time.Second, cfg.DB.Timeout)
	assert.Equal(t, []string{"https://app.example.org", "https://admin.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, "/var/lib/alerts", cfg.Storage.Dir)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}
