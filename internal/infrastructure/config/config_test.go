package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ppm-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Sync.RetryBaseDelay)
	assert.Equal(t, 24*time.Hour, cfg.Event.DedupTTL)
	assert.Equal(t, "memory", cfg.Event.DedupBackend)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PPM_DATABASE_HOST", "db.internal")
	t.Setenv("PPM_SYNC_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 8, cfg.Sync.Workers)
}

func TestLoad_Integrations(t *testing.T) {
	dir := t.TempDir()
	toml := `
[integrations.prestashop.shop-1]
base_url = "https://shop.example.com"
api_key = "key-1"
requests_per_second = 2.5

[integrations.baselinker.account-1]
token = "token-1"
inventory_id = "456"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	require.Contains(t, cfg.Integrations.Prestashop, "shop-1")
	shop := cfg.Integrations.Prestashop["shop-1"]
	assert.Equal(t, "https://shop.example.com", shop.BaseURL)
	assert.Equal(t, "key-1", shop.APIKey)
	assert.InDelta(t, 2.5, shop.RequestsPerSecond, 0.001)

	require.Contains(t, cfg.Integrations.Baselinker, "account-1")
	account := cfg.Integrations.Baselinker["account-1"]
	assert.Equal(t, "token-1", account.Token)
	assert.Equal(t, "456", account.InventoryID)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		t.Chdir(t.TempDir())
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := base(t)
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("base delay cannot exceed max delay", func(t *testing.T) {
		cfg := base(t)
		cfg.Sync.RetryBaseDelay = time.Hour
		cfg.Sync.RetryMaxDelay = time.Second
		assert.Error(t, cfg.validate())
	})

	t.Run("unknown dedup backend", func(t *testing.T) {
		cfg := base(t)
		cfg.Event.DedupBackend = "memcached"
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := base(t)
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "ppm",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "sslmode=disable")
	// password is URL-escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
