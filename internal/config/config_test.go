package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.RecentLimit)
	assert.Equal(t, 50, cfg.PublicHistoryLimit)
	assert.Equal(t, "ledger:changes", cfg.RedisChannel)
	assert.Empty(t, cfg.Users)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_APP_ENV", "prod")
	t.Setenv("LEDGER_JWT_ACCESS_SECRET", "a-real-secret")
	t.Setenv("LEDGER_JWT_REFRESH_SECRET", "another-real-secret")
	t.Setenv("LEDGER_DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_USERS", "direktur:director:h1,bendahara:treasurer:h2")
	t.Setenv("LEDGER_RECENT_LIMIT", "5")
	t.Setenv("LEDGER_ACCESS_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, []string{"direktur:director:h1", "bendahara:treasurer:h2"}, cfg.Users)
	assert.Equal(t, 5, cfg.RecentLimit)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
}

func TestValidate(t *testing.T) {
	base := Config{Env: AppEnvProd, JWTAccessSecret: "s1", JWTRefreshSecret: "s2", Users: []string{"u"}, DatabaseURL: "postgres://x", AccessTTL: time.Minute, RefreshTTL: time.Hour}
	require.NoError(t, base.Validate())

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"default secret in prod", func(c *Config) { c.JWTAccessSecret = "changeme-access" }},
		{"no users in prod", func(c *Config) { c.Users = nil }},
		{"no database in prod", func(c *Config) { c.DatabaseURL = "" }},
		{"zero ttl", func(c *Config) { c.RefreshTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mut(&c)
			assert.Error(t, c.Validate())
		})
	}

	dev := Config{Env: "DEV", AccessTTL: time.Minute, RefreshTTL: time.Hour}
	assert.NoError(t, dev.Validate())
}
