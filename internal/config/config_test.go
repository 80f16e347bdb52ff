package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) (*Config, error) {
	t.Helper()
	viper.Reset()
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "http://localhost", cfg.Engine.URL)
	assert.Equal(t, 8080, cfg.Engine.Port)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, "bm25", cfg.Search.DefaultRankingProfile)
	assert.Equal(t, 300, cfg.Search.CacheTTLSeconds)
	assert.Equal(t, 60, cfg.RateLimit.PerMinute)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENGINE_URL", "http://vespa.internal")
	t.Setenv("ENGINE_PORT", "9100")
	t.Setenv("DEFAULT_LIMIT", "20")
	t.Setenv("MAX_LIMIT", "50")
	t.Setenv("DEFAULT_RANKING_PROFILE", "bm25_text_only")
	t.Setenv("SEARCH_CACHE_TTL_SECONDS", "60")
	t.Setenv("DATABASE_URL", "postgres://localhost/searches")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://vespa.internal", cfg.Engine.URL)
	assert.Equal(t, 9100, cfg.Engine.Port)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, "bm25_text_only", cfg.Search.DefaultRankingProfile)
	assert.Equal(t, 60, cfg.Search.CacheTTLSeconds)
	assert.Equal(t, "postgres://localhost/searches", cfg.Database.URL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoad_UnknownRankingProfileFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_RANKING_PROFILE", "definitely_not_deployed")

	cfg, err := loadClean(t)
	require.NoError(t, err)
	assert.Equal(t, "bm25", cfg.Search.DefaultRankingProfile)
}

func TestLoad_InvalidEnginePort(t *testing.T) {
	t.Setenv("ENGINE_PORT", "99999")

	_, err := loadClean(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Engine.URL = "http://localhost"
		c.Engine.Port = 8080
		c.Search.DefaultLimit = 10
		c.Search.MaxLimit = 100
		c.Search.CacheTTLSeconds = 300
		c.RateLimit.PerMinute = 60
		return c
	}

	t.Run("valid", func(t *testing.T) {
		c := valid()
		assert.NoError(t, c.Validate())
	})

	t.Run("missing engine url", func(t *testing.T) {
		c := valid()
		c.Engine.URL = ""
		assert.Error(t, c.Validate())
	})

	t.Run("engine port out of range", func(t *testing.T) {
		c := valid()
		c.Engine.Port = 0
		assert.Error(t, c.Validate())
	})

	t.Run("max limit below one", func(t *testing.T) {
		c := valid()
		c.Search.MaxLimit = 0
		assert.Error(t, c.Validate())
	})

	t.Run("default limit below one", func(t *testing.T) {
		c := valid()
		c.Search.DefaultLimit = 0
		assert.Error(t, c.Validate())
	})

	t.Run("negative cache ttl", func(t *testing.T) {
		c := valid()
		c.Search.CacheTTLSeconds = -1
		assert.Error(t, c.Validate())
	})
}

func TestEngineEndpoint(t *testing.T) {
	var c Config
	c.Engine.URL = "http://vespa.internal/"
	c.Engine.Port = 8080
	assert.Equal(t, "http://vespa.internal:8080", c.EngineEndpoint())

	c.Engine.URL = "http://localhost"
	assert.Equal(t, "http://localhost:8080", c.EngineEndpoint())
}
