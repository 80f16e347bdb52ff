package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"simplesearch/internal/models"
)

type SearchConfig struct {
	DefaultLimit          int
	MaxLimit              int
	DefaultRankingProfile string
	CacheTTLSeconds       int
}

type Config struct {
	Server struct {
		Port string
	}
	Engine struct {
		URL  string
		Port int
	}
	Search   SearchConfig
	Database struct {
		URL string
	}
	Redis struct {
		URL string
	}
	RateLimit struct {
		PerMinute int
	}
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Deployment env vars are flat names, so bind them to the dotted keys explicitly.
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("engine.url", "ENGINE_URL")
	viper.BindEnv("engine.port", "ENGINE_PORT")
	viper.BindEnv("search.default_limit", "DEFAULT_LIMIT")
	viper.BindEnv("search.max_limit", "MAX_LIMIT")
	viper.BindEnv("search.default_ranking", "DEFAULT_RANKING_PROFILE")
	viper.BindEnv("search.cache_ttl_seconds", "SEARCH_CACHE_TTL_SECONDS")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL")
	viper.BindEnv("ratelimit.per_minute", "RATE_LIMIT_PER_MINUTE")

	var config Config

	// Set defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("engine.url", "http://localhost")
	viper.SetDefault("engine.port", 8080)
	viper.SetDefault("search.default_limit", 10)
	viper.SetDefault("search.max_limit", 100)
	viper.SetDefault("search.default_ranking", "bm25")
	viper.SetDefault("search.cache_ttl_seconds", 300)
	viper.SetDefault("ratelimit.per_minute", 60)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config.Server.Port = viper.GetString("server.port")
	config.Engine.URL = viper.GetString("engine.url")
	config.Engine.Port = viper.GetInt("engine.port")
	config.Search.DefaultLimit = viper.GetInt("search.default_limit")
	config.Search.MaxLimit = viper.GetInt("search.max_limit")
	config.Search.DefaultRankingProfile = viper.GetString("search.default_ranking")
	config.Search.CacheTTLSeconds = viper.GetInt("search.cache_ttl_seconds")
	config.Database.URL = viper.GetString("database.url")
	config.Redis.URL = viper.GetString("redis.url")
	config.RateLimit.PerMinute = viper.GetInt("ratelimit.per_minute")

	// An unrecognized override would make every query fail inside the engine,
	// so fall back to the profile the schema is known to ship with.
	if !models.IsKnownRankingProfile(config.Search.DefaultRankingProfile) {
		config.Search.DefaultRankingProfile = "bm25"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Engine.URL == "" {
		return fmt.Errorf("engine URL is required")
	}
	if c.Engine.Port < 1 || c.Engine.Port > 65535 {
		return fmt.Errorf("engine port %d is out of range", c.Engine.Port)
	}
	if c.Search.MaxLimit < 1 {
		return fmt.Errorf("max limit must be at least 1")
	}
	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be at least 1")
	}
	if c.Search.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}
	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per minute")
	}
	return nil
}

// EngineEndpoint joins the configured engine URL and port into the base
// endpoint queries are sent to.
func (c *Config) EngineEndpoint() string {
	return fmt.Sprintf("%s:%d", strings.TrimRight(c.Engine.URL, "/"), c.Engine.Port)
}
