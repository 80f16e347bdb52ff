package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"simplesearch/internal/models"
)

// Manager holds the optional analytics store and cache connections. Either
// side may be absent: a nil DB means analytics is disabled, a nil Redis
// means result caching is disabled.
type Manager struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *logrus.Logger
}

// Database configuration
type Config struct {
	DatabaseURL string
	RedisURL    string
	LogLevel    string
}

// NewManager connects whichever backends are configured. At least one URL
// must be set; a configured backend that cannot be reached is an error.
func NewManager(config *Config, log *logrus.Logger) (*Manager, error) {
	if config.DatabaseURL == "" && config.RedisURL == "" {
		return nil, fmt.Errorf("neither database nor redis is configured")
	}

	m := &Manager{logger: log}

	if config.DatabaseURL != "" {
		gormLogger := logger.Default.LogMode(logger.Silent)
		if config.LogLevel == "debug" {
			gormLogger = logger.Default.LogMode(logger.Info)
		}

		db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{
			Logger:                 gormLogger,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		// Connection pool settings
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)

		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		m.DB = db
	}

	if config.RedisURL != "" {
		redisOpts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}

		// Configure Redis connection pool
		redisOpts.PoolSize = 20
		redisOpts.MinIdleConns = 5
		redisOpts.MaxConnAge = time.Hour
		redisOpts.IdleTimeout = 30 * time.Minute
		redisOpts.IdleCheckFrequency = 30 * time.Second

		redisClient := redis.NewClient(redisOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		m.Redis = redisClient
	}

	log.WithFields(logrus.Fields{
		"database": m.DB != nil,
		"redis":    m.Redis != nil,
	}).Info("Storage connections established")

	return m, nil
}

// Migrate runs database migrations for the analytics tables.
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return nil
	}
	m.logger.Info("Running database migrations...")

	return m.DB.AutoMigrate(
		&models.SearchQuery{},
		&models.PopularQuery{},
	)
}

// Close closes all database connections
func (m *Manager) Close() error {
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close Redis connection")
		}
	}

	if m.DB != nil {
		sqlDB, err := m.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

// Health check methods
func (m *Manager) PingDatabase() error {
	if m.DB == nil {
		return fmt.Errorf("database not configured")
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (m *Manager) PingRedis() error {
	if m.Redis == nil {
		return fmt.Errorf("redis not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Redis.Ping(ctx).Err()
}

// Cache wraps the redis client for search-result and suggestion caching.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	SearchResultsKey  = "search:results:%s"
	PopularQueriesKey = "popular:queries"
)

// CacheSearchResults stores a normalized search result under its request key.
func (c *Cache) CacheSearchResults(ctx context.Context, key string, results interface{}, expiration time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	return c.client.Set(ctx, fmt.Sprintf(SearchResultsKey, key), data, expiration).Err()
}

// GetCachedSearchResults retrieves cached search results
func (c *Cache) GetCachedSearchResults(ctx context.Context, key string, result interface{}) error {
	data, err := c.client.Get(ctx, fmt.Sprintf(SearchResultsKey, key)).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// CachePopularQueries caches popular queries list
func (c *Cache) CachePopularQueries(ctx context.Context, queries []models.PopularQuery, expiration time.Duration) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to marshal popular queries: %w", err)
	}

	return c.client.Set(ctx, PopularQueriesKey, data, expiration).Err()
}

// GetCachedPopularQueries retrieves cached popular queries
func (c *Cache) GetCachedPopularQueries(ctx context.Context) ([]models.PopularQuery, error) {
	data, err := c.client.Get(ctx, PopularQueriesKey).Result()
	if err != nil {
		return nil, err
	}

	var queries []models.PopularQuery
	err = json.Unmarshal([]byte(data), &queries)
	return queries, err
}
