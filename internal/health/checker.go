package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"simplesearch/internal/database"
	"simplesearch/internal/engine"
)

// HealthChecker manages health checks for the engine and the optional
// storage backends.
type HealthChecker struct {
	provider  *engine.Provider
	dbManager *database.Manager
	logger    *logrus.Logger
}

// NewHealthChecker wires the checker. dbManager may be nil when neither
// analytics nor caching is configured; only the engine is checked then.
func NewHealthChecker(provider *engine.Provider, dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		provider:  provider,
		dbManager: dbManager,
		logger:    logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckEngine checks search engine health
func (h *HealthChecker) CheckEngine(ctx context.Context) ServiceHealth {
	start := time.Now()
	err := h.provider.Get().Ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Engine health check failed")
	}

	return ServiceHealth{
		Name:         "engine",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckPostgreSQL checks PostgreSQL database health
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("PostgreSQL health check failed")
	}

	return ServiceHealth{
		Name:         "postgresql",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckRedis checks Redis cache health
func (h *HealthChecker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Redis health check failed")
	}

	return ServiceHealth{
		Name:         "redis",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on the engine and whichever storage
// backends are configured.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := []ServiceHealth{
		h.CheckEngine(ctx),
	}
	if h.dbManager != nil && h.dbManager.DB != nil {
		services = append(services, h.CheckPostgreSQL())
	}
	if h.dbManager != nil && h.dbManager.Redis != nil {
		services = append(services, h.CheckRedis())
	}

	overallStatus := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).String()
}
