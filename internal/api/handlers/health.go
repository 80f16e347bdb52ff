package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"simplesearch/internal/health"
)

type HealthHandler struct {
	checker *health.HealthChecker
	logger  *logrus.Logger
}

func NewHealthHandler(checker *health.HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// HandleHealth reports live status for the engine and configured backends.
// Responds 503 when any checked service is unhealthy.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall := h.checker.CheckAll(c.Request.Context())

	status := http.StatusOK
	if overall.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, overall)
}
