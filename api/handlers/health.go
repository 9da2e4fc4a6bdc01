package handlers

import (
	"context"
	"net/http"
	"time"

	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const serviceName = "footbrief-api"

// Pinger reports whether the record backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger  Pinger
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealthHandler(pinger Pinger, timeout time.Duration, logger *logger.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{
		pinger:  pinger,
		timeout: timeout,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	statusCode := http.StatusOK

	if h.pinger == nil {
		status = "error"
		statusCode = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Error("Record store health check failed", "error", err)
			status = "error"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
