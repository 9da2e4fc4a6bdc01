package handlers

import (
	"net/http"
	"strconv"

	"footbrief-api/api/middleware"
	"footbrief-api/internal/events"
	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// EntitlementSourceAdmin tags entitlement changes made through the admin API
const EntitlementSourceAdmin = "admin_api"

// AdminHandler exposes the entitlement hook used by billing
type AdminHandler struct {
	eventBus events.EventBus
	logger   *logger.Logger
}

func NewAdminHandler(eventBus events.EventBus, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		eventBus: eventBus,
		logger:   logger,
	}
}

type premiumRequest struct {
	Premium *bool  `json:"premium" binding:"required"`
	Source  string `json:"source"`
}

// SetPremium publishes an entitlement change for the user in the path. The change
// is applied by the bus subscribers; 202 means it was accepted, not delivered.
func (h *AdminHandler) SetPremium(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var request premiumRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	source := request.Source
	if source == "" {
		source = EntitlementSourceAdmin
	}

	log := middleware.RequestLogger(c, h.logger).WithUserID(userID)
	event, err := events.PublishEntitlementChanged(h.eventBus, events.EntitlementChanged{
		UserID:  userID,
		Premium: *request.Premium,
		Source:  source,
	})
	if err != nil {
		log.Error("Failed to publish entitlement change", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "entitlement change not accepted"})
		return
	}

	log.Info("Entitlement change accepted",
		"premium", event.Premium,
		"source", source,
		"correlation_id", event.CorrelationID)

	c.JSON(http.StatusAccepted, gin.H{
		"ok":             true,
		"user_id":        userID,
		"premium":        event.Premium,
		"correlation_id": event.CorrelationID,
	})
}
