package handlers

import (
	"io"
	"net/http"

	"footbrief-api/api/middleware"
	"footbrief-api/internal/chatbot"
	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxUpdateSize bounds the webhook body; Telegram updates are a few kilobytes
const maxUpdateSize = 1 << 20

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	chatbotService chatbot.ChatbotService
	logger         *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(chatbotService chatbot.ChatbotService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// HandleTelegramWebhook processes incoming Telegram webhook updates. It always
// answers 200 so that Telegram does not redeliver updates the bot cannot handle.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpdateSize))
	if err != nil {
		log.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		log.Warn("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.chatbotService.HandleWebhook(c.Request.Context(), body); err != nil {
		log.Error("Failed to process webhook",
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	log.Debug("Webhook processed successfully", "body_size", len(body))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SetupWebhook registers a webhook URL with Telegram; an empty URL removes it
func (h *WebhookHandler) SetupWebhook(c *gin.Context) {
	var request struct {
		WebhookURL *string `json:"webhook_url" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	log := middleware.RequestLogger(c, h.logger)
	log.Info("Setting up webhook", "webhook_url", *request.WebhookURL)

	if err := h.chatbotService.ConfigureWebhook(*request.WebhookURL); err != nil {
		log.Error("Failed to configure webhook", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to configure webhook",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"webhook_url": *request.WebhookURL,
	})
}
