package routes

import (
	"time"

	"footbrief-api/api/handlers"
	"footbrief-api/api/middleware"
	"footbrief-api/internal/chatbot"
	"footbrief-api/internal/events"
	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Dependencies groups what the HTTP layer needs
type Dependencies struct {
	Pinger        handlers.Pinger
	HealthTimeout time.Duration
	Chatbot       chatbot.ChatbotService
	EventBus      events.EventBus
	AdminToken    string
	Logger        *logger.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(deps.Pinger, deps.HealthTimeout, deps.Logger)
	webhookHandler := handlers.NewWebhookHandler(deps.Chatbot, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.EventBus, deps.Logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)

		admin := v1.Group("/admin", middleware.BearerAuth(deps.AdminToken, deps.Logger))
		admin.POST("/users/:id/premium", adminHandler.SetPremium)
		admin.POST("/telegram/webhook", webhookHandler.SetupWebhook)
	}

	router.GET("/health", healthHandler.Check)
}
