package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"footbrief-api/api/routes"
	"footbrief-api/internal/chatbot"
	"footbrief-api/internal/config"
	"footbrief-api/internal/events"
	"footbrief-api/internal/league"
	"footbrief-api/internal/menu"
	"footbrief-api/internal/preferences"
	"footbrief-api/internal/records"
	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.Server.Environment)
	defer logger.Sync()

	zapLogger := logger.Zap()
	clock := clockwork.NewRealClock()

	backend, closeBackend, err := records.NewBackend(context.Background(), cfg, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize record store", "driver", cfg.Store.Driver, "error", err)
	}
	store := records.NewStore(backend, cfg.Store, clock, zapLogger)

	var cache *preferences.Cache
	if cfg.Cache.Enabled {
		cache = preferences.NewCache(cfg.Cache.Capacity, time.Duration(cfg.Cache.TTL)*time.Second, clock)
	}

	catalog := league.Default()
	prefService, err := preferences.NewPreferenceService(store, cache, catalog, cfg.Selection, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize preference service", "error", err)
	}

	eventBus := events.NewEventBus(zapLogger)

	provider, err := newTelegramProvider(cfg, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize telegram provider", "error", err)
	}

	chatbotService, err := chatbot.NewChatbotService(chatbot.Dependencies{
		EventBus:    eventBus,
		Provider:    provider,
		Preferences: prefService,
		Renderer:    menu.NewRenderer(catalog),
		Catalog:     catalog,
		Logger:      zapLogger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize chatbot service", "error", err)
	}

	if cfg.Chatbot.WebhookURL != "" {
		if err := chatbotService.ConfigureWebhook(cfg.Chatbot.WebhookURL); err != nil {
			logger.Warn("Failed to set webhook", "error", err)
		}
	}

	logger.Info("Services initialized",
		"store_driver", cfg.Store.Driver,
		"cache_enabled", cfg.Cache.Enabled,
		"free_tier_policy", cfg.Selection.FreeTierPolicy,
		"leagues", catalog.Len(),
		"admin_api", cfg.Admin.Token != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		Pinger:        store,
		HealthTimeout: time.Duration(cfg.Store.Timeout) * time.Second,
		Chatbot:       chatbotService,
		EventBus:      eventBus,
		AdminToken:    cfg.Admin.Token,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := chatbotService.Close(); err != nil {
		logger.Error("Failed to unsubscribe chatbot service", "error", err)
	}
	if err := eventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}
	if err := closeBackend(); err != nil {
		logger.Error("Failed to close record store", "error", err)
	}

	logger.Info("Server exited")
}

// newTelegramProvider falls back to the logging stub when no token is set, so the
// bot can be exercised locally by posting updates to the webhook route.
func newTelegramProvider(cfg *config.Config, zapLogger *zap.Logger) (chatbot.TelegramProvider, error) {
	if cfg.Chatbot.Token == "" {
		if cfg.Server.Environment == "production" {
			return nil, chatbot.NewConfigurationError("chatbot.token", "telegram bot token is required in production", "")
		}
		zapLogger.Warn("No telegram token configured, replies are only logged")
		return chatbot.NewStubTelegramProvider(zapLogger), nil
	}
	return chatbot.NewTelegramProvider(cfg.Chatbot, zapLogger)
}
