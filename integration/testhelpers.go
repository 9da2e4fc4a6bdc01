//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"footbrief-api/api/routes"
	"footbrief-api/internal/chatbot"
	"footbrief-api/internal/config"
	"footbrief-api/internal/database"
	"footbrief-api/internal/events"
	"footbrief-api/internal/league"
	"footbrief-api/internal/menu"
	"footbrief-api/internal/preferences"
	"footbrief-api/internal/records"
	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	testAdminToken       = "integration-admin-token"
	testUserID     int64 = 9001
)

// TestContainer holds a running PostgreSQL container and a migrated connection
type TestContainer struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
	Config    config.DatabaseConfig
}

// SetupTestDatabase starts PostgreSQL, runs the record migrations and registers
// cleanup on t.
func SetupTestDatabase(t *testing.T) *TestContainer {
	t.Helper()
	ctx := context.Background()

	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("test_footbrief"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "test_user",
		Password:        "test_password",
		DBName:          "test_footbrief",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 300,
	}

	db, err := database.NewPostgresConnection(dbConfig)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, records.RunMigrations(db))

	return &TestContainer{
		Container: postgresContainer,
		DB:        db,
		Config:    dbConfig,
	}
}

// TestStack is the HTTP server wired the way cmd/server wires it, with the stub
// Telegram provider in place of the real API.
type TestStack struct {
	Router   *gin.Engine
	Chatbot  chatbot.ChatbotService
	Provider *chatbot.StubTelegramProvider
	Prefs    preferences.Service
	Bus      events.EventBus
}

// StackOption customizes NewTestStack
type StackOption func(*stackOptions)

type stackOptions struct {
	cache  *preferences.Cache
	policy string
}

// WithCache puts a preference cache in front of the store
func WithCache(cache *preferences.Cache) StackOption {
	return func(o *stackOptions) { o.cache = cache }
}

// WithFreeTierPolicy selects the free tier policy
func WithFreeTierPolicy(policy string) StackOption {
	return func(o *stackOptions) { o.policy = policy }
}

// NewTestStack builds the full stack over backend
func NewTestStack(t *testing.T, backend records.Backend, opts ...StackOption) *TestStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var options stackOptions
	for _, opt := range opts {
		opt(&options)
	}

	zapLogger := zaptest.NewLogger(t)
	catalog := league.Default()

	store := records.NewStore(backend, config.StoreConfig{Timeout: 10, MaxRetries: 1}, clockwork.NewRealClock(), zapLogger,
		records.WithRetryInterval(10*time.Millisecond))

	prefs, err := preferences.NewPreferenceService(store, options.cache, catalog,
		config.SelectionConfig{FreeTierPolicy: options.policy}, zapLogger)
	require.NoError(t, err)

	bus := events.NewEventBus(zapLogger)
	provider := chatbot.NewStubTelegramProvider(zapLogger)

	chatbotService, err := chatbot.NewChatbotService(chatbot.Dependencies{
		EventBus:    bus,
		Provider:    provider,
		Preferences: prefs,
		Renderer:    menu.NewRenderer(catalog),
		Catalog:     catalog,
		Logger:      zapLogger,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		chatbotService.Close()
		bus.Close()
	})

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		Pinger:        store,
		HealthTimeout: 5 * time.Second,
		Chatbot:       chatbotService,
		EventBus:      bus,
		AdminToken:    testAdminToken,
		Logger:        logger.FromZap(zapLogger),
	})

	return &TestStack{
		Router:   router,
		Chatbot:  chatbotService,
		Provider: provider,
		Prefs:    prefs,
		Bus:      bus,
	}
}

// PostUpdate delivers a Telegram update to the webhook route
func (s *TestStack) PostUpdate(t *testing.T, update []byte) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/telegram/webhook", update, "")
}

// PostAdmin calls an admin route with the test bearer token
func (s *TestStack) PostAdmin(t *testing.T, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/admin"+path, []byte(body), testAdminToken)
}

func (s *TestStack) do(t *testing.T, method, path string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// LastMessage returns the most recent message sent or edited by the bot
func (s *TestStack) LastMessage(t *testing.T) chatbot.SentMessage {
	t.Helper()
	sent := s.Provider.SentMessages()
	require.NotEmpty(t, sent, "bot sent nothing")
	return sent[len(sent)-1]
}

// LastAnswer returns the most recent callback answer
func (s *TestStack) LastAnswer(t *testing.T) chatbot.CallbackAnswer {
	t.Helper()
	answers := s.Provider.CallbackAnswers()
	require.NotEmpty(t, answers, "no callback answered")
	return answers[len(answers)-1]
}

func commandUpdate(updateID int, userID int64, text string) []byte {
	return []byte(fmt.Sprintf(`{
		"update_id": %d,
		"message": {
			"message_id": %d,
			"from": {"id": %d, "is_bot": false, "first_name": "Lena", "username": "lena_ultras"},
			"chat": {"id": %d, "type": "private"},
			"date": 1710000000,
			"text": %q,
			"entities": [{"type": "bot_command", "offset": 0, "length": %d}]
		}
	}`, updateID, updateID, userID, userID, text, len(text)))
}

func callbackUpdate(updateID int, userID int64, data string) []byte {
	return []byte(fmt.Sprintf(`{
		"update_id": %d,
		"callback_query": {
			"id": "cbq-%d",
			"from": {"id": %d, "is_bot": false, "first_name": "Lena", "username": "lena_ultras"},
			"message": {"message_id": 500, "chat": {"id": %d, "type": "private"}, "date": 1710000000, "text": "menu"},
			"chat_instance": "it",
			"data": %q
		}
	}`, updateID, updateID, userID, userID, data))
}

func buttonLabels(markup *tgbotapi.InlineKeyboardMarkup) []string {
	if markup == nil {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.Text)
		}
	}
	return out
}
