package chatbot

import (
	"context"
	"errors"
	"fmt"

	"footbrief-api/internal/events"
	"footbrief-api/internal/league"
	"footbrief-api/internal/menu"
	"footbrief-api/internal/preferences"

	"go.uber.org/zap"
)

// ChatbotService defines the interface for chatbot operations
type ChatbotService interface {
	// HandleWebhook processes one raw Telegram update
	HandleWebhook(ctx context.Context, webhookData []byte) error
	// NotifyEntitlement applies a premium change and tells the user about it
	NotifyEntitlement(ctx context.Context, event events.EntitlementChanged) error
	// ConfigureWebhook registers url with Telegram
	ConfigureWebhook(url string) error
	// Close stops listening to bus events
	Close() error
}

// Dependencies groups what the chatbot service talks to
type Dependencies struct {
	EventBus    events.EventBus
	Provider    TelegramProvider
	Preferences preferences.Service
	Renderer    *menu.Renderer
	Catalog     *league.Catalog
	Logger      *zap.Logger
}

// chatbotService implements the ChatbotService interface
type chatbotService struct {
	eventBus         events.EventBus
	logger           *zap.Logger
	provider         TelegramProvider
	prefs            preferences.Service
	renderer         *menu.Renderer
	parser           *WebhookParser
	keyboardBuilder  *KeyboardBuilder
	commandProcessor *CommandProcessor
}

// NewChatbotService creates a new instance of ChatbotService and subscribes it to
// entitlement changes.
func NewChatbotService(deps Dependencies) (ChatbotService, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("telegram provider is required")
	}
	if deps.Preferences == nil {
		return nil, fmt.Errorf("preference service is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("league catalog is required")
	}
	if deps.Renderer == nil {
		deps.Renderer = menu.NewRenderer(deps.Catalog)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	service := &chatbotService{
		eventBus:         deps.EventBus,
		logger:           deps.Logger,
		provider:         deps.Provider,
		prefs:            deps.Preferences,
		renderer:         deps.Renderer,
		parser:           NewWebhookParser(),
		keyboardBuilder:  NewKeyboardBuilder(),
		commandProcessor: NewCommandProcessor(deps.Preferences, deps.Renderer, deps.Catalog, deps.Logger),
	}

	if err := service.setupEventSubscriptions(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *chatbotService) setupEventSubscriptions() error {
	if s.eventBus == nil {
		return nil
	}
	if err := events.SubscribeEntitlementChanged(s.eventBus, s.handleEntitlementChanged); err != nil {
		return fmt.Errorf("failed to subscribe to entitlement events: %w", err)
	}
	return nil
}

// HandleWebhook processes incoming webhook data from Telegram
func (s *chatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	update, err := s.parser.ParseUpdate(webhookData)
	if err != nil {
		s.logger.Error("Failed to parse webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return WrapParsingError(err, "telegram_update")
	}

	correlationID := s.parser.BuildCorrelationID(update)

	event, err := s.parser.ParseEvent(update)
	if errors.Is(err, ErrUnsupportedUpdate) {
		s.logger.Debug("Ignoring unsupported update", zap.String("correlation_id", correlationID))
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to decode update",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		return WrapParsingError(err, "telegram_event")
	}

	s.logger.Info("Processing update",
		zap.String("correlation_id", correlationID),
		zap.String("kind", string(event.Kind)),
		zap.Int64("user_id", event.UserID),
		zap.Int64("chat_id", event.ChatID))

	resp, ok := s.commandProcessor.Process(ctx, event)
	if !ok {
		s.logger.Debug("No reply for update",
			zap.String("correlation_id", correlationID),
			zap.String("kind", string(event.Kind)))
		return nil
	}

	if event.IsCallback() {
		return s.replyToCallback(event, resp, correlationID)
	}
	return s.send(event.ChatID, resp.View, correlationID)
}

// replyToCallback answers the query first so the client stops its spinner, then
// edits the tapped message. A failed edit falls back to a new message.
func (s *chatbotService) replyToCallback(event *InboundEvent, resp Response, correlationID string) error {
	if err := s.provider.AnswerCallback(event.CallbackID, resp.View.Alert, resp.ShowAlert); err != nil {
		s.logger.Warn("Failed to answer callback",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
	}

	if event.MessageID == 0 {
		return s.send(event.ChatID, resp.View, correlationID)
	}

	keyboard, err := s.keyboardBuilder.Build(resp.View)
	if err != nil {
		s.logger.Error("Failed to build keyboard",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		return err
	}

	err = s.provider.EditMessage(event.ChatID, event.MessageID, resp.View.Text, keyboard)
	if err == nil {
		return nil
	}
	s.logger.Warn("Failed to edit message, sending a new one",
		zap.String("correlation_id", correlationID),
		zap.Int("message_id", event.MessageID),
		zap.Error(err))
	return s.provider.SendMessage(event.ChatID, resp.View.Text, keyboard)
}

func (s *chatbotService) send(chatID int64, view menu.View, correlationID string) error {
	keyboard, err := s.keyboardBuilder.Build(view)
	if err != nil {
		s.logger.Error("Failed to build keyboard",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		return err
	}

	if err := s.provider.SendMessage(chatID, view.Text, keyboard); err != nil {
		s.logger.Error("Failed to send reply",
			zap.String("correlation_id", correlationID),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return err
	}
	return nil
}

// NotifyEntitlement applies the new tier and sends the user their updated menu.
// Private chats share the user's id, so the notice goes to event.UserID.
func (s *chatbotService) NotifyEntitlement(ctx context.Context, event events.EntitlementChanged) error {
	s.logger.Info("Handling entitlement change",
		zap.String("correlation_id", event.CorrelationID),
		zap.Int64("user_id", event.UserID),
		zap.Bool("premium", event.Premium),
		zap.String("source", event.Source))

	out := s.prefs.SetPremium(ctx, event.UserID, event.Premium)
	view := s.renderer.Entitlement(*out.Preference)
	if !out.Saved {
		view = menu.NotSaved(view)
	}
	return s.send(event.UserID, view, event.CorrelationID)
}

func (s *chatbotService) handleEntitlementChanged(event events.EntitlementChanged) {
	if err := s.NotifyEntitlement(context.Background(), event); err != nil {
		s.logger.Error("Failed to notify entitlement change",
			zap.String("correlation_id", event.CorrelationID),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}

// ConfigureWebhook registers url with Telegram, or removes the webhook when url is empty
func (s *chatbotService) ConfigureWebhook(url string) error {
	if url == "" {
		return s.provider.DeleteWebhook()
	}
	return s.provider.SetWebhook(url)
}

func (s *chatbotService) Close() error {
	if s.eventBus == nil {
		return nil
	}
	return events.UnsubscribeEntitlementChanged(s.eventBus, s.handleEntitlementChanged)
}

