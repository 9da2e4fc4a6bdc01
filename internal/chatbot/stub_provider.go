package chatbot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StubTelegramProvider logs and records outgoing calls instead of reaching Telegram.
// The server falls back to it when no bot token is configured.
type StubTelegramProvider struct {
	logger *zap.Logger

	mu         sync.Mutex
	sent       []SentMessage
	answers    []CallbackAnswer
	webhookURL string
}

// SentMessage is a message sent or edited through the stub provider
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  *tgbotapi.InlineKeyboardMarkup
	Edited    bool
}

// CallbackAnswer is a callback query answer recorded by the stub provider
type CallbackAnswer struct {
	CallbackID string
	Text       string
	ShowAlert  bool
}

// NewStubTelegramProvider creates a new stub Telegram provider
func NewStubTelegramProvider(logger *zap.Logger) *StubTelegramProvider {
	return &StubTelegramProvider{logger: logger}
}

func (s *StubTelegramProvider) SendMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	s.logger.Info("Stub Telegram provider sending message",
		zap.Int64("chat_id", chatID),
		zap.String("text", text),
		zap.Int("keyboard_rows", keyboardRows(keyboard)))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (s *StubTelegramProvider) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	s.logger.Info("Stub Telegram provider editing message",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID),
		zap.String("text", text))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentMessage{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: keyboard, Edited: true})
	return nil
}

func (s *StubTelegramProvider) AnswerCallback(callbackID, text string, showAlert bool) error {
	s.logger.Info("Stub Telegram provider answering callback",
		zap.String("callback_id", callbackID),
		zap.String("text", text),
		zap.Bool("show_alert", showAlert))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, CallbackAnswer{CallbackID: callbackID, Text: text, ShowAlert: showAlert})
	return nil
}

func (s *StubTelegramProvider) SetWebhook(webhookURL string) error {
	s.logger.Info("Stub Telegram provider setting webhook", zap.String("webhook_url", webhookURL))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhookURL = webhookURL
	return nil
}

func (s *StubTelegramProvider) DeleteWebhook() error {
	s.logger.Info("Stub Telegram provider deleting webhook")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhookURL = ""
	return nil
}

func (s *StubTelegramProvider) GetMe() (*tgbotapi.User, error) {
	return &tgbotapi.User{
		ID:        123456789,
		IsBot:     true,
		FirstName: "FootBrief",
		UserName:  "footbrief_dev_bot",
	}, nil
}

// SentMessages returns a copy of everything sent or edited so far
func (s *StubTelegramProvider) SentMessages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// CallbackAnswers returns a copy of the recorded callback answers
func (s *StubTelegramProvider) CallbackAnswers() []CallbackAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CallbackAnswer(nil), s.answers...)
}

// WebhookURL returns the last webhook set
func (s *StubTelegramProvider) WebhookURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webhookURL
}

// Reset clears the recorded calls
func (s *StubTelegramProvider) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.answers = nil
}
