package chatbot

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"footbrief-api/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements the TelegramProvider interface using the telegram-bot-api library
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramProvider creates a TelegramProvider and validates the token with getMe
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, NewConfigurationError("chatbot.token", "telegram bot token is required", "")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:    bot,
		logger: logger,
	}, nil
}

// SendMessage sends an HTML message with an optional inline keyboard
func (p *telegramProvider) SendMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	correlationID := fmt.Sprintf("msg_%d_%d", chatID, time.Now().Unix())

	p.logger.Debug("Sending message",
		zap.String("correlation_id", correlationID),
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)),
		zap.Int("keyboard_rows", keyboardRows(keyboard)))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message",
			zap.String("correlation_id", correlationID),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return wrapTelegramError(err, "sendMessage")
	}

	p.logger.Debug("Message sent successfully",
		zap.String("correlation_id", correlationID),
		zap.Int64("chat_id", chatID))
	return nil
}

// EditMessage rewrites a message in place. Telegram refuses edits that change
// nothing; those count as success.
func (p *telegramProvider) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	correlationID := fmt.Sprintf("edit_%d_%d", chatID, messageID)

	p.logger.Debug("Editing message",
		zap.String("correlation_id", correlationID),
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID),
		zap.Int("keyboard_rows", keyboardRows(keyboard)))

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = keyboard

	if _, err := p.bot.Request(edit); err != nil {
		if isNotModified(err) {
			p.logger.Debug("Message already up to date",
				zap.String("correlation_id", correlationID))
			return nil
		}
		p.logger.Error("Failed to edit message",
			zap.String("correlation_id", correlationID),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return wrapTelegramError(err, "editMessageText")
	}
	return nil
}

// AnswerCallback acknowledges a callback query
func (p *telegramProvider) AnswerCallback(callbackID, text string, showAlert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	if showAlert {
		answer = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}

	if _, err := p.bot.Request(answer); err != nil {
		p.logger.Warn("Failed to answer callback query",
			zap.String("callback_id", callbackID),
			zap.Error(err))
		return wrapTelegramError(err, "answerCallbackQuery")
	}
	return nil
}

// SetWebhook configures the webhook URL for receiving updates
func (p *telegramProvider) SetWebhook(webhookURL string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return NewConfigurationError("chatbot.webhook_url", err.Error(), webhookURL)
	}

	if _, err := p.bot.Request(webhookConfig); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_url", webhookURL),
			zap.Error(err))
		return wrapTelegramError(err, "setWebhook")
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_url", webhookURL))
	return nil
}

// DeleteWebhook removes the configured webhook
func (p *telegramProvider) DeleteWebhook() error {
	p.logger.Info("Deleting webhook")

	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.logger.Error("Failed to delete webhook", zap.Error(err))
		return wrapTelegramError(err, "deleteWebhook")
	}
	return nil
}

// GetMe returns information about the bot
func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	me, err := p.bot.GetMe()
	if err != nil {
		p.logger.Error("Failed to get bot information", zap.Error(err))
		return nil, wrapTelegramError(err, "getMe")
	}
	return &me, nil
}

func keyboardRows(keyboard *tgbotapi.InlineKeyboardMarkup) int {
	if keyboard == nil {
		return 0
	}
	return len(keyboard.InlineKeyboard)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
