package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider defines the contract for Telegram API operations
type TelegramProvider interface {
	// SendMessage sends an HTML message; keyboard may be nil
	SendMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error

	// EditMessage replaces the text and keyboard of a message the bot sent earlier
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error

	// AnswerCallback acknowledges a callback query, as a toast or as a modal alert
	AnswerCallback(callbackID, text string, showAlert bool) error

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)
}
