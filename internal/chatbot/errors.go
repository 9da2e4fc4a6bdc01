package chatbot

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatbotError defines the interface for chatbot-specific errors
type ChatbotError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// TelegramAPIError represents errors from Telegram Bot API
type TelegramAPIError struct {
	Operation   string
	StatusCode  int
	APIError    string
	Description string
	RetryAfter  int
	Cause       error
}

func (e TelegramAPIError) Error() string {
	return fmt.Sprintf("telegram %s failed with %d: %s", e.Operation, e.StatusCode, e.Description)
}

func (e TelegramAPIError) Code() string {
	return "TELEGRAM_API_ERROR"
}

func (e TelegramAPIError) Message() string {
	return e.Description
}

func (e TelegramAPIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError ||
		e.RetryAfter > 0
}

func (e TelegramAPIError) Unwrap() error {
	return e.Cause
}

// WebhookParsingError represents errors when parsing webhook data
type WebhookParsingError struct {
	UpdateType string
	Details    string
	Cause      error
}

func (e WebhookParsingError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("bad %s: %s", e.UpdateType, e.Details)
	}
	return fmt.Sprintf("bad %s: %s: %v", e.UpdateType, e.Details, e.Cause)
}

func (e WebhookParsingError) Code() string {
	return "WEBHOOK_PARSING_ERROR"
}

func (e WebhookParsingError) Message() string {
	return e.Details
}

func (e WebhookParsingError) Temporary() bool {
	return false
}

func (e WebhookParsingError) Unwrap() error {
	return e.Cause
}

// KeyboardError reports a button that Telegram would refuse
type KeyboardError struct {
	Label  string
	Data   string
	Reason string
}

func (e KeyboardError) Error() string {
	return fmt.Sprintf("invalid button %q: %s", e.Label, e.Reason)
}

func (e KeyboardError) Code() string {
	return "INVALID_KEYBOARD"
}

func (e KeyboardError) Message() string {
	return e.Reason
}

func (e KeyboardError) Temporary() bool {
	return false
}

// ConfigurationError reports an unusable chatbot setting. The value is kept out of
// Error() since it may be a token.
type ConfigurationError struct {
	Field  string
	Reason string
	Value  string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

func (e ConfigurationError) Message() string {
	return e.Reason
}

func (e ConfigurationError) Temporary() bool {
	return false
}

// wrapTelegramError converts a library error into a TelegramAPIError, keeping the
// API status and retry hint when Telegram sent them.
func wrapTelegramError(err error, operation string) error {
	if err == nil {
		return nil
	}

	apiErr := TelegramAPIError{
		Operation:   operation,
		StatusCode:  http.StatusBadGateway,
		APIError:    telegramErrorCode(http.StatusBadGateway),
		Description: err.Error(),
		Cause:       err,
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		apiErr.StatusCode = tgErr.Code
		apiErr.APIError = telegramErrorCode(tgErr.Code)
		apiErr.Description = tgErr.Message
		apiErr.RetryAfter = tgErr.RetryAfter
	}
	return apiErr
}

// WrapParsingError wraps an error as a WebhookParsingError
func WrapParsingError(err error, updateType string) error {
	if err == nil {
		return nil
	}

	return WebhookParsingError{
		UpdateType: updateType,
		Details:    "failed to parse webhook data",
		Cause:      err,
	}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, reason, value string) error {
	return ConfigurationError{
		Field:  field,
		Reason: reason,
		Value:  value,
	}
}

// IsTemporaryError reports whether retrying the Telegram call may succeed
func IsTemporaryError(err error) bool {
	var chatbotErr ChatbotError
	return errors.As(err, &chatbotErr) && chatbotErr.Temporary()
}

func IsWebhookParsingError(err error) bool {
	var parsingErr WebhookParsingError
	return errors.As(err, &parsingErr)
}

// telegramErrorCode turns an HTTP status into an upper snake case code, e.g.
// 429 becomes TOO_MANY_REQUESTS.
func telegramErrorCode(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(text))
}
