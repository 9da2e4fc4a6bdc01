package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrUnsupportedUpdate is returned for updates the bot does not act on, such as
// edited messages, channel posts or non-command text.
var ErrUnsupportedUpdate = errors.New("unsupported update")

// WebhookParser decodes Telegram webhook payloads into inbound events
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, fmt.Errorf("empty update data")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update data: %w", err)
	}

	if update.UpdateID == 0 {
		return nil, fmt.Errorf("invalid update: missing update ID")
	}

	return &update, nil
}

// ParseEvent maps an update to an inbound event. Callback queries win over
// messages; anything else yields ErrUnsupportedUpdate.
func (p *WebhookParser) ParseEvent(update *tgbotapi.Update) (*InboundEvent, error) {
	if update == nil {
		return nil, fmt.Errorf("update is nil")
	}

	if update.CallbackQuery != nil {
		return p.parseCallback(update)
	}
	if update.Message != nil {
		return p.parseMessage(update)
	}
	return nil, ErrUnsupportedUpdate
}

func (p *WebhookParser) parseCallback(update *tgbotapi.Update) (*InboundEvent, error) {
	query := update.CallbackQuery
	if query.From == nil {
		return nil, fmt.Errorf("callback query does not contain sender information")
	}
	if query.ID == "" {
		return nil, fmt.Errorf("callback query does not contain an id")
	}

	event := &InboundEvent{
		Kind:        EventCallback,
		UpdateID:    update.UpdateID,
		UserID:      query.From.ID,
		ChatID:      query.From.ID,
		FirstName:   query.From.FirstName,
		DisplayName: displayName(query.From),
		CallbackID:  query.ID,
		Token:       query.Data,
	}
	// Inline-mode callbacks carry no message; answers then go to the private chat.
	if query.Message != nil && query.Message.Chat != nil {
		event.ChatID = query.Message.Chat.ID
		event.MessageID = query.Message.MessageID
	}
	return event, nil
}

func (p *WebhookParser) parseMessage(update *tgbotapi.Update) (*InboundEvent, error) {
	msg := update.Message
	if msg.From == nil {
		return nil, fmt.Errorf("message does not contain sender information")
	}
	if msg.Chat == nil {
		return nil, fmt.Errorf("message does not contain chat information")
	}

	event := &InboundEvent{
		Kind:        EventText,
		UpdateID:    update.UpdateID,
		UserID:      msg.From.ID,
		ChatID:      msg.Chat.ID,
		FirstName:   msg.From.FirstName,
		DisplayName: displayName(msg.From),
		MessageID:   msg.MessageID,
		Text:        msg.Text,
	}

	if !msg.IsCommand() {
		return event, nil
	}

	command, err := p.ExtractCommand(msg)
	if err != nil {
		return nil, err
	}
	kind, ok := commandEvents[command]
	if !ok {
		return event, nil
	}
	event.Kind = kind
	return event, nil
}

// ExtractCommand returns the command of msg without arguments or bot mention
func (p *WebhookParser) ExtractCommand(msg *tgbotapi.Message) (Command, error) {
	if msg == nil {
		return "", fmt.Errorf("message is nil")
	}
	if !msg.IsCommand() {
		return "", fmt.Errorf("message is not a command")
	}
	return Command("/" + strings.ToLower(msg.Command())), nil
}

// BuildCorrelationID derives a log correlation id from the update id
func (p *WebhookParser) BuildCorrelationID(update *tgbotapi.Update) string {
	return fmt.Sprintf("tg_%d", update.UpdateID)
}

// displayName prefers the Telegram username and falls back to the first name
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}
