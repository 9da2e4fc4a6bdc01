package chatbot

import (
	"footbrief-api/internal/menu"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// KeyboardBuilder turns rendered menu rows into Telegram inline keyboards
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder instance
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// Build converts the rows of view. It returns nil for a view without buttons and a
// KeyboardError for a button Telegram would refuse.
func (kb *KeyboardBuilder) Build(view menu.View) (*tgbotapi.InlineKeyboardMarkup, error) {
	if len(view.Rows) == 0 {
		return nil, nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Rows))
	for _, actions := range view.Rows {
		if len(actions) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
		for _, action := range actions {
			if err := validateAction(action); err != nil {
				return nil, err
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(action.Label, action.Token))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup, nil
}

func validateAction(action menu.Action) error {
	switch {
	case action.Label == "":
		return KeyboardError{Label: action.Label, Data: action.Token, Reason: "empty label"}
	case action.Token == "":
		return KeyboardError{Label: action.Label, Data: action.Token, Reason: "empty callback data"}
	case len(action.Token) > menu.MaxTokenLength:
		return KeyboardError{Label: action.Label, Data: action.Token, Reason: "callback data exceeds 64 bytes"}
	}
	return nil
}
