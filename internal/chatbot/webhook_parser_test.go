package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	startUpdate = `{
		"update_id": 1001,
		"message": {
			"message_id": 7,
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe", "username": "zoe_fc"},
			"chat": {"id": 4242, "type": "private"},
			"date": 1710000000,
			"text": "/start",
			"entities": [{"type": "bot_command", "offset": 0, "length": 6}]
		}
	}`

	mentionedMenuUpdate = `{
		"update_id": 1002,
		"message": {
			"message_id": 8,
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe"},
			"chat": {"id": -100500, "type": "group"},
			"date": 1710000000,
			"text": "/MENU@FootBriefBot",
			"entities": [{"type": "bot_command", "offset": 0, "length": 18}]
		}
	}`

	unknownCommandUpdate = `{
		"update_id": 1003,
		"message": {
			"message_id": 9,
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe"},
			"chat": {"id": 4242, "type": "private"},
			"date": 1710000000,
			"text": "/settings",
			"entities": [{"type": "bot_command", "offset": 0, "length": 9}]
		}
	}`

	textUpdate = `{
		"update_id": 1004,
		"message": {
			"message_id": 10,
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe"},
			"chat": {"id": 4242, "type": "private"},
			"date": 1710000000,
			"text": "hello"
		}
	}`

	callbackUpdate = `{
		"update_id": 1005,
		"callback_query": {
			"id": "cbq-1",
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe", "username": "zoe_fc"},
			"message": {
				"message_id": 77,
				"chat": {"id": 4242, "type": "private"},
				"date": 1710000000,
				"text": "menu"
			},
			"chat_instance": "ci",
			"data": "toggle:lg_fr"
		}
	}`

	inlineCallbackUpdate = `{
		"update_id": 1006,
		"callback_query": {
			"id": "cbq-2",
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe"},
			"chat_instance": "ci",
			"data": "menu"
		}
	}`

	editedMessageUpdate = `{
		"update_id": 1007,
		"edited_message": {
			"message_id": 11,
			"from": {"id": 4242, "is_bot": false, "first_name": "Zoe"},
			"chat": {"id": 4242, "type": "private"},
			"date": 1710000000,
			"text": "/start"
		}
	}`
)

func TestWebhookParser_ParseUpdate(t *testing.T) {
	parser := NewWebhookParser()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "empty body", data: "", wantErr: "empty update data"},
		{name: "invalid json", data: "{not json", wantErr: "failed to unmarshal"},
		{name: "missing update id", data: `{"message": {"message_id": 1}}`, wantErr: "missing update ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseUpdate([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	update, err := parser.ParseUpdate([]byte(startUpdate))
	require.NoError(t, err)
	assert.Equal(t, 1001, update.UpdateID)
	assert.Equal(t, "tg_1001", parser.BuildCorrelationID(update))
}

func TestWebhookParser_ParseEvent(t *testing.T) {
	parser := NewWebhookParser()

	tests := []struct {
		name string
		data string
		want InboundEvent
	}{
		{
			name: "start command",
			data: startUpdate,
			want: InboundEvent{
				Kind: EventStart, UpdateID: 1001, UserID: 4242, ChatID: 4242,
				FirstName: "Zoe", DisplayName: "zoe_fc", MessageID: 7, Text: "/start",
			},
		},
		{
			name: "command with bot mention in a group",
			data: mentionedMenuUpdate,
			want: InboundEvent{
				Kind: EventMenu, UpdateID: 1002, UserID: 4242, ChatID: -100500,
				FirstName: "Zoe", DisplayName: "Zoe", MessageID: 8, Text: "/MENU@FootBriefBot",
			},
		},
		{
			name: "unknown command is plain text",
			data: unknownCommandUpdate,
			want: InboundEvent{
				Kind: EventText, UpdateID: 1003, UserID: 4242, ChatID: 4242,
				FirstName: "Zoe", DisplayName: "Zoe", MessageID: 9, Text: "/settings",
			},
		},
		{
			name: "text message",
			data: textUpdate,
			want: InboundEvent{
				Kind: EventText, UpdateID: 1004, UserID: 4242, ChatID: 4242,
				FirstName: "Zoe", DisplayName: "Zoe", MessageID: 10, Text: "hello",
			},
		},
		{
			name: "callback query",
			data: callbackUpdate,
			want: InboundEvent{
				Kind: EventCallback, UpdateID: 1005, UserID: 4242, ChatID: 4242,
				FirstName: "Zoe", DisplayName: "zoe_fc", MessageID: 77,
				CallbackID: "cbq-1", Token: "toggle:lg_fr",
			},
		},
		{
			name: "inline callback without message",
			data: inlineCallbackUpdate,
			want: InboundEvent{
				Kind: EventCallback, UpdateID: 1006, UserID: 4242, ChatID: 4242,
				FirstName: "Zoe", DisplayName: "Zoe", CallbackID: "cbq-2", Token: "menu",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := parser.ParseUpdate([]byte(tt.data))
			require.NoError(t, err)

			event, err := parser.ParseEvent(update)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *event)
		})
	}
}

func TestWebhookParser_ParseEventErrors(t *testing.T) {
	parser := NewWebhookParser()

	_, err := parser.ParseEvent(nil)
	assert.Error(t, err)

	update, err := parser.ParseUpdate([]byte(editedMessageUpdate))
	require.NoError(t, err)
	_, err = parser.ParseEvent(update)
	assert.ErrorIs(t, err, ErrUnsupportedUpdate)

	update, err = parser.ParseUpdate([]byte(`{"update_id": 5, "message": {"message_id": 1, "chat": {"id": 1, "type": "private"}, "text": "hi"}}`))
	require.NoError(t, err)
	_, err = parser.ParseEvent(update)
	assert.ErrorContains(t, err, "sender")

	update, err = parser.ParseUpdate([]byte(`{"update_id": 6, "callback_query": {"id": "x", "data": "menu"}}`))
	require.NoError(t, err)
	_, err = parser.ParseEvent(update)
	assert.ErrorContains(t, err, "sender")
}

func TestCommand_IsValid(t *testing.T) {
	for _, cmd := range []Command{CommandStart, CommandMenu, CommandAccount, CommandDelete, CommandHelp} {
		assert.True(t, cmd.IsValid(), cmd)
	}
	assert.False(t, Command("/list").IsValid())
}
