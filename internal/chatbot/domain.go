package chatbot

// EventKind identifies what the user asked for
type EventKind string

const (
	EventStart    EventKind = "start"
	EventMenu     EventKind = "menu"
	EventAccount  EventKind = "account"
	EventDelete   EventKind = "delete"
	EventHelp     EventKind = "help"
	EventCallback EventKind = "callback"
	EventText     EventKind = "text"
)

// Command represents a bot command
type Command string

const (
	CommandStart   Command = "/start"
	CommandMenu    Command = "/menu"
	CommandAccount Command = "/account"
	CommandDelete  Command = "/delete"
	CommandHelp    Command = "/help"
)

// commandEvents maps each supported command to its event kind
var commandEvents = map[Command]EventKind{
	CommandStart:   EventStart,
	CommandMenu:    EventMenu,
	CommandAccount: EventAccount,
	CommandDelete:  EventDelete,
	CommandHelp:    EventHelp,
}

// IsValid checks if the command is supported
func (c Command) IsValid() bool {
	_, ok := commandEvents[c]
	return ok
}

// InboundEvent is a decoded Telegram update. Callback events carry the query id, the
// token and the id of the message whose keyboard was tapped.
type InboundEvent struct {
	Kind        EventKind
	UpdateID    int
	UserID      int64
	ChatID      int64
	FirstName   string
	DisplayName string
	MessageID   int
	CallbackID  string
	Token       string
	Text        string
}

// IsCallback reports whether the event came from an inline button
func (e *InboundEvent) IsCallback() bool {
	return e.Kind == EventCallback
}
