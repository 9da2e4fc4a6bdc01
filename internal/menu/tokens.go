package menu

import "strings"

// Action kinds carried in callback tokens
const (
	ActionCategory  = "cat"
	ActionToggle    = "toggle"
	ActionConfirm   = "confirm"
	ActionMenu      = "menu"
	ActionAccount   = "account"
	ActionPremium   = "premium"
	ActionSubscribe = "subscribe"
	ActionMatches   = "matches"
	ActionAlerts    = "alerts"
	ActionHelp      = "help"
)

// MaxTokenLength is Telegram's callback_data limit in bytes
const MaxTokenLength = 64

func token(action, arg string) string {
	if arg == "" {
		return action
	}
	return action + ":" + arg
}

func CategoryToken(categoryID string) string { return token(ActionCategory, categoryID) }
func ToggleToken(leagueID string) string     { return token(ActionToggle, leagueID) }
func MatchesToken(leagueID string) string    { return token(ActionMatches, leagueID) }
func AlertsToken(leagueID string) string     { return token(ActionAlerts, leagueID) }

// legacyTokens maps the callback data of buttons sent by the first bot release,
// which may still sit in users' chat history.
var legacyTokens = map[string]string{
	"back_main":         ActionMenu,
	"my_subscription":   ActionAccount,
	"premium_info":      ActionPremium,
	"subscribe_premium": ActionSubscribe,
}

// ParseToken splits a callback token into its action and argument. Unknown
// tokens come back unchanged as the action with an empty argument.
func ParseToken(tok string) (action, arg string) {
	tok = strings.TrimSpace(tok)

	if action, ok := legacyTokens[tok]; ok {
		return action, ""
	}
	switch {
	case strings.HasPrefix(tok, "cat_"):
		return ActionCategory, strings.TrimPrefix(tok, "cat_")
	case strings.HasPrefix(tok, "matches_"):
		return ActionMatches, strings.TrimPrefix(tok, "matches_")
	case strings.HasPrefix(tok, "alerts_"):
		return ActionAlerts, strings.TrimPrefix(tok, "alerts_")
	case strings.HasPrefix(tok, "lg_"):
		return ActionToggle, tok
	}

	action, arg, _ = strings.Cut(tok, ":")
	return action, arg
}
