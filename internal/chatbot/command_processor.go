package chatbot

import (
	"context"
	"errors"

	"footbrief-api/internal/league"
	"footbrief-api/internal/menu"
	"footbrief-api/internal/preferences"

	"go.uber.org/zap"
)

// Response is the view answering one event. ShowAlert asks for the callback answer
// to be shown as a modal instead of a toast.
type Response struct {
	View      menu.View
	ShowAlert bool
}

// CommandProcessor decides the view for each inbound event. It talks to the
// preference service but never to Telegram.
type CommandProcessor struct {
	prefs    preferences.Service
	renderer *menu.Renderer
	catalog  *league.Catalog
	logger   *zap.Logger
}

// NewCommandProcessor creates a new CommandProcessor instance
func NewCommandProcessor(prefs preferences.Service, renderer *menu.Renderer, catalog *league.Catalog, logger *zap.Logger) *CommandProcessor {
	return &CommandProcessor{
		prefs:    prefs,
		renderer: renderer,
		catalog:  catalog,
		logger:   logger,
	}
}

// Process returns the response to event. ok is false for events the bot ignores.
func (cp *CommandProcessor) Process(ctx context.Context, event *InboundEvent) (resp Response, ok bool) {
	switch event.Kind {
	case EventStart:
		return cp.processStart(ctx, event), true
	case EventMenu:
		pref := cp.prefs.Validate(ctx, event.UserID)
		return Response{View: cp.renderer.MainMenu(*pref)}, true
	case EventAccount:
		pref := cp.prefs.Validate(ctx, event.UserID)
		return Response{View: cp.renderer.Account(*pref)}, true
	case EventDelete:
		err := cp.prefs.Delete(ctx, event.UserID)
		return Response{View: cp.renderer.Deleted(err == nil)}, true
	case EventHelp:
		return Response{View: cp.renderer.Help()}, true
	case EventCallback:
		return cp.processCallback(ctx, event), true
	default:
		return Response{}, false
	}
}

func (cp *CommandProcessor) processStart(ctx context.Context, event *InboundEvent) Response {
	out := cp.prefs.Register(ctx, event.UserID, event.DisplayName)
	view := cp.renderer.Welcome(event.FirstName, *out.Preference)
	if !out.Saved {
		view = menu.NotSaved(view)
	}
	return Response{View: view}
}

func (cp *CommandProcessor) processCallback(ctx context.Context, event *InboundEvent) Response {
	action, arg := menu.ParseToken(event.Token)

	cp.logger.Debug("Processing callback",
		zap.Int64("user_id", event.UserID),
		zap.String("action", action),
		zap.String("arg", arg))

	if action == menu.ActionToggle {
		return cp.processToggle(ctx, event, arg)
	}

	switch action {
	case menu.ActionPremium:
		return Response{View: cp.renderer.PremiumInfo()}
	case menu.ActionSubscribe:
		return Response{View: cp.renderer.Subscribe()}
	case menu.ActionMatches:
		return Response{View: cp.renderer.Matches(arg)}
	case menu.ActionAlerts:
		return Response{View: cp.renderer.Alerts(arg)}
	case menu.ActionHelp:
		return Response{View: cp.renderer.Help()}
	}

	pref := cp.prefs.Validate(ctx, event.UserID)

	switch action {
	case menu.ActionCategory:
		if view, ok := cp.renderer.Category(arg, *pref); ok {
			return Response{View: view}
		}
		view := cp.renderer.MainMenu(*pref)
		view.Alert = "Category not found"
		return Response{View: view}
	case menu.ActionConfirm:
		return Response{View: cp.renderer.Selection(*pref)}
	case menu.ActionMenu:
		return Response{View: cp.renderer.MainMenu(*pref)}
	case menu.ActionAccount:
		return Response{View: cp.renderer.Account(*pref)}
	default:
		cp.logger.Warn("Unknown callback token",
			zap.Int64("user_id", event.UserID),
			zap.String("token", event.Token))
		view := cp.renderer.MainMenu(*pref)
		view.Alert = "Unknown action"
		return Response{View: view}
	}
}

func (cp *CommandProcessor) processToggle(ctx context.Context, event *InboundEvent, leagueID string) Response {
	out, err := cp.prefs.Toggle(ctx, event.UserID, event.DisplayName, leagueID)
	if err != nil {
		pref := out.Preference
		if pref == nil {
			pref = cp.prefs.Validate(ctx, event.UserID)
		}
		view := cp.renderer.Rejected(err, *pref)
		if !out.Saved && out.Preference != nil {
			view = menu.NotSaved(view)
		}
		return Response{
			View:      view,
			ShowAlert: !errors.Is(err, preferences.ErrUnknownLeague),
		}
	}

	pref := *out.Preference
	lg, _ := cp.catalog.Get(leagueID)
	view, _ := cp.renderer.Category(lg.Category, pref)
	view.Alert = cp.renderer.ToggleAlert(leagueID, pref)
	if !out.Saved {
		view = menu.NotSaved(view)
	}
	return Response{View: view}
}
