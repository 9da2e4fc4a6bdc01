package menu

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"footbrief-api/internal/league"
	"footbrief-api/internal/preferences"
)

// Action is one inline button
type Action struct {
	Label string
	Token string
}

// View is a rendered message: HTML text, rows of buttons and an optional short
// alert for the callback answer.
type View struct {
	Text  string
	Rows  [][]Action
	Alert string
}

// Marker prefixes a league label with its state for the viewing user
type Marker string

const (
	MarkerSelected   Marker = "✅"
	MarkerLocked     Marker = "🔒"
	MarkerSelectable Marker = "⚪"
)

// MarkerFor returns the marker of lg for pref
func MarkerFor(lg league.League, pref preferences.UserPreference) Marker {
	switch {
	case pref.Has(lg.ID):
		return MarkerSelected
	case lg.PremiumOnly && !pref.IsPremium:
		return MarkerLocked
	default:
		return MarkerSelectable
	}
}

const (
	premiumPrice   = "4.99€/month"
	supportHandle  = "@footbrief_support"
	notSavedNotice = "⚠️ <i>We could not save your choice right now. Please try again later.</i>"
)

var (
	backToMenu   = Action{Label: "⬅️ Back", Token: ActionMenu}
	goPremium    = Action{Label: "👑 Go Premium", Token: ActionPremium}
	myAccount    = Action{Label: "⚙️ My subscription", Token: ActionAccount}
	confirmState = Action{Label: "✔️ Confirm selection", Token: ActionConfirm}
)

// Renderer builds views over a league catalog. It is pure: the same inputs always
// yield the same view.
type Renderer struct {
	catalog *league.Catalog
}

func NewRenderer(catalog *league.Catalog) *Renderer {
	return &Renderer{catalog: catalog}
}

func (r *Renderer) categoryRows() [][]Action {
	rows := make([][]Action, 0, len(r.catalog.Categories()))
	for _, cat := range r.catalog.Categories() {
		rows = append(rows, []Action{{Label: cat.DisplayName, Token: CategoryToken(cat.ID)}})
	}
	return rows
}

func (r *Renderer) leagueName(id string) string {
	if lg, ok := r.catalog.Get(id); ok {
		return lg.DisplayName
	}
	return id
}

// Welcome greets a user on /start
func (r *Renderer) Welcome(firstName string, pref preferences.UserPreference) View {
	var b strings.Builder
	if firstName == "" {
		b.WriteString("⚽ <b>Welcome to FootBrief!</b>\n\n")
	} else {
		fmt.Fprintf(&b, "⚽ <b>Welcome to FootBrief, %s!</b>\n\n", html.EscapeString(firstName))
	}
	b.WriteString("I send you short summaries of football matches.\n\n")
	fmt.Fprintf(&b, "🆓 <b>Free plan:</b>\n• %d league of your choice\n• Daily match summaries\n\n", preferences.FreeTierLimit)
	b.WriteString("👑 <b>Premium:</b>\n• Every league\n• Real-time alerts\n• Detailed statistics\n\n")
	b.WriteString("Pick a category to get started:")

	rows := r.categoryRows()
	if !pref.IsPremium {
		rows = append(rows, []Action{goPremium})
	}
	return View{Text: b.String(), Rows: rows}
}

// MainMenu lists the categories, the account entry and the premium upsell for free users
func (r *Renderer) MainMenu(pref preferences.UserPreference) View {
	rows := r.categoryRows()
	rows = append(rows, []Action{myAccount})
	if !pref.IsPremium {
		rows = append(rows, []Action{goPremium})
	}
	return View{
		Text: "📋 <b>Main menu</b>\n\nPick a category:",
		Rows: rows,
	}
}

// Category lists the leagues of a category with their markers, followed by the
// confirm and back actions. ok is false for an unknown category.
func (r *Renderer) Category(categoryID string, pref preferences.UserPreference) (View, bool) {
	cat, ok := r.catalog.Category(categoryID)
	if !ok {
		return View{}, false
	}

	leagues := r.catalog.AllInCategory(categoryID)
	rows := make([][]Action, 0, len(leagues)+2)
	for _, lg := range leagues {
		rows = append(rows, []Action{{
			Label: fmt.Sprintf("%s %s", MarkerFor(lg, pref), lg.DisplayName),
			Token: ToggleToken(lg.ID),
		}})
	}
	rows = append(rows, []Action{confirmState}, []Action{backToMenu})

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\nTap a league to follow or unfollow it.", html.EscapeString(cat.DisplayName))
	if !pref.IsPremium {
		fmt.Fprintf(&b, "\n\n%s Premium league · Free plan: %d league.", MarkerLocked, preferences.FreeTierLimit)
	}

	return View{Text: b.String(), Rows: rows}, true
}

// ToggleAlert is the short callback answer after a successful toggle
func (r *Renderer) ToggleAlert(leagueID string, pref preferences.UserPreference) string {
	if pref.Has(leagueID) {
		return fmt.Sprintf("✅ %s added", r.leagueName(leagueID))
	}
	return fmt.Sprintf("%s removed", r.leagueName(leagueID))
}

// Selection summarises the followed leagues after the user confirms
func (r *Renderer) Selection(pref preferences.UserPreference) View {
	if len(pref.SelectedLeagues) == 0 {
		return View{
			Text: "You are not following any league yet.\n\nPick a category to choose one:",
			Rows: r.categoryRows(),
		}
	}

	var b strings.Builder
	b.WriteString("✅ <b>Selection saved!</b>\n\nYou will receive summaries for:\n")
	rows := make([][]Action, 0, len(pref.SelectedLeagues)+1)
	for _, id := range pref.SelectedLeagues {
		name := r.leagueName(id)
		fmt.Fprintf(&b, "• %s\n", html.EscapeString(name))
		rows = append(rows, []Action{
			{Label: "📅 " + name, Token: MatchesToken(id)},
			{Label: "🔔 Alerts", Token: AlertsToken(id)},
		})
	}
	b.WriteString("\nWhat would you like to do?")
	rows = append(rows, []Action{{Label: "⬅️ Back to menu", Token: ActionMenu}})

	return View{Text: b.String(), Rows: rows}
}

// Account shows the plan and the followed leagues
func (r *Renderer) Account(pref preferences.UserPreference) View {
	status := "🆓 Free"
	if pref.IsPremium {
		status = "👑 Premium"
	}

	names := make([]string, 0, len(pref.SelectedLeagues))
	for _, id := range pref.SelectedLeagues {
		names = append(names, html.EscapeString(r.leagueName(id)))
	}
	leagues := "None"
	if len(names) > 0 {
		leagues = strings.Join(names, ", ")
	}

	var b strings.Builder
	b.WriteString("⚙️ <b>My subscription</b>\n\n")
	fmt.Fprintf(&b, "📊 <b>Plan:</b> %s\n", status)
	fmt.Fprintf(&b, "⚽ <b>Leagues:</b> %s\n\n", leagues)

	rows := [][]Action{}
	if pref.IsPremium {
		b.WriteString("Thanks for your support! 💚")
	} else {
		b.WriteString("Go Premium to unlock every league!")
		rows = append(rows, []Action{goPremium})
	}
	rows = append(rows, []Action{backToMenu})

	return View{Text: b.String(), Rows: rows}
}

// PremiumInfo is the premium pitch
func (r *Renderer) PremiumInfo() View {
	text := "👑 <b>FootBrief Premium</b>\n\n" +
		"Everything included:\n\n" +
		fmt.Sprintf("✅ <b>Every league</b> - %d competitions\n", r.catalog.Len()) +
		"✅ <b>Real-time alerts</b> - goals, cards, results\n" +
		"✅ <b>Detailed statistics</b> - xG, possession, shots\n" +
		"✅ <b>Personal summaries</b> - favourite teams\n" +
		"✅ <b>No ads</b>\n\n" +
		"💰 <b>Only " + premiumPrice + "</b>"

	return View{
		Text: text,
		Rows: [][]Action{
			{{Label: "💳 Subscribe (" + premiumPrice + ")", Token: ActionSubscribe}},
			{backToMenu},
		},
	}
}

// Subscribe is the payment placeholder
func (r *Renderer) Subscribe() View {
	return View{
		Text: "💳 <b>Payment</b>\n\nOnline payment is coming soon.\n\n" +
			"In the meantime, contact " + supportHandle + " to get Premium access! 🙏",
		Rows: [][]Action{{{Label: "⬅️ Back", Token: ActionPremium}}},
	}
}

// Matches is the match list placeholder for one league
func (r *Renderer) Matches(leagueID string) View {
	lg, ok := r.catalog.Get(leagueID)
	if !ok {
		return r.notFound()
	}
	return View{
		Text: fmt.Sprintf("📅 <b>%s matches</b>\n\n🔄 Loading matches...\n\n"+
			"<i>Summaries are sent automatically after each matchday.</i>", html.EscapeString(lg.DisplayName)),
		Rows: [][]Action{{backToMenu}},
	}
}

// Alerts is the alert subscription placeholder for one league
func (r *Renderer) Alerts(leagueID string) View {
	if !r.catalog.Contains(leagueID) {
		return r.notFound()
	}
	return View{
		Text: "🔔 <b>Alerts enabled!</b>\n\nYou will be notified about:\n" +
			"• Kick-off\n• Goals\n• Final results\n\n" +
			"<i>(Premium feature - coming soon)</i>",
		Rows: [][]Action{{backToMenu}},
	}
}

// Help lists the commands
func (r *Renderer) Help() View {
	return View{
		Text: "❓ <b>FootBrief help</b>\n\n" +
			"<b>Commands:</b>\n" +
			"/start - Start the bot\n" +
			"/menu - Show the menu\n" +
			"/account - Show your subscription\n" +
			"/delete - Delete your data\n" +
			"/help - This help\n\n" +
			"<b>How does it work?</b>\n" +
			"1. Pick a league\n" +
			"2. Receive summaries automatically\n" +
			"3. Go Premium to follow more leagues!\n\n" +
			"<b>Support:</b> " + supportHandle,
		Rows: [][]Action{{{Label: "📋 Menu", Token: ActionMenu}}},
	}
}

// Deleted confirms a data deletion request
func (r *Renderer) Deleted(ok bool) View {
	if !ok {
		return View{Text: "⚠️ We could not delete your data right now. Please try again later."}
	}
	return View{Text: "🗑 Your data has been deleted. Send /start to begin again."}
}

// Rejected renders a refused toggle. Upsell and limit views return to the
// league's category; unknown leagues fall back to the main menu.
func (r *Renderer) Rejected(err error, pref preferences.UserPreference) View {
	var rejectErr preferences.RejectError
	if !errors.As(err, &rejectErr) {
		return r.MainMenu(pref)
	}

	back := backToMenu
	if lg, ok := r.catalog.Get(rejectErr.LeagueID); ok {
		back = Action{Label: "⬅️ Back", Token: CategoryToken(lg.Category)}
	}

	switch rejectErr.Reason {
	case preferences.ReasonPremiumRequired:
		name := r.leagueName(rejectErr.LeagueID)
		return View{
			Text: fmt.Sprintf("🔒 <b>%s is a Premium league</b>\n\n"+
				"Go Premium to follow every league!", html.EscapeString(name)),
			Rows:  [][]Action{{goPremium}, {back}},
			Alert: fmt.Sprintf("🔒 %s requires Premium", name),
		}

	case preferences.ReasonLimitReached:
		current := "another league"
		if len(pref.SelectedLeagues) > 0 {
			current = html.EscapeString(r.leagueName(pref.SelectedLeagues[0]))
		}
		return View{
			Text: fmt.Sprintf("⚠️ <b>Limit reached</b>\n\n"+
				"You already follow <b>%s</b> on the free plan.\n\n"+
				"Unfollow it first, or go <b>Premium</b> to follow several leagues! 👑", current),
			Rows:  [][]Action{{goPremium}, {back}},
			Alert: "The free plan includes a single league",
		}

	default:
		view := r.MainMenu(pref)
		view.Alert = "League not found"
		return view
	}
}

// NotSaved appends the degraded-mode notice to v
func NotSaved(v View) View {
	v.Text += "\n\n" + notSavedNotice
	return v
}

// Entitlement notifies a user that their plan changed
func (r *Renderer) Entitlement(pref preferences.UserPreference) View {
	view := r.MainMenu(pref)
	if pref.IsPremium {
		view.Text = "👑 <b>Premium activated!</b>\n\nYou can now follow every league. Pick a category:"
		return view
	}

	text := "Your Premium subscription has ended. You are back on the free plan."
	if len(pref.SelectedLeagues) > 0 {
		text += fmt.Sprintf("\n\nYou keep following <b>%s</b>.", html.EscapeString(r.leagueName(pref.SelectedLeagues[0])))
	}
	view.Text = text
	return view
}

func (r *Renderer) notFound() View {
	return View{
		Text:  "League not found.",
		Rows:  [][]Action{{backToMenu}},
		Alert: "League not found",
	}
}
