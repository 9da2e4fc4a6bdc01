package records

import (
	"context"
	"strings"
	"time"
)

// Field names shared by every tabular backend
const (
	FieldUserID          = "user_id"
	FieldDisplayName     = "display_name"
	FieldSelectedLeagues = "selected_leagues"
	FieldIsPremium       = "is_premium"
	FieldUpdatedAt       = "updated_at"

	// legacySelectedLeague is the single-slot column name used by early sheets
	legacySelectedLeague = "selected_league"
	// legacyUsername held the Telegram username before display_name existed
	legacyUsername       = "username"
)

// Row is one user record as stored in a backend. ID is backend-assigned and opaque.
type Row struct {
	ID          string
	UserID      int64
	DisplayName string
	Leagues     []string
	Premium     bool
	UpdatedAt   time.Time
}

// Backend is a tabular record store supporting equality search on the user id.
// Search returns matches in backend order; the first is authoritative.
type Backend interface {
	Search(ctx context.Context, userID int64) ([]Row, error)
	Create(ctx context.Context, row Row) error
	Update(ctx context.Context, id string, row Row) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// JoinLeagues encodes a selection into a single cell
func JoinLeagues(leagues []string) string {
	return strings.Join(leagues, ",")
}

// SplitLeagues decodes a selection cell, ignoring blanks and surrounding spaces
func SplitLeagues(cell string) []string {
	out := []string{}
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "x":
		return true
	default:
		return false
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
