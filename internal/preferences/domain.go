package preferences

import (
	"context"
	"slices"
)

// UserPreference is the persisted league selection of one Telegram user
type UserPreference struct {
	UserID          int64    `json:"user_id"`
	DisplayName     string   `json:"display_name"`
	SelectedLeagues []string `json:"selected_leagues"`
	IsPremium       bool     `json:"is_premium"`
}

// NewDefault returns the implicit record of a user seen for the first time
func NewDefault(userID int64) *UserPreference {
	return &UserPreference{
		UserID:          userID,
		SelectedLeagues: []string{},
	}
}

// Clone returns a deep copy
func (p UserPreference) Clone() UserPreference {
	p.SelectedLeagues = slices.Clone(p.SelectedLeagues)
	if p.SelectedLeagues == nil {
		p.SelectedLeagues = []string{}
	}
	return p
}

// Has reports whether leagueID is currently selected
func (p UserPreference) Has(leagueID string) bool {
	return slices.Contains(p.SelectedLeagues, leagueID)
}

// Tier returns the account tier
func (p UserPreference) Tier() Tier {
	if p.IsPremium {
		return TierPremium
	}
	return TierFree
}

// Tier is the freemium account level
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// FreeTierPolicy decides what happens when a free user with one league picks another
type FreeTierPolicy string

const (
	// PolicyReplace evicts the current league and keeps the new one
	PolicyReplace FreeTierPolicy = "replace"
	// PolicyReject refuses the second league with ErrLimitReached
	PolicyReject FreeTierPolicy = "reject"
)

// IsValid checks if the policy is known
func (p FreeTierPolicy) IsValid() bool {
	switch p {
	case PolicyReplace, PolicyReject:
		return true
	default:
		return false
	}
}

// FreeTierLimit is the number of leagues a free user may follow
const FreeTierLimit = 1

// Store persists preferences in the external record backend.
// Implementations absorb transport failures into returned errors and never panic;
// FindUser returns (nil, nil) when the user has no record.
type Store interface {
	FindUser(ctx context.Context, userID int64) (*UserPreference, error)
	UpsertUser(ctx context.Context, pref *UserPreference) error
	DeleteUser(ctx context.Context, userID int64) error
}

// Outcome is the result of a state-changing operation. Preference is the intended
// new state; Saved is false when the store could not be reached or refused the write.
type Outcome struct {
	Preference *UserPreference
	Saved      bool
}
