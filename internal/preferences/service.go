package preferences

import (
	"context"
	"fmt"
	"slices"

	"footbrief-api/internal/config"
	"footbrief-api/internal/league"

	"go.uber.org/zap"
)

// Service applies selection rules to persisted preferences. Store failures never
// surface as errors: operations fall back to the intended or default state and
// report Saved=false.
type Service interface {
	// Validate returns the user's sanitized preference, or the default one. Never nil.
	Validate(ctx context.Context, userID int64) *UserPreference
	// Register records a first interaction and refreshes the display name
	Register(ctx context.Context, userID int64, displayName string) Outcome
	// Toggle selects or deselects leagueID. Only RejectErrors are returned.
	Toggle(ctx context.Context, userID int64, displayName, leagueID string) (Outcome, error)
	// Delete removes the user's record and forgets the cached copy
	Delete(ctx context.Context, userID int64) error
	// SetPremium applies an entitlement change, trimming the selection on downgrade
	SetPremium(ctx context.Context, userID int64, premium bool) Outcome
}

type preferenceService struct {
	store   Store
	cache   *Cache
	catalog *league.Catalog
	policy  FreeTierPolicy
	logger  *zap.Logger
}

// NewPreferenceService creates a preference service. cache may be nil.
func NewPreferenceService(store Store, cache *Cache, catalog *league.Catalog, cfg config.SelectionConfig, logger *zap.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("league catalog is required")
	}

	policy := FreeTierPolicy(cfg.FreeTierPolicy)
	if policy == "" {
		policy = PolicyReplace
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("unknown free tier policy %q", cfg.FreeTierPolicy)
	}

	return &preferenceService{
		store:   store,
		cache:   cache,
		catalog: catalog,
		policy:  policy,
		logger:  logger,
	}, nil
}

// loaded is the outcome of reading a user: pref is always usable, exists reports a
// stored record and ok is false when the store could not be read.
type loaded struct {
	pref   UserPreference
	exists bool
	ok     bool
}

func (s *preferenceService) load(ctx context.Context, userID int64) loaded {
	if cached, ok := s.cache.Get(userID); ok {
		return loaded{pref: Sanitize(*cached, s.catalog), exists: true, ok: true}
	}

	stored, err := s.store.FindUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load preferences, using defaults",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return loaded{pref: *NewDefault(userID)}
	}
	if stored == nil {
		return loaded{pref: *NewDefault(userID), ok: true}
	}

	stored.UserID = userID
	s.cache.Set(stored)

	clean := Sanitize(*stored, s.catalog)
	if len(clean.SelectedLeagues) != len(stored.SelectedLeagues) {
		s.logger.Info("Dropped stale or over-quota leagues from stored preference",
			zap.Int64("user_id", userID),
			zap.Strings("stored", stored.SelectedLeagues),
			zap.Strings("kept", clean.SelectedLeagues))
	}
	return loaded{pref: clean, exists: true, ok: true}
}

func (s *preferenceService) save(ctx context.Context, pref UserPreference) bool {
	if err := s.store.UpsertUser(ctx, &pref); err != nil {
		s.cache.Invalidate(pref.UserID)
		s.logger.Warn("Failed to save preferences",
			zap.Int64("user_id", pref.UserID),
			zap.Strings("leagues", pref.SelectedLeagues),
			zap.Error(err))
		return false
	}
	s.cache.Set(&pref)
	return true
}

func (s *preferenceService) Validate(ctx context.Context, userID int64) *UserPreference {
	current := s.load(ctx, userID)
	return &current.pref
}

func (s *preferenceService) Register(ctx context.Context, userID int64, displayName string) Outcome {
	current := s.load(ctx, userID)
	pref := current.pref
	if displayName != "" {
		pref.DisplayName = displayName
	}

	if !current.ok {
		return Outcome{Preference: &pref, Saved: false}
	}
	if current.exists && pref.DisplayName == current.pref.DisplayName {
		return Outcome{Preference: &pref, Saved: true}
	}

	saved := s.save(ctx, pref)
	if saved && !current.exists {
		s.logger.Info("Registered new user", zap.Int64("user_id", userID))
	}
	return Outcome{Preference: &pref, Saved: saved}
}

func (s *preferenceService) Toggle(ctx context.Context, userID int64, displayName, leagueID string) (Outcome, error) {
	if !s.catalog.Contains(leagueID) {
		return Outcome{}, newRejectError(ReasonUnknownLeague, leagueID)
	}

	current := s.load(ctx, userID)
	pref := current.pref
	if displayName != "" {
		pref.DisplayName = displayName
	}

	next, err := Toggle(pref, leagueID, s.catalog, s.policy)
	if err != nil {
		s.logger.Debug("Toggle rejected",
			zap.Int64("user_id", userID),
			zap.String("league_id", leagueID),
			zap.Error(err))
		return Outcome{Preference: &pref, Saved: current.ok}, err
	}

	// Writing over a record we could not read would clobber fields such as the
	// premium flag, so an unreadable store only yields the intended state.
	if !current.ok {
		return Outcome{Preference: &next, Saved: false}, nil
	}

	saved := s.save(ctx, next)
	s.logger.Debug("Toggled league",
		zap.Int64("user_id", userID),
		zap.String("league_id", leagueID),
		zap.Strings("leagues", next.SelectedLeagues),
		zap.Bool("saved", saved))
	return Outcome{Preference: &next, Saved: saved}, nil
}

func (s *preferenceService) Delete(ctx context.Context, userID int64) error {
	defer s.cache.Invalidate(userID)

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		s.logger.Warn("Failed to delete preferences", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Info("Deleted user preferences", zap.Int64("user_id", userID))
	return nil
}

func (s *preferenceService) SetPremium(ctx context.Context, userID int64, premium bool) Outcome {
	current := s.load(ctx, userID)

	next := current.pref.Clone()
	next.IsPremium = premium
	next = Sanitize(next, s.catalog)

	if !current.ok {
		return Outcome{Preference: &next, Saved: false}
	}
	if current.exists && current.pref.IsPremium == premium &&
		slices.Equal(current.pref.SelectedLeagues, next.SelectedLeagues) {
		return Outcome{Preference: &next, Saved: true}
	}

	saved := s.save(ctx, next)
	s.logger.Info("Applied entitlement change",
		zap.Int64("user_id", userID),
		zap.Bool("premium", premium),
		zap.Strings("leagues", next.SelectedLeagues),
		zap.Bool("saved", saved))
	return Outcome{Preference: &next, Saved: saved}
}
