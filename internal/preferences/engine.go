package preferences

import (
	"fmt"
	"slices"

	"footbrief-api/internal/league"
)

// Toggle computes the selection that results from a user tapping leagueID.
// It is pure: pref is not modified and nothing is persisted.
func Toggle(pref UserPreference, leagueID string, catalog *league.Catalog, policy FreeTierPolicy) (UserPreference, error) {
	lg, ok := catalog.Get(leagueID)
	if !ok {
		return pref, newRejectError(ReasonUnknownLeague, leagueID)
	}

	// A premium-only id never sits in a free selection, so this only fires on an add.
	if lg.PremiumOnly && !pref.IsPremium {
		return pref, newRejectError(ReasonPremiumRequired, leagueID)
	}

	next := pref.Clone()

	if idx := slices.Index(next.SelectedLeagues, leagueID); idx >= 0 {
		next.SelectedLeagues = slices.Delete(next.SelectedLeagues, idx, idx+1)
		return next, nil
	}

	if next.IsPremium || len(next.SelectedLeagues) < FreeTierLimit {
		next.SelectedLeagues = append(next.SelectedLeagues, leagueID)
		return next, nil
	}

	if policy == PolicyReject {
		return pref, newRejectError(ReasonLimitReached, leagueID)
	}
	next.SelectedLeagues = []string{leagueID}
	return next, nil
}

// Sanitize drops ids the catalog no longer knows and duplicates. For free users it
// also drops premium-only ids and keeps at most FreeTierLimit leagues, first kept.
func Sanitize(pref UserPreference, catalog *league.Catalog) UserPreference {
	out := pref.Clone()
	kept := make([]string, 0, len(out.SelectedLeagues))

	for _, id := range out.SelectedLeagues {
		lg, ok := catalog.Get(id)
		if !ok || slices.Contains(kept, id) {
			continue
		}
		if !out.IsPremium {
			if lg.PremiumOnly || len(kept) >= FreeTierLimit {
				continue
			}
		}
		kept = append(kept, id)
	}

	out.SelectedLeagues = kept
	return out
}

// CheckInvariants returns an error describing the first broken selection rule
func CheckInvariants(pref UserPreference, catalog *league.Catalog) error {
	seen := make(map[string]struct{}, len(pref.SelectedLeagues))
	for _, id := range pref.SelectedLeagues {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("league %q selected twice", id)
		}
		seen[id] = struct{}{}

		lg, ok := catalog.Get(id)
		if !ok {
			return fmt.Errorf("league %q is not in the catalog", id)
		}
		if !pref.IsPremium && lg.PremiumOnly {
			return fmt.Errorf("free user follows premium-only league %q", id)
		}
	}

	if !pref.IsPremium && len(pref.SelectedLeagues) > FreeTierLimit {
		return fmt.Errorf("free user follows %d leagues", len(pref.SelectedLeagues))
	}
	return nil
}
