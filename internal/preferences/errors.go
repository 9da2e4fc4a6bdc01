package preferences

import (
	"errors"
	"fmt"
)

// Reject reasons
const (
	ReasonUnknownLeague   = "UNKNOWN_LEAGUE"
	ReasonPremiumRequired = "PREMIUM_REQUIRED"
	ReasonLimitReached    = "LIMIT_REACHED"
)

// RejectError is returned when a toggle is refused. It never carries a state change.
type RejectError struct {
	Reason   string
	LeagueID string
}

func (e RejectError) Error() string {
	if e.LeagueID == "" {
		return fmt.Sprintf("selection rejected: %s", e.Reason)
	}
	return fmt.Sprintf("selection of %q rejected: %s", e.LeagueID, e.Reason)
}

func (e RejectError) Code() string {
	return e.Reason
}

func (e RejectError) Message() string {
	switch e.Reason {
	case ReasonUnknownLeague:
		return "league not found"
	case ReasonPremiumRequired:
		return "this league requires a premium subscription"
	case ReasonLimitReached:
		return "the free plan includes a single league"
	default:
		return "selection rejected"
	}
}

func (e RejectError) Temporary() bool {
	return false
}

// Is matches on the reason so errors.Is(err, ErrPremiumRequired) ignores the league id
func (e RejectError) Is(target error) bool {
	t, ok := target.(RejectError)
	return ok && t.Reason == e.Reason
}

var (
	ErrUnknownLeague   = RejectError{Reason: ReasonUnknownLeague}
	ErrPremiumRequired = RejectError{Reason: ReasonPremiumRequired}
	ErrLimitReached    = RejectError{Reason: ReasonLimitReached}
)

func newRejectError(reason, leagueID string) error {
	return RejectError{Reason: reason, LeagueID: leagueID}
}

// IsRejectError determines if err is a selection rejection
func IsRejectError(err error) bool {
	var rejectErr RejectError
	return errors.As(err, &rejectErr)
}
