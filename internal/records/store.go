package records

import (
	"context"
	"time"

	"footbrief-api/internal/config"
	"footbrief-api/internal/preferences"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const defaultRetryInterval = 250 * time.Millisecond

// Store adapts a Backend to preferences.Store. Every call runs under one bounded
// timeout and retries retryable backend failures a limited number of times.
type Store struct {
	backend       Backend
	timeout       time.Duration
	maxRetries    int
	retryInterval time.Duration
	clock         clockwork.Clock
	logger        *zap.Logger
}

var _ preferences.Store = (*Store)(nil)

// StoreOption customises a Store
type StoreOption func(*Store)

// WithRetryInterval sets the wait before the first retry
func WithRetryInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		s.retryInterval = d
	}
}

// NewStore creates a record store client over backend
func NewStore(backend Backend, cfg config.StoreConfig, clock clockwork.Clock, logger *zap.Logger, opts ...StoreOption) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	s := &Store{
		backend:       backend,
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryInterval: defaultRetryInterval,
		clock:         clock,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindUser returns the user's record, or nil when none exists
func (s *Store) FindUser(ctx context.Context, userID int64) (*preferences.UserPreference, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.search(ctx, "find", userID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	row := matches[0]
	return &preferences.UserPreference{
		UserID:          row.UserID,
		DisplayName:     row.DisplayName,
		SelectedLeagues: row.Leagues,
		IsPremium:       row.Premium,
	}, nil
}

// UpsertUser replaces the first matching record or creates one. The lookup and the
// write are separate backend calls, so two concurrent first writes may both create.
func (s *Store) UpsertUser(ctx context.Context, pref *preferences.UserPreference) error {
	if pref == nil || pref.UserID <= 0 {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.search(ctx, "upsert", pref.UserID)
	if err != nil {
		return err
	}

	row := Row{
		UserID:      pref.UserID,
		DisplayName: pref.DisplayName,
		Leagues:     append([]string{}, pref.SelectedLeagues...),
		Premium:     pref.IsPremium,
		UpdatedAt:   s.clock.Now().UTC(),
	}

	if len(matches) > 0 {
		id := matches[0].ID
		err = s.retry(ctx, "update", pref.UserID, func(ctx context.Context) error {
			return s.backend.Update(ctx, id, row)
		})
	} else {
		err = s.retry(ctx, "create", pref.UserID, func(ctx context.Context) error {
			return s.backend.Create(ctx, row)
		})
	}
	if err != nil {
		return err
	}

	s.logger.Debug("Stored user preference",
		zap.Int64("user_id", pref.UserID),
		zap.Strings("leagues", pref.SelectedLeagues),
		zap.Bool("premium", pref.IsPremium),
		zap.Bool("created", len(matches) == 0))
	return nil
}

// DeleteUser removes every record of the user; no record is a successful no-op
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.search(ctx, "delete", userID)
	if err != nil {
		return err
	}

	// Last match first so positional ids of the remaining rows stay valid.
	for i := len(matches) - 1; i >= 0; i-- {
		id := matches[i].ID
		if err := s.retry(ctx, "delete", userID, func(ctx context.Context) error {
			return s.backend.Delete(ctx, id)
		}); err != nil {
			return err
		}
	}

	s.logger.Info("Deleted user records", zap.Int64("user_id", userID), zap.Int("count", len(matches)))
	return nil
}

// Ping checks backend reachability within the store timeout
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Ping(ctx); err != nil {
		return wrapError("ping", 0, err)
	}
	return nil
}

func (s *Store) search(ctx context.Context, op string, userID int64) ([]Row, error) {
	var rows []Row
	err := s.retry(ctx, op, userID, func(ctx context.Context) error {
		var err error
		rows, err = s.backend.Search(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	matches := rows[:0:0]
	for _, row := range rows {
		if row.UserID == userID {
			matches = append(matches, row)
		}
	}

	if len(matches) > 1 {
		s.logger.Warn("Multiple records match user, using the first",
			zap.Int64("user_id", userID),
			zap.Int("matches", len(matches)),
			zap.String("record_id", matches[0].ID))
	}
	return matches, nil
}

func (s *Store) retry(ctx context.Context, op string, userID int64, fn func(context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		s.logger.Warn("Retryable record store error",
			zap.String("op", op),
			zap.Int64("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx))
	if err != nil {
		s.logger.Error("Record store operation failed",
			zap.String("op", op),
			zap.Int64("user_id", userID),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return wrapError(op, userID, err)
	}
	return nil
}

func (s *Store) newBackOff() backoff.BackOff {
	// WithMaxRetries treats zero as unlimited.
	if s.maxRetries == 0 {
		return &backoff.StopBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = s.timeout
	b.MaxElapsedTime = s.timeout
	b.Multiplier = 2.0
	b.Clock = s.clock
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(s.maxRetries))
}
