package preferences_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"footbrief-api/internal/config"
	"footbrief-api/internal/league"
	"footbrief-api/internal/mocks"
	"footbrief-api/internal/preferences"
	"footbrief-api/internal/records"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

var errStoreDown = &records.StoreError{Kind: records.KindUnavailable, Op: "find", Cause: errors.New("connection refused")}

func newService(t *testing.T, store preferences.Store, policy preferences.FreeTierPolicy) (preferences.Service, *preferences.Cache) {
	t.Helper()
	cache := preferences.NewCache(0, 0, clockwork.NewFakeClock())
	svc, err := preferences.NewPreferenceService(store, cache, league.Default(),
		config.SelectionConfig{FreeTierPolicy: string(policy)}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc, cache
}

func TestNewPreferenceService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	logger := zaptest.NewLogger(t)

	_, err := preferences.NewPreferenceService(nil, nil, league.Default(), config.SelectionConfig{}, logger)
	assert.Error(t, err)

	_, err = preferences.NewPreferenceService(store, nil, nil, config.SelectionConfig{}, logger)
	assert.Error(t, err)

	_, err = preferences.NewPreferenceService(store, nil, league.Default(), config.SelectionConfig{FreeTierPolicy: "evict"}, logger)
	assert.ErrorContains(t, err, "evict")

	svc, err := preferences.NewPreferenceService(store, nil, league.Default(), config.SelectionConfig{}, logger)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestService_Validate(t *testing.T) {
	t.Run("no record yields default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(5)).Return(nil, nil)

		pref := svc.Validate(context.Background(), 5)
		require.NotNil(t, pref)
		assert.Equal(t, *preferences.NewDefault(5), *pref)
	})

	t.Run("store failure yields default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(5)).Return(nil, errStoreDown)

		pref := svc.Validate(context.Background(), 5)
		require.NotNil(t, pref)
		assert.Empty(t, pref.SelectedLeagues)
		assert.False(t, pref.IsPremium)
	})

	t.Run("stale and over-quota ids are filtered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(5)).Return(&preferences.UserPreference{
			UserID:          5,
			SelectedLeagues: []string{"lg_retired", "lg_es", "lg_uk", "lg_fr"},
		}, nil)

		pref := svc.Validate(context.Background(), 5)
		assert.Equal(t, []string{"lg_uk"}, pref.SelectedLeagues)
		assert.NoError(t, preferences.CheckInvariants(*pref, league.Default()))
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, cache := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(5)).
			Return(&preferences.UserPreference{UserID: 5, SelectedLeagues: []string{"lg_de"}}, nil).
			Times(1)

		first := svc.Validate(context.Background(), 5)
		second := svc.Validate(context.Background(), 5)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, cache.Len())
	})
}

func TestService_Toggle_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		policy  preferences.FreeTierPolicy
		stored  *preferences.UserPreference
		league  string
		want    []string
		wantErr error
		saves   bool
	}{
		{
			name:   "first free league",
			policy: preferences.PolicyReplace,
			stored: nil,
			league: "lg_fr",
			want:   []string{"lg_fr"},
			saves:  true,
		},
		{
			name:    "premium league for a free user",
			policy:  preferences.PolicyReplace,
			stored:  &preferences.UserPreference{UserID: 9, SelectedLeagues: []string{"lg_fr"}},
			league:  "lg_es",
			want:    []string{"lg_fr"},
			wantErr: preferences.ErrPremiumRequired,
		},
		{
			name:   "replace policy",
			policy: preferences.PolicyReplace,
			stored: &preferences.UserPreference{UserID: 9, SelectedLeagues: []string{"lg_fr"}},
			league: "lg_uk",
			want:   []string{"lg_uk"},
			saves:  true,
		},
		{
			name:    "reject policy",
			policy:  preferences.PolicyReject,
			stored:  &preferences.UserPreference{UserID: 9, SelectedLeagues: []string{"lg_fr"}},
			league:  "lg_uk",
			want:    []string{"lg_fr"},
			wantErr: preferences.ErrLimitReached,
		},
		{
			name:   "premium append",
			policy: preferences.PolicyReplace,
			stored: &preferences.UserPreference{UserID: 9, SelectedLeagues: []string{"lg_fr"}, IsPremium: true},
			league: "lg_es",
			want:   []string{"lg_fr", "lg_es"},
			saves:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			svc, _ := newService(t, store, tt.policy)

			store.EXPECT().FindUser(gomock.Any(), int64(9)).Return(tt.stored, nil)
			if tt.saves {
				store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, pref *preferences.UserPreference) error {
						assert.Equal(t, int64(9), pref.UserID)
						assert.Equal(t, "Ana", pref.DisplayName)
						assert.Equal(t, tt.want, pref.SelectedLeagues)
						return nil
					})
			}

			outcome, err := svc.Toggle(context.Background(), 9, "Ana", tt.league)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.True(t, outcome.Saved)
			}
			require.NotNil(t, outcome.Preference)
			assert.Equal(t, tt.want, outcome.Preference.SelectedLeagues)
		})
	}
}

func TestService_Toggle_UnknownLeagueTouchesNoStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc, _ := newService(t, store, preferences.PolicyReplace)

	outcome, err := svc.Toggle(context.Background(), 9, "Ana", "lg_zz")
	assert.ErrorIs(t, err, preferences.ErrUnknownLeague)
	assert.Nil(t, outcome.Preference)
}

func TestService_Toggle_StoreUnavailable(t *testing.T) {
	t.Run("unreadable store returns intended state without writing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(9)).Return(nil, errStoreDown)

		outcome, err := svc.Toggle(context.Background(), 9, "Ana", "lg_de")
		require.NoError(t, err)
		assert.False(t, outcome.Saved)
		assert.Equal(t, []string{"lg_de"}, outcome.Preference.SelectedLeagues)
	})

	t.Run("failed write keeps intended state and drops cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, cache := newService(t, store, preferences.PolicyReplace)

		stored := &preferences.UserPreference{UserID: 9, SelectedLeagues: []string{"lg_fr"}}
		store.EXPECT().FindUser(gomock.Any(), int64(9)).Return(stored, nil)
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(errStoreDown)

		outcome, err := svc.Toggle(context.Background(), 9, "", "lg_uk")
		require.NoError(t, err)
		assert.False(t, outcome.Saved)
		assert.Equal(t, []string{"lg_uk"}, outcome.Preference.SelectedLeagues)

		_, cached := cache.Get(9)
		assert.False(t, cached)
	})

	t.Run("every call failing never errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), gomock.Any()).Return(nil, errStoreDown).AnyTimes()
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(errStoreDown).AnyTimes()

		for _, id := range []string{"lg_fr", "lg_uk", "lg_uk", "lg_de"} {
			outcome, err := svc.Toggle(context.Background(), 9, "", id)
			require.NoError(t, err)
			assert.NoError(t, preferences.CheckInvariants(*outcome.Preference, league.Default()))
		}
	})
}

func TestService_Toggle_SuccessfulWriteIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc, _ := newService(t, store, preferences.PolicyReplace)

	store.EXPECT().FindUser(gomock.Any(), int64(9)).Return(nil, nil).Times(1)
	store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := svc.Toggle(context.Background(), 9, "", "lg_fr")
	require.NoError(t, err)

	outcome, err := svc.Toggle(context.Background(), 9, "", "lg_fr")
	require.NoError(t, err)
	assert.Empty(t, outcome.Preference.SelectedLeagues)
}

func TestService_Register(t *testing.T) {
	t.Run("new user is created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(3)).Return(nil, nil)
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Eq(&preferences.UserPreference{
			UserID:          3,
			DisplayName:     "Bo",
			SelectedLeagues: []string{},
		})).Return(nil)

		outcome := svc.Register(context.Background(), 3, "Bo")
		assert.True(t, outcome.Saved)
		assert.Equal(t, "Bo", outcome.Preference.DisplayName)
	})

	t.Run("known user with same name is not rewritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(3)).
			Return(&preferences.UserPreference{UserID: 3, DisplayName: "Bo", SelectedLeagues: []string{"lg_fr"}}, nil)

		outcome := svc.Register(context.Background(), 3, "Bo")
		assert.True(t, outcome.Saved)
		assert.Equal(t, []string{"lg_fr"}, outcome.Preference.SelectedLeagues)
	})

	t.Run("renamed user is updated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(3)).
			Return(&preferences.UserPreference{UserID: 3, DisplayName: "Bo", SelectedLeagues: []string{"lg_fr"}}, nil)
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Eq(&preferences.UserPreference{
			UserID:          3,
			DisplayName:     "Bob",
			SelectedLeagues: []string{"lg_fr"},
		})).Return(nil)

		outcome := svc.Register(context.Background(), 3, "Bob")
		assert.True(t, outcome.Saved)
	})

	t.Run("unreadable store skips the write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(3)).Return(nil, errStoreDown)

		outcome := svc.Register(context.Background(), 3, "Bo")
		assert.False(t, outcome.Saved)
		assert.Equal(t, "Bo", outcome.Preference.DisplayName)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("deleting a user without record succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().DeleteUser(gomock.Any(), int64(4)).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 4))
	})

	t.Run("cache is evicted even when the store fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, cache := newService(t, store, preferences.PolicyReplace)

		cache.Set(&preferences.UserPreference{UserID: 4})
		store.EXPECT().DeleteUser(gomock.Any(), int64(4)).Return(errStoreDown)

		err := svc.Delete(context.Background(), 4)
		assert.True(t, records.IsStoreError(err))

		_, cached := cache.Get(4)
		assert.False(t, cached)
	})
}

func TestService_SetPremium(t *testing.T) {
	t.Run("downgrade keeps the first free league", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(6)).Return(&preferences.UserPreference{
			UserID:          6,
			SelectedLeagues: []string{"lg_es", "lg_de", "lg_fr"},
			IsPremium:       true,
		}, nil)
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Eq(&preferences.UserPreference{
			UserID:          6,
			SelectedLeagues: []string{"lg_de"},
			IsPremium:       false,
		})).Return(nil)

		outcome := svc.SetPremium(context.Background(), 6, false)
		assert.True(t, outcome.Saved)
		assert.Equal(t, []string{"lg_de"}, outcome.Preference.SelectedLeagues)
	})

	t.Run("upgrade keeps the selection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(6)).Return(&preferences.UserPreference{
			UserID:          6,
			SelectedLeagues: []string{"lg_fr"},
		}, nil)
		store.EXPECT().UpsertUser(gomock.Any(), gomock.Any()).Return(nil)

		outcome := svc.SetPremium(context.Background(), 6, true)
		assert.True(t, outcome.Preference.IsPremium)
		assert.Equal(t, []string{"lg_fr"}, outcome.Preference.SelectedLeagues)
	})

	t.Run("unchanged flag is not rewritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(6)).Return(&preferences.UserPreference{
			UserID:    6,
			IsPremium: true,
		}, nil)

		outcome := svc.SetPremium(context.Background(), 6, true)
		assert.True(t, outcome.Saved)
	})

	t.Run("unreadable store skips the write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc, _ := newService(t, store, preferences.PolicyReplace)

		store.EXPECT().FindUser(gomock.Any(), int64(6)).Return(nil, errStoreDown)

		outcome := svc.SetPremium(context.Background(), 6, true)
		assert.False(t, outcome.Saved)
		assert.True(t, outcome.Preference.IsPremium)
	})
}

func TestService_InterleavedTogglesKeepInvariants(t *testing.T) {
	for _, policy := range []preferences.FreeTierPolicy{preferences.PolicyReplace, preferences.PolicyReject} {
		t.Run(string(policy), func(t *testing.T) {
			logger := zaptest.NewLogger(t)
			store := records.NewStore(records.NewMemoryBackend(), config.StoreConfig{Timeout: 5}, nil, logger)
			svc, err := preferences.NewPreferenceService(store, preferences.NewCache(0, time.Minute, nil),
				league.Default(), config.SelectionConfig{FreeTierPolicy: string(policy)}, logger)
			require.NoError(t, err)

			var wg sync.WaitGroup
			for g, id := range []string{"lg_fr", "lg_uk", "lg_es", "lg_de"} {
				wg.Add(1)
				go func(g int, id string) {
					defer wg.Done()
					for i := 0; i < 50; i++ {
						svc.Toggle(context.Background(), 77, fmt.Sprintf("tab-%d", g), id)
					}
				}(g, id)
			}
			wg.Wait()

			stored, err := store.FindUser(context.Background(), 77)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.NoError(t, preferences.CheckInvariants(*stored, league.Default()))
			assert.NoError(t, preferences.CheckInvariants(*svc.Validate(context.Background(), 77), league.Default()))
		})
	}
}
