//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"footbrief-api/internal/preferences"
	"footbrief-api/internal/records"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPersistenceFlow_PostgresSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	testDB := SetupTestDatabase(t)
	ctx := context.Background()

	first := NewTestStack(t, records.NewGormBackend(testDB.DB, zaptest.NewLogger(t)))
	first.PostUpdate(t, commandUpdate(1, testUserID, "/start"))
	first.PostUpdate(t, callbackUpdate(2, testUserID, "toggle:lg_de"))
	require.Equal(t, http.StatusAccepted, first.PostAdmin(t, premiumPath(testUserID), `{"premium": true}`).Code)
	first.PostUpdate(t, callbackUpdate(3, testUserID, "toggle:lg_es"))

	// A fresh process sees the same state through a new backend.
	second := NewTestStack(t, records.NewGormBackend(testDB.DB, zaptest.NewLogger(t)))
	pref := second.Prefs.Validate(ctx, testUserID)
	assert.Equal(t, "lena_ultras", pref.DisplayName)
	assert.True(t, pref.IsPremium)
	assert.Equal(t, []string{"lg_de", "lg_es"}, pref.SelectedLeagues)

	w := second.PostUpdate(t, commandUpdate(4, testUserID, "/account"))
	assert.Equal(t, http.StatusOK, w.Code)
	account := second.LastMessage(t).Text
	assert.Contains(t, account, "👑 Premium")
	assert.Contains(t, account, "Bundesliga")

	second.PostUpdate(t, commandUpdate(5, testUserID, "/delete"))
	var count int64
	require.NoError(t, testDB.DB.Model(&records.UserRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPersistenceFlow_CacheServesReadsWithinTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	testDB := SetupTestDatabase(t)
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	cache := preferences.NewCache(16, time.Minute, clock)

	stack := NewTestStack(t, records.NewGormBackend(testDB.DB, zaptest.NewLogger(t)), WithCache(cache))
	stack.PostUpdate(t, callbackUpdate(1, testUserID, "toggle:lg_fr"))
	require.Equal(t, []string{"lg_fr"}, stack.Prefs.Validate(ctx, testUserID).SelectedLeagues)

	// Rows changed behind the service stay hidden until the entry expires.
	require.NoError(t, testDB.DB.Where("user_id = ?", testUserID).Delete(&records.UserRecord{}).Error)
	assert.Equal(t, []string{"lg_fr"}, stack.Prefs.Validate(ctx, testUserID).SelectedLeagues)

	clock.Advance(2 * time.Minute)
	assert.Empty(t, stack.Prefs.Validate(ctx, testUserID).SelectedLeagues)
}

func TestHealthFlow_ReportsBackendState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	testDB := SetupTestDatabase(t)
	stack := NewTestStack(t, records.NewGormBackend(testDB.DB, zaptest.NewLogger(t)))

	w := stack.do(t, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	sqlDB, err := testDB.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = stack.do(t, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
