//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"footbrief-api/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func premiumPath(userID int64) string {
	return fmt.Sprintf("/users/%d/premium", userID)
}

func TestEntitlementFlow_AdminUpgradeAndDowngrade(t *testing.T) {
	stack := NewTestStack(t, records.NewMemoryBackend())
	ctx := context.Background()

	stack.PostUpdate(t, callbackUpdate(1, testUserID, "toggle:lg_fr"))
	stack.Provider.Reset()

	w := stack.PostAdmin(t, premiumPath(testUserID), `{"premium": true, "source": "stripe"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["ok"])
	assert.Equal(t, true, response["premium"])
	assert.NotEmpty(t, response["correlation_id"])

	pref := stack.Prefs.Validate(ctx, testUserID)
	assert.True(t, pref.IsPremium)
	assert.Equal(t, []string{"lg_fr"}, pref.SelectedLeagues)

	notice := stack.LastMessage(t)
	assert.Equal(t, testUserID, notice.ChatID)
	assert.Contains(t, notice.Text, "Premium activated")

	stack.PostUpdate(t, callbackUpdate(2, testUserID, "toggle:lg_es"))
	stack.PostUpdate(t, callbackUpdate(3, testUserID, "toggle:lg_it"))
	assert.Equal(t, []string{"lg_fr", "lg_es", "lg_it"}, stack.Prefs.Validate(ctx, testUserID).SelectedLeagues)

	w = stack.PostAdmin(t, premiumPath(testUserID), `{"premium": false}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	pref = stack.Prefs.Validate(ctx, testUserID)
	assert.False(t, pref.IsPremium)
	assert.Equal(t, []string{"lg_fr"}, pref.SelectedLeagues)
	assert.Contains(t, stack.LastMessage(t).Text, "back on the free plan")
}

func TestEntitlementFlow_UnknownUserIsCreatedPremium(t *testing.T) {
	backend := records.NewMemoryBackend()
	stack := NewTestStack(t, backend)

	w := stack.PostAdmin(t, premiumPath(4711), `{"premium": true}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Equal(t, 1, backend.Len())
	assert.True(t, stack.Prefs.Validate(context.Background(), 4711).IsPremium)
}

func TestEntitlementFlow_AdminRequiresToken(t *testing.T) {
	stack := NewTestStack(t, records.NewMemoryBackend())

	w := stack.do(t, http.MethodPost, "/api/v1/admin"+premiumPath(testUserID), []byte(`{"premium": true}`), "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, stack.Prefs.Validate(context.Background(), testUserID).IsPremium)
	assert.Empty(t, stack.Provider.SentMessages())
}

func TestEntitlementFlow_ClosedBusRefusesChange(t *testing.T) {
	stack := NewTestStack(t, records.NewMemoryBackend())
	require.NoError(t, stack.Bus.Close())

	w := stack.PostAdmin(t, premiumPath(testUserID), `{"premium": true}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, stack.Prefs.Validate(context.Background(), testUserID).IsPremium)
}

func TestAdminFlow_WebhookSetup(t *testing.T) {
	stack := NewTestStack(t, records.NewMemoryBackend())

	w := stack.PostAdmin(t, "/telegram/webhook", `{"webhook_url": "https://bot.example.org/api/v1/telegram/webhook"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://bot.example.org/api/v1/telegram/webhook", stack.Provider.WebhookURL())
}
