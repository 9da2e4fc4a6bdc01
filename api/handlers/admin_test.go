package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"footbrief-api/internal/events"
	"footbrief-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func postPremium(t *testing.T, bus events.EventBus, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := setupTest()
	handler := NewAdminHandler(bus, logger.FromZap(zaptest.NewLogger(t)))
	router.POST("/users/:id/premium", handler.SetPremium)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	return w
}

func TestAdminHandler_SetPremium(t *testing.T) {
	bus := events.NewMockEventBus()

	w := postPremium(t, bus, "/users/4242/premium", `{"premium": true}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["premium"])
	assert.EqualValues(t, 4242, response["user_id"])
	assert.NotEmpty(t, response["correlation_id"])

	published := bus.GetPublishedEvents(events.TopicEntitlementChanged)
	require.Len(t, published, 1)
	event := published[0].(events.EntitlementChanged)
	assert.Equal(t, int64(4242), event.UserID)
	assert.True(t, event.Premium)
	assert.Equal(t, EntitlementSourceAdmin, event.Source)
	assert.Equal(t, response["correlation_id"], event.CorrelationID)
}

func TestAdminHandler_SetPremiumRevokeWithSource(t *testing.T) {
	bus := events.NewMockEventBus()

	w := postPremium(t, bus, "/users/7/premium", `{"premium": false, "source": "stripe"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	published := bus.GetPublishedEvents(events.TopicEntitlementChanged)
	require.Len(t, published, 1)
	event := published[0].(events.EntitlementChanged)
	assert.False(t, event.Premium)
	assert.Equal(t, "stripe", event.Source)
}

func TestAdminHandler_SetPremiumInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "non numeric id", path: "/users/abc/premium", body: `{"premium": true}`},
		{name: "negative id", path: "/users/-3/premium", body: `{"premium": true}`},
		{name: "missing flag", path: "/users/3/premium", body: `{}`},
		{name: "malformed json", path: "/users/3/premium", body: `{"premium":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewMockEventBus()

			w := postPremium(t, bus, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, bus.GetPublishedEvents(events.TopicEntitlementChanged))
		})
	}
}

func TestAdminHandler_SetPremiumBusClosed(t *testing.T) {
	bus := events.NewMockEventBus()
	bus.SetPublishError(errors.New("event bus is closed"))

	w := postPremium(t, bus, "/users/3/premium", `{"premium": true}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
