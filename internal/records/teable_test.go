package records

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"footbrief-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestTeable(t *testing.T, handler http.HandlerFunc) *TeableBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTeableBackend(config.TeableConfig{
		BaseURL: server.URL + "/",
		TableID: "tblUsers",
		Token:   "secret-token",
	}, server.Client(), zaptest.NewLogger(t))
}

func TestTeableBackend_SearchSendsFilter(t *testing.T) {
	backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/table/tblUsers/record", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "name", r.URL.Query().Get("fieldKeyType"))

		var filter teableFilter
		assert.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filter")), &filter))
		if !assert.Len(t, filter.FilterSet, 1) {
			return
		}
		assert.Equal(t, FieldUserID, filter.FilterSet[0].FieldID)
		assert.Equal(t, "is", filter.FilterSet[0].Operator)
		assert.EqualValues(t, 42, filter.FilterSet[0].Value)

		w.Write([]byte(`{"records":[{"id":"rec1","fields":{
			"user_id": 42,
			"display_name": "Ana",
			"selected_leagues": "lg_fr",
			"is_premium": false,
			"updated_at": "2025-03-14T09:30:00Z"
		}}]}`))
	})

	rows, err := backend.Search(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		ID:          "rec1",
		UserID:      42,
		DisplayName: "Ana",
		Leagues:     []string{"lg_fr"},
		Premium:     false,
		UpdatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}, rows[0])
}

func TestTeableBackend_SearchResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Row
	}{
		{
			name: "empty page",
			body: `{"records":[]}`,
			want: []Row{},
		},
		{
			name: "bare array with string numbers",
			body: `[{"id":"a","fields":{"user_id":"42","selected_leagues":"lg_es, lg_it","is_premium":"true"}},
			        {"id":"b","fields":{"user_id":42}}]`,
			want: []Row{
				{ID: "a", UserID: 42, Leagues: []string{"lg_es", "lg_it"}, Premium: true},
				{ID: "b", UserID: 42, Leagues: []string{}},
			},
		},
		{
			name: "single record object",
			body: `{"id":"only","fields":{"user_id":4.2e1,"selected_leagues":["lg_de"],"display_name":null}}`,
			want: []Row{{ID: "only", UserID: 42, Leagues: []string{"lg_de"}}},
		},
		{
			name: "legacy single-slot field",
			body: `{"records":[{"id":"old","fields":{"user_id":42,"selected_league":"lg_uk"}}]}`,
			want: []Row{{ID: "old", UserID: 42, Leagues: []string{"lg_uk"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			rows, err := backend.Search(context.Background(), 42)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestTeableBackend_SearchMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "empty body", body: ``},
		{name: "missing user id", body: `{"records":[{"id":"x","fields":{"display_name":"Ana"}}]}`},
		{name: "non numeric user id", body: `[{"id":"x","fields":{"user_id":"abc"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := backend.Search(context.Background(), 42)
			require.Error(t, err)

			var malformed *MalformedError
			assert.ErrorAs(t, err, &malformed)
			assert.False(t, isRetryable(err))
		})
	}
}

func TestTeableBackend_StatusErrors(t *testing.T) {
	backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"slow down"}`))
	})

	_, err := backend.Search(context.Background(), 42)
	require.Error(t, err)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusTooManyRequests, status.StatusCode)
	assert.Contains(t, status.Body, "slow down")
	assert.True(t, isRetryable(err))
}

func TestTeableBackend_CreateAndUpdatePayloads(t *testing.T) {
	type captured struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []captured

	backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, body: body})
		w.Write([]byte(`{}`))
	})

	row := Row{
		UserID:      42,
		DisplayName: "Ana",
		Leagues:     []string{"lg_es", "lg_it"},
		Premium:     true,
		UpdatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, backend.Create(context.Background(), row))
	require.NoError(t, backend.Update(context.Background(), "rec1", row))

	require.Len(t, calls, 2)

	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/api/table/tblUsers/record", calls[0].path)
	assert.Equal(t, "name", calls[0].body["fieldKeyType"])
	created := calls[0].body["records"].([]any)[0].(map[string]any)["fields"].(map[string]any)
	assert.EqualValues(t, 42, created[FieldUserID])
	assert.Equal(t, "lg_es,lg_it", created[FieldSelectedLeagues])
	assert.Equal(t, true, created[FieldIsPremium])
	assert.Equal(t, "2025-03-14T09:30:00Z", created[FieldUpdatedAt])

	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "/api/table/tblUsers/record/rec1", calls[1].path)
	updated := calls[1].body["record"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "Ana", updated[FieldDisplayName])
}

func TestTeableBackend_DeleteAndPing(t *testing.T) {
	var methods []string
	backend := newTestTeable(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"records":[]}`))
	})

	require.NoError(t, backend.Delete(context.Background(), "rec9"))
	require.NoError(t, backend.Ping(context.Background()))

	assert.Equal(t, []string{
		"DELETE /api/table/tblUsers/record/rec9",
		"GET /api/table/tblUsers/record",
	}, methods)
}

func TestTeableBackend_TransportErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	backend := NewTeableBackend(config.TeableConfig{BaseURL: server.URL, TableID: "t", Token: "x"}, nil, zaptest.NewLogger(t))

	_, err := backend.Search(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, isRetryable(err))
}
