package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/services/dispatch"
)

func webhookRouter(store *memStore) *mux.Router {
	dispatcher := dispatch.NewDispatcher(store, nil, nil)
	h := NewWebhookHandler(dispatcher)
	router := mux.NewRouter()
	h.SetupWebhookRoutes(router)
	return router
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	store := &memStore{}
	router := webhookRouter(store)

	bodies := []string{
		`{"type":"call-end","call":{"id":"never-seen","transcript":"hi"}}`, // dispatch fails internally
		`{"type":"unknown-event"}`,
		`not even json`,
		`{}`,
	}
	for _, body := range bodies {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vapi", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code, "body %q", body)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.True(t, resp["success"])
	}
}

func TestWebhookDispatchesCallStart(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{{ID: "biz-1", PhoneNumber: "+15550001111"}},
	}
	router := webhookRouter(store)

	body := `{"type":"call-start","call":{"id":"vapi-1","from":"+15552223333","to":"+15550001111"}}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vapi", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.calls, 1)
	require.Equal(t, "vapi-1", store.calls[0].VapiCallID)
}

func TestWebhookVerificationEchoesChallenge(t *testing.T) {
	router := webhookRouter(&memStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vapi?challenge=abc123", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "abc123", w.Body.String())
}

func TestWebhookVerificationWithoutChallenge(t *testing.T) {
	router := webhookRouter(&memStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vapi", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
}
