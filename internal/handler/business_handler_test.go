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
)

func businessRouter(store *memStore) *mux.Router {
	h := NewBusinessHandler(store.Users(), store.Businesses(), store.Calls())
	router := mux.NewRouter()
	h.SetupBusinessRoutes(router)
	return router
}

func authedRequest(method, target, body, clerkUserID string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := ContextWithIdentity(r.Context(), &Identity{
		ClerkUserID: clerkUserID,
		Email:       "owner@glowsalon.example",
	})
	return r.WithContext(ctx)
}

func TestUpsertBusinessCreatesThenUpdates(t *testing.T) {
	store := &memStore{}
	router := businessRouter(store)

	first := `{"name":"Glow Salon","phone_number":"+15550001111","summary_channel":"sms"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/businesses", first, "clerk-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.businesses, 1)
	require.Len(t, store.users, 1)

	// Second POST with the same identity updates in place.
	second := `{"name":"Glow Salon & Spa","phone_number":"+15550002222","voice_tone":"professional"}`
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/businesses", second, "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, store.businesses, 1)
	b := store.businesses[0]
	require.Equal(t, "Glow Salon & Spa", b.Name)
	require.Equal(t, "+15550002222", b.PhoneNumber)
	require.Equal(t, domain.VoiceToneProfessional, b.VoiceTone)
	require.Len(t, store.users, 1)
}

func TestUpsertBusinessRejectsInvalidPayload(t *testing.T) {
	store := &memStore{}
	router := businessRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/businesses", `{"name":""}`, "clerk-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/businesses",
		`{"name":"Glow","summary_channel":"pigeon"}`, "clerk-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, store.businesses)
}

func TestUpsertBusinessRequiresIdentity(t *testing.T) {
	router := businessRouter(&memStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/businesses",
		strings.NewReader(`{"name":"Glow"}`)))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetOwnBusinessWithRecentCalls(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{{ID: "biz-1", ClerkUserID: "clerk-1", Name: "Glow Salon"}},
	}
	seedCalls(store, "biz-1", 15)
	router := businessRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/businesses", "", "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Business domain.Business `json:"business"`
		Calls    []domain.Call   `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "biz-1", resp.Business.ID)
	require.Len(t, resp.Calls, 10)
}

func TestGetOwnBusinessNotFound(t *testing.T) {
	router := businessRouter(&memStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/businesses", "", "clerk-1"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBusinessEnforcesOwnership(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{
			{ID: "biz-1", ClerkUserID: "clerk-1", Name: "Glow Salon"},
			{ID: "biz-2", ClerkUserID: "clerk-2", Name: "Rival Salon"},
		},
	}
	router := businessRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/businesses/biz-1", "", "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	// Someone else's business looks like not-found.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/businesses/biz-2", "", "clerk-1"))
	require.Equal(t, http.StatusNotFound, w.Code)
}
