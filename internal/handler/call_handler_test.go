package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

func callRouter(store *memStore) *mux.Router {
	h := NewCallHandler(store.Businesses(), store.Calls())
	router := mux.NewRouter()
	h.SetupCallRoutes(router)
	return router
}

type listCallsResponse struct {
	Calls      []domain.Call `json:"calls"`
	Pagination Pagination    `json:"pagination"`
}

func TestListCallsPagination(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{{ID: "biz-1", ClerkUserID: "clerk-1"}},
	}
	seedCalls(store, "biz-1", 25)
	router := callRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls?page=2&limit=10", "", "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp listCallsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Calls, 10)
	require.Equal(t, 2, resp.Pagination.Page)
	require.Equal(t, 10, resp.Pagination.Limit)
	require.Equal(t, int64(25), resp.Pagination.Total)
	require.Equal(t, int64(3), resp.Pagination.TotalPages)

	// Newest first: page 2 starts at the 11th most recent call.
	require.Equal(t, "call-15", resp.Calls[0].ID)
}

func TestListCallsStatusFilter(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{{ID: "biz-1", ClerkUserID: "clerk-1"}},
	}
	seedCalls(store, "biz-1", 4)
	store.calls[0].Status = domain.CallStatusMissed
	router := callRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls?status=missed", "", "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp listCallsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Calls, 1)
	require.Equal(t, int64(1), resp.Pagination.Total)
}

func TestListCallsRejectsBadPage(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{{ID: "biz-1", ClerkUserID: "clerk-1"}},
	}
	router := callRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls?page=zero", "", "clerk-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCallsWithoutBusiness(t *testing.T) {
	router := callRouter(&memStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls", "", "clerk-1"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCallScopedToOwnBusiness(t *testing.T) {
	store := &memStore{
		businesses: []*domain.Business{
			{ID: "biz-1", ClerkUserID: "clerk-1"},
			{ID: "biz-2", ClerkUserID: "clerk-2"},
		},
	}
	seedCalls(store, "biz-1", 1)
	store.calls = append(store.calls, &domain.Call{ID: "call-other", BusinessID: "biz-2"})
	router := callRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls/call-1", "", "clerk-1"))
	require.Equal(t, http.StatusOK, w.Code)

	// Another tenant's call is a 404, not a 403.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/calls/call-other", "", "clerk-1"))
	require.Equal(t, http.StatusNotFound, w.Code)
}
