package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CallHandler handles HTTP requests for call history.
type CallHandler struct {
	businesses repository.BusinessRepository
	calls      repository.CallRepository
}

// NewCallHandler creates a new call handler.
func NewCallHandler(businesses repository.BusinessRepository, calls repository.CallRepository) *CallHandler {
	return &CallHandler{
		businesses: businesses,
		calls:      calls,
	}
}

// SetupCallRoutes registers call history routes.
func (h *CallHandler) SetupCallRoutes(router *mux.Router) {
	router.HandleFunc("/calls", h.ListCalls).Methods("GET")
	router.HandleFunc("/calls/{id}", h.GetCall).Methods("GET")
}

// Pagination describes one page of a listing response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// ListCalls godoc
// @Summary List calls for the caller's business
// @Description Returns a page of call records, newest first, with optional status and date filters
// @Tags calls
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by call status"
// @Param start_date query string false "Filter: timestamp >= (RFC3339)"
// @Param end_date query string false "Filter: timestamp <= (RFC3339)"
// @Success 200 {object} map[string]interface{} "Calls with pagination"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Business not found"
// @Router /api/calls [get]
func (h *CallHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	business, err := h.businesses.GetByClerkUserID(r.Context(), identity.ClerkUserID)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	if business == nil {
		sendErrorResponse(w, http.StatusNotFound, "business not found")
		return
	}

	filter, errMsg := parseListFilter(r, business.ID)
	if errMsg != "" {
		sendErrorResponse(w, http.StatusBadRequest, errMsg)
		return
	}

	calls, total, err := h.calls.List(r.Context(), filter)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to list calls")
		return
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}

	sendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"calls": calls,
		"pagination": Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// GetCall godoc
// @Summary Get one call
// @Description Returns a call with its appointments, scoped to the caller's business
// @Tags calls
// @Produce json
// @Param id path string true "Call ID (UUID)" format(uuid)
// @Success 200 {object} domain.Call "Call found"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Call not found"
// @Router /api/calls/{id} [get]
func (h *CallHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	business, err := h.businesses.GetByClerkUserID(r.Context(), identity.ClerkUserID)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	if business == nil {
		sendErrorResponse(w, http.StatusNotFound, "call not found")
		return
	}

	call, err := h.calls.GetOwnedDetail(r.Context(), id, business.ID)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to load call")
		return
	}
	if call == nil {
		sendErrorResponse(w, http.StatusNotFound, "call not found")
		return
	}

	sendJSONResponse(w, http.StatusOK, call)
}

func parseListFilter(r *http.Request, businessID string) (repository.ListCallsFilter, string) {
	filter := repository.ListCallsFilter{
		BusinessID: businessID,
		Page:       1,
		Limit:      defaultPageSize,
	}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, "page must be a positive integer"
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, "limit must be a positive integer"
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = domain.CallStatus(raw)
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "start_date must be RFC3339"
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "end_date must be RFC3339"
		}
		filter.EndDate = &t
	}
	return filter, ""
}
