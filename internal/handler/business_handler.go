package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// BusinessHandler handles HTTP requests for business profiles.
type BusinessHandler struct {
	users      repository.UserRepository
	businesses repository.BusinessRepository
	calls      repository.CallRepository
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(users repository.UserRepository, businesses repository.BusinessRepository, calls repository.CallRepository) *BusinessHandler {
	return &BusinessHandler{
		users:      users,
		businesses: businesses,
		calls:      calls,
	}
}

// SetupBusinessRoutes registers business profile routes.
func (h *BusinessHandler) SetupBusinessRoutes(router *mux.Router) {
	router.HandleFunc("/businesses", h.GetOwnBusiness).Methods("GET")
	router.HandleFunc("/businesses", h.UpsertBusiness).Methods("POST")
	router.HandleFunc("/businesses/{id}", h.GetBusiness).Methods("GET")
}

// UpsertBusinessRequest is the full profile payload accepted on POST.
type UpsertBusinessRequest struct {
	Name           string                   `json:"name"`
	PhoneNumber    string                   `json:"phone_number"`
	Email          string                   `json:"email"`
	Address        string                   `json:"address"`
	BusinessType   string                   `json:"business_type"`
	Services       []map[string]interface{} `json:"services"`
	Hours          map[string]interface{}   `json:"hours"`
	Pricing        map[string]interface{}   `json:"pricing"`
	FAQs           []map[string]interface{} `json:"faqs"`
	VoiceTone      string                   `json:"voice_tone"`
	SummaryChannel string                   `json:"summary_channel"`
	BookingRules   map[string]interface{}   `json:"booking_rules"`
	Timezone       string                   `json:"timezone"`
}

// Validate checks required fields and enumerations.
func (req *UpsertBusinessRequest) Validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.VoiceTone != "" && !domain.ValidVoiceTone(req.VoiceTone) {
		return "voice_tone must be one of friendly, professional, casual"
	}
	if req.SummaryChannel != "" && !domain.ValidSummaryChannel(req.SummaryChannel) {
		return "summary_channel must be one of sms, whatsapp, email"
	}
	return ""
}

func (req *UpsertBusinessRequest) apply(b *domain.Business) {
	b.Name = req.Name
	b.PhoneNumber = req.PhoneNumber
	b.Email = req.Email
	b.Address = req.Address
	b.BusinessType = req.BusinessType
	b.Services = domain.JSONBList(req.Services)
	b.Hours = domain.JSONB(req.Hours)
	b.Pricing = domain.JSONB(req.Pricing)
	b.FAQs = domain.JSONBList(req.FAQs)
	b.BookingRules = domain.JSONB(req.BookingRules)
	if req.VoiceTone != "" {
		b.VoiceTone = domain.VoiceTone(req.VoiceTone)
	}
	if req.SummaryChannel != "" {
		b.SummaryChannel = domain.SummaryChannel(req.SummaryChannel)
	}
	if req.Timezone != "" {
		b.Timezone = req.Timezone
	}
}

// GetOwnBusiness godoc
// @Summary Get the caller's business
// @Description Returns the authenticated caller's business with its most recent calls
// @Tags businesses
// @Produce json
// @Success 200 {object} map[string]interface{} "Business with recent calls"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Business not found"
// @Router /api/businesses [get]
func (h *BusinessHandler) GetOwnBusiness(w http.ResponseWriter, r *http.Request) {
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

	calls, err := h.calls.ListRecentByBusiness(r.Context(), business.ID, 10)
	if err != nil {
		logger.Base().Warn("failed to load recent calls", zap.Error(err))
		calls = nil
	}

	sendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"business": business,
		"calls":    calls,
	})
}

// GetBusiness godoc
// @Summary Get a business by ID
// @Description Returns an owned business with its most recent calls
// @Tags businesses
// @Produce json
// @Param id path string true "Business ID (UUID)" format(uuid)
// @Success 200 {object} map[string]interface{} "Business with recent calls"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Business not found"
// @Router /api/businesses/{id} [get]
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := mux.Vars(r)["id"]

	business, err := h.businesses.GetOwned(r.Context(), id, identity.ClerkUserID)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to load business")
		return
	}
	if business == nil {
		// Not found and not owned are indistinguishable on purpose.
		sendErrorResponse(w, http.StatusNotFound, "business not found")
		return
	}

	calls, err := h.calls.ListRecentByBusiness(r.Context(), business.ID, 50)
	if err != nil {
		logger.Base().Warn("failed to load recent calls", zap.Error(err))
		calls = nil
	}

	sendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"business": business,
		"calls":    calls,
	})
}

// UpsertBusiness godoc
// @Summary Create or update the caller's business
// @Description Creates the business on first POST, updates it on subsequent POSTs
// @Tags businesses
// @Accept json
// @Produce json
// @Param business body UpsertBusinessRequest true "Business profile"
// @Success 200 {object} domain.Business "Business updated"
// @Success 201 {object} domain.Business "Business created"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/businesses [post]
func (h *BusinessHandler) UpsertBusiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpsertBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		sendErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.businesses.GetByClerkUserID(r.Context(), identity.ClerkUserID)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "failed to load business")
		return
	}

	if existing != nil {
		req.apply(existing)
		if err := h.businesses.Update(r.Context(), existing); err != nil {
			logger.Base().Error("failed to update business", zap.Error(err))
			sendErrorResponse(w, http.StatusInternalServerError, "failed to update business")
			return
		}
		sendJSONResponse(w, http.StatusOK, existing)
		return
	}

	user, err := h.resolveUser(r, identity, &req)
	if err != nil {
		logger.Base().Error("failed to resolve user", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	business := &domain.Business{
		UserID:      user.ID,
		ClerkUserID: identity.ClerkUserID,
	}
	req.apply(business)

	if err := h.businesses.Create(r.Context(), business); err != nil {
		logger.Base().Error("failed to create business", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, "failed to create business")
		return
	}
	sendJSONResponse(w, http.StatusCreated, business)
}

// resolveUser finds the user backing the caller's identity, creating one
// on first contact.
func (h *BusinessHandler) resolveUser(r *http.Request, identity *Identity, req *UpsertBusinessRequest) (*domain.User, error) {
	email := identity.Email
	if email == "" {
		email = req.Email
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &domain.User{
		Email: email,
		Phone: req.PhoneNumber,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		return nil, err
	}
	return user, nil
}
