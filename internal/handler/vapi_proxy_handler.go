package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/repository"
	"github.com/voicedesk/receptionist-service/pkg/logger"
	"github.com/voicedesk/receptionist-service/pkg/vapi"
)

// VapiProxyHandler proxies assistant and outbound-call operations to the
// voice platform on behalf of authenticated dashboard users.
type VapiProxyHandler struct {
	client     *vapi.Client
	businesses repository.BusinessRepository
}

// NewVapiProxyHandler creates a new proxy handler.
func NewVapiProxyHandler(client *vapi.Client, businesses repository.BusinessRepository) *VapiProxyHandler {
	return &VapiProxyHandler{
		client:     client,
		businesses: businesses,
	}
}

// SetupVapiProxyRoutes registers the proxy routes.
func (h *VapiProxyHandler) SetupVapiProxyRoutes(router *mux.Router) {
	router.HandleFunc("/vapi/assistants", h.CreateAssistant).Methods("POST")
	router.HandleFunc("/vapi/calls", h.CreateCall).Methods("POST")
	router.HandleFunc("/vapi/calls/{callId}", h.GetCall).Methods("GET")
}

// CreateAssistantRequest is the dashboard's assistant provisioning payload.
type CreateAssistantRequest struct {
	Name         string        `json:"name"`
	Model        string        `json:"model"`
	Voice        string        `json:"voice"`
	SystemPrompt string        `json:"system_prompt"`
	Tools        []interface{} `json:"tools"`
}

// CreateCallProxyRequest is the dashboard's outbound call payload.
type CreateCallProxyRequest struct {
	PhoneNumber string `json:"phone_number"`
	AssistantID string `json:"assistant_id"`
}

// CreateAssistant provisions an assistant on the voice platform and stores
// its id on the caller's business.
func (h *VapiProxyHandler) CreateAssistant(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		sendErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	assistant, raw, err := h.client.CreateAssistant(vapi.CreateAssistantRequest{
		Name:         req.Name,
		Model:        req.Model,
		Voice:        req.Voice,
		SystemPrompt: req.SystemPrompt,
		Tools:        req.Tools,
	})
	if err != nil {
		logger.Base().Error("failed to create assistant", zap.Error(err))
		sendErrorResponse(w, http.StatusBadGateway, "failed to create assistant")
		return
	}

	business, err := h.businesses.GetByClerkUserID(r.Context(), identity.ClerkUserID)
	if err == nil && business != nil {
		business.AssistantID = assistant.ID
		if err := h.businesses.Update(r.Context(), business); err != nil {
			logger.Base().Warn("failed to store assistant id on business",
				zap.String("business_id", business.ID),
				zap.Error(err))
		}
	}

	writeRawJSON(w, http.StatusOK, raw)
}

// CreateCall places an outbound call through the voice platform.
func (h *VapiProxyHandler) CreateCall(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromContext(r.Context()); !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCallProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.AssistantID == "" {
		sendErrorResponse(w, http.StatusBadRequest, "phone_number and assistant_id are required")
		return
	}

	_, raw, err := h.client.CreateCall(vapi.CreateCallRequest{
		AssistantID: req.AssistantID,
		Customer:    vapi.CallCustomer{Number: req.PhoneNumber},
	})
	if err != nil {
		logger.Base().Error("failed to create outbound call", zap.Error(err))
		sendErrorResponse(w, http.StatusBadGateway, "failed to create call")
		return
	}

	writeRawJSON(w, http.StatusOK, raw)
}

// GetCall fetches call details from the voice platform.
func (h *VapiProxyHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromContext(r.Context()); !ok {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	callID := mux.Vars(r)["callId"]

	raw, err := h.client.GetCall(callID)
	if err != nil {
		logger.Base().Error("failed to fetch call details", zap.Error(err))
		sendErrorResponse(w, http.StatusBadGateway, "failed to fetch call")
		return
	}

	writeRawJSON(w, http.StatusOK, raw)
}

func writeRawJSON(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}
