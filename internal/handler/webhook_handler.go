package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/services/dispatch"
	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// WebhookHandler receives call events from the voice platform.
type WebhookHandler struct {
	dispatcher *dispatch.Dispatcher
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(dispatcher *dispatch.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// SetupWebhookRoutes registers the webhook routes on the /webhooks
// subrouter.
func (h *WebhookHandler) SetupWebhookRoutes(router *mux.Router) {
	router.HandleFunc("/vapi", h.HandleEvent).Methods("POST")
	router.HandleFunc("/vapi", h.HandleVerification).Methods("GET")
}

// HandleEvent processes one webhook delivery. The provider retries on
// non-200 responses, so dispatch failures are logged and acknowledged
// rather than surfaced.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event dispatch.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.Base().Warn("malformed webhook payload", zap.Error(err))
		sendJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	logger.Base().Info("received voice platform webhook", zap.String("type", event.Type))

	if err := h.dispatcher.Dispatch(r.Context(), &event); err != nil {
		logger.Base().Error("webhook dispatch failed",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}

	sendJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleVerification answers the provider's webhook handshake. A challenge
// query parameter is echoed back verbatim.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get("challenge"); challenge != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}
	sendJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
