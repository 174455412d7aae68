package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

// Event types the voice platform delivers to the webhook endpoint.
const (
	EventCallStart    = "call-start"
	EventCallEnd      = "call-end"
	EventStatusUpdate = "status-update"
	EventTranscript   = "transcript"
	EventFunctionCall = "function-call"
)

// Tool names the assistant may invoke during a call.
const (
	ToolBookAppointment     = "book_appointment"
	ToolExtractCustomerInfo = "extract_customer_info"
)

// WebhookEvent is the envelope the voice platform posts on call activity.
type WebhookEvent struct {
	Type    string          `json:"type"`
	Call    *CallPayload    `json:"call,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
}

// CallPayload carries the provider's view of a call.
type CallPayload struct {
	ID           string  `json:"id"`
	Direction    string  `json:"direction,omitempty"`
	Status       string  `json:"status,omitempty"`
	From         string  `json:"from,omitempty"`
	To           string  `json:"to,omitempty"`
	StartedAt    string  `json:"startedAt,omitempty"`
	EndedAt      string  `json:"endedAt,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	RecordingURL string  `json:"recordingUrl,omitempty"`
	Transcript   string  `json:"transcript,omitempty"`
}

// MessagePayload carries transcript fragments and tool invocations.
type MessagePayload struct {
	Type         string               `json:"type,omitempty"`
	Transcript   string               `json:"transcript,omitempty"`
	FunctionCall *FunctionCallPayload `json:"functionCall,omitempty"`
}

// FunctionCallPayload is a structured tool invocation from the assistant.
type FunctionCallPayload struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Validate rejects payloads that cannot be dispatched at all.
func (e *WebhookEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("event type is required")
	}
	return nil
}

// metadata round-trips the call payload into a JSONB map for persistence.
func (c *CallPayload) metadata() domain.JSONB {
	raw, err := json.Marshal(c)
	if err != nil {
		return domain.JSONB{}
	}
	var m domain.JSONB
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.JSONB{}
	}
	return m
}
