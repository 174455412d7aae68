package vapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// Client handles communication with the Vapi voice platform API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Vapi API client.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.vapi.ai"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateAssistantRequest represents the request to create a voice assistant.
type CreateAssistantRequest struct {
	Name         string        `json:"name"`
	Model        string        `json:"model,omitempty"`
	Voice        string        `json:"voice,omitempty"`
	FirstMessage string        `json:"firstMessage,omitempty"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
	Tools        []interface{} `json:"tools,omitempty"`
}

// AssistantResponse represents an assistant record returned by Vapi.
type AssistantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCallRequest represents the request to place an outbound call.
type CreateCallRequest struct {
	AssistantID string       `json:"assistantId"`
	Customer    CallCustomer `json:"customer"`
}

// CallCustomer identifies the callee of an outbound call.
type CallCustomer struct {
	Number string `json:"number"`
}

// CallResponse represents a call record returned by Vapi.
type CallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateAssistant creates a voice assistant on the Vapi platform.
func (c *Client) CreateAssistant(req CreateAssistantRequest) (*AssistantResponse, json.RawMessage, error) {
	if req.Model == "" {
		req.Model = "gpt-4o-mini"
	}
	if req.Voice == "" {
		req.Voice = "default"
	}
	if req.FirstMessage == "" {
		req.FirstMessage = "Hello! How can I help you today?"
	}

	raw, err := c.post("/assistant", req)
	if err != nil {
		return nil, nil, err
	}

	var assistant AssistantResponse
	if err := json.Unmarshal(raw, &assistant); err != nil {
		return nil, nil, fmt.Errorf("failed to decode assistant response: %w", err)
	}

	logger.Base().Info("vapi assistant created", zap.String("assistant_id", assistant.ID))
	return &assistant, raw, nil
}

// CreateCall places an outbound call through the Vapi platform.
func (c *Client) CreateCall(req CreateCallRequest) (*CallResponse, json.RawMessage, error) {
	raw, err := c.post("/call", req)
	if err != nil {
		return nil, nil, err
	}

	var call CallResponse
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, nil, fmt.Errorf("failed to decode call response: %w", err)
	}

	logger.Base().Info("vapi outbound call created", zap.String("call_id", call.ID))
	return &call, raw, nil
}

// GetCall fetches call details from the Vapi platform.
func (c *Client) GetCall(callID string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/call/%s", c.BaseURL, callID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vapi API error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return bodyBytes, nil
}

func (c *Client) post(path string, payload interface{}) (json.RawMessage, error) {
	url := c.BaseURL + path

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vapi API error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return bodyBytes, nil
}
