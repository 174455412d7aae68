package vapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAssistantAppliesDefaults(t *testing.T) {
	var received CreateAssistantRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assistant", r.URL.Path)
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"id": "asst-1", "name": received.Name})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	assistant, raw, err := client.CreateAssistant(CreateAssistantRequest{Name: "Glow Salon Receptionist"})
	require.NoError(t, err)
	require.Equal(t, "asst-1", assistant.ID)
	require.NotEmpty(t, raw)

	require.Equal(t, "gpt-4o-mini", received.Model)
	require.Equal(t, "default", received.Voice)
	require.Equal(t, "Hello! How can I help you today?", received.FirstMessage)
}

func TestCreateCallSendsCustomerNumber(t *testing.T) {
	var received CreateCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"id": "vapi-call-1", "status": "queued"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	call, _, err := client.CreateCall(CreateCallRequest{
		AssistantID: "asst-1",
		Customer:    CallCustomer{Number: "+15552223333"},
	})
	require.NoError(t, err)
	require.Equal(t, "vapi-call-1", call.ID)
	require.Equal(t, "+15552223333", received.Customer.Number)
}

func TestGetCallSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1")
	_, err := client.GetCall("missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=404")
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient("", "key-1")
	require.Equal(t, "https://api.vapi.ai", client.BaseURL)
}
