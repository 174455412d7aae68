package twilio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessagingServiceDisabledWithoutCredentials(t *testing.T) {
	svc := NewMessagingService("", "", "+15550001111")
	require.False(t, svc.IsEnabled())

	require.Error(t, svc.SendSMS("+15552223333", "hello"))
	require.Error(t, svc.SendWhatsApp("+15552223333", "hello"))
}

func TestMessagingServiceRequiresFromNumber(t *testing.T) {
	svc := NewMessagingService("AC123", "token", "")
	require.True(t, svc.IsEnabled())

	err := svc.SendSMS("+15552223333", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "TWILIO_PHONE_NUMBER")
}

func TestMessagingServiceRequiresRecipient(t *testing.T) {
	svc := NewMessagingService("AC123", "token", "+15550001111")

	require.Error(t, svc.SendSMS("", "hello"))
	require.Error(t, svc.SendWhatsApp("", "hello"))
}
