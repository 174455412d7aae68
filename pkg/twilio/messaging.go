package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// MessagingService sends SMS and WhatsApp messages through the Twilio API.
// If accountSID or authToken is empty, the service is disabled and every
// send returns an error; callers are expected to treat that as a
// configuration problem, not a transient failure.
type MessagingService struct {
	client     *twilio.RestClient
	fromNumber string
	enabled    bool
}

// NewMessagingService creates a new Twilio messaging service.
func NewMessagingService(accountSID, authToken, fromNumber string) *MessagingService {
	if accountSID == "" || authToken == "" {
		logger.Base().Warn("Twilio credentials not provided, messaging service disabled")
		return &MessagingService{enabled: false, fromNumber: fromNumber}
	}

	return &MessagingService{
		client:     twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromNumber: fromNumber,
		enabled:    true,
	}
}

// IsEnabled returns whether the service has credentials configured.
func (s *MessagingService) IsEnabled() bool {
	return s.enabled
}

// SendSMS sends a plain SMS message.
func (s *MessagingService) SendSMS(to, body string) error {
	return s.send(to, s.fromNumber, body)
}

// SendWhatsApp sends a message over the Twilio WhatsApp channel.
// Twilio addresses WhatsApp endpoints with a "whatsapp:" prefix on both sides.
func (s *MessagingService) SendWhatsApp(to, body string) error {
	return s.send("whatsapp:"+to, "whatsapp:"+s.fromNumber, body)
}

func (s *MessagingService) send(to, from, body string) error {
	if !s.enabled {
		return fmt.Errorf("twilio messaging service is disabled")
	}
	if s.fromNumber == "" {
		return fmt.Errorf("TWILIO_PHONE_NUMBER not configured")
	}
	if to == "" || to == "whatsapp:" {
		return fmt.Errorf("recipient number is empty")
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send twilio message: %w", err)
	}

	if resp.Sid != nil {
		logger.Base().Info("twilio message sent", zap.String("sid", *resp.Sid), zap.String("to", to))
	}
	return nil
}
