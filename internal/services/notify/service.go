package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// Messenger sends text messages over SMS or WhatsApp.
type Messenger interface {
	SendSMS(to, body string) error
	SendWhatsApp(to, body string) error
}

// EmailConfig holds SMTP settings for the email channel. When Host is empty
// the channel logs instead of sending.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service delivers call summaries to business owners over the channel each
// business has configured.
type Service struct {
	messenger Messenger
	email     EmailConfig
	appURL    string
}

// NewService creates a new notification service. appURL is the dashboard
// base used to build deep links into call detail pages.
func NewService(messenger Messenger, email EmailConfig, appURL string) *Service {
	return &Service{
		messenger: messenger,
		email:     email,
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

var actionEmojis = map[domain.SummaryAction]string{
	domain.SummaryActionCallback: "\U0001F4DE", // telephone receiver
	domain.SummaryActionBooking:  "\U0001F4C5", // calendar
	domain.SummaryActionQuote:    "\U0001F4B0", // money bag
	domain.SummaryActionInfo:     "ℹ️",
}

// FormatMessage renders the owner-facing notification text. Detail keys are
// sorted so the same summary always produces the same message.
func (s *Service) FormatMessage(business *domain.Business, callID string, summary *domain.CallSummary) string {
	emoji, ok := actionEmojis[summary.Action]
	if !ok {
		emoji = actionEmojis[domain.SummaryActionCallback]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s New call for %s\n", emoji, business.Name)
	fmt.Fprintf(&b, "Intent: %s\n", summary.Intent)
	fmt.Fprintf(&b, "Action: %s\n", summary.Action)

	if len(summary.Details) > 0 {
		keys := make([]string, 0, len(summary.Details))
		for k := range summary.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, summary.Details[k])
		}
	}

	if s.appURL != "" {
		fmt.Fprintf(&b, "%s/dashboard/calls/%s", s.appURL, callID)
	}
	return b.String()
}

// NotifyOwner sends the summary to the business owner over the configured
// channel. An unknown channel is logged and ignored rather than treated as
// an error, since notification must never fail call finalization.
func (s *Service) NotifyOwner(ctx context.Context, business *domain.Business, callID string, summary *domain.CallSummary) error {
	recipient := business.PhoneNumber
	body := s.FormatMessage(business, callID, summary)

	switch business.SummaryChannel {
	case domain.SummaryChannelSMS:
		return s.messenger.SendSMS(recipient, body)
	case domain.SummaryChannelWhatsApp:
		return s.messenger.SendWhatsApp(recipient, body)
	case domain.SummaryChannelEmail:
		return s.sendEmail(business, body)
	default:
		logger.Base().Warn("Unknown summary channel, skipping notification",
			zap.String("business_id", business.ID),
			zap.String("channel", string(business.SummaryChannel)))
		return nil
	}
}

func (s *Service) sendEmail(business *domain.Business, body string) error {
	if s.email.Host == "" {
		logger.Base().Info("Email channel not configured, logging summary instead",
			zap.String("business_id", business.ID),
			zap.String("to", business.Email))
		return nil
	}
	if business.Email == "" {
		return fmt.Errorf("business %s has no email address", business.ID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.email.From)
	m.SetHeader("To", business.Email)
	m.SetHeader("Subject", fmt.Sprintf("New call summary for %s", business.Name))
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.email.Host, s.email.Port, s.email.Username, s.email.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}
	return nil
}
