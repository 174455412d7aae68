package domain

import (
	"time"
)

// VoiceTone represents the assistant's speaking style for a business.
type VoiceTone string

const (
	VoiceToneFriendly     VoiceTone = "friendly"
	VoiceToneProfessional VoiceTone = "professional"
	VoiceToneCasual       VoiceTone = "casual"
)

// SummaryChannel represents the delivery channel for call summaries.
type SummaryChannel string

const (
	SummaryChannelSMS      SummaryChannel = "sms"
	SummaryChannelWhatsApp SummaryChannel = "whatsapp"
	SummaryChannelEmail    SummaryChannel = "email"
)

// ValidVoiceTone reports whether s is a known voice tone.
func ValidVoiceTone(s string) bool {
	switch VoiceTone(s) {
	case VoiceToneFriendly, VoiceToneProfessional, VoiceToneCasual:
		return true
	}
	return false
}

// ValidSummaryChannel reports whether s is a known summary channel.
func ValidSummaryChannel(s string) bool {
	switch SummaryChannel(s) {
	case SummaryChannelSMS, SummaryChannelWhatsApp, SummaryChannelEmail:
		return true
	}
	return false
}

// Business is the tenant record: one customer's company profile and
// receptionist configuration. Uniquely keyed by the identity provider's
// user id.
type Business struct {
	ID          string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      string `json:"user_id" gorm:"type:uuid;not null"`
	ClerkUserID string `json:"clerk_user_id" gorm:"type:varchar(255);uniqueIndex:uni_businesses_clerk_user_id;not null"`

	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	PhoneNumber  string `json:"phone_number" gorm:"type:varchar(64);index"`
	Email        string `json:"email" gorm:"type:varchar(255)"`
	Address      string `json:"address" gorm:"type:text"`
	BusinessType string `json:"business_type" gorm:"type:varchar(128)"`

	Services     JSONBList      `json:"services" gorm:"type:jsonb"`
	Hours        JSONB          `json:"hours" gorm:"type:jsonb"`
	Pricing      JSONB          `json:"pricing" gorm:"type:jsonb"`
	FAQs         JSONBList      `json:"faqs" gorm:"type:jsonb;column:faqs"`
	VoiceTone    VoiceTone      `json:"voice_tone" gorm:"type:varchar(32);default:'friendly'"`
	SummaryChannel SummaryChannel `json:"summary_channel" gorm:"type:varchar(32);default:'whatsapp'"`
	BookingRules JSONB          `json:"booking_rules" gorm:"type:jsonb"`
	Timezone     string         `json:"timezone" gorm:"type:varchar(64);default:'UTC'"`

	// AssistantID is the voice platform's assistant id, stored once an
	// assistant has been provisioned for this business.
	AssistantID string `json:"assistant_id" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Calls []Call `json:"calls,omitempty" gorm:"foreignKey:BusinessID"`
}

// TableName sets the table name for Business.
func (Business) TableName() string {
	return "businesses"
}
