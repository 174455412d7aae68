package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CallDirection represents the direction of a call.
type CallDirection string

const (
	CallDirectionInbound  CallDirection = "inbound"
	CallDirectionOutbound CallDirection = "outbound"
)

// CallStatus represents the internal status of a call.
type CallStatus string

const (
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusMissed    CallStatus = "missed"
)

// MapProviderCallStatus maps the voice platform's status vocabulary to the
// internal enumeration. Unmapped values default to "answered", which also
// covers in-progress calls before the first terminal status write.
func MapProviderCallStatus(providerStatus string) CallStatus {
	switch providerStatus {
	case "ended", "completed":
		return CallStatusCompleted
	case "failed", "no-answer":
		return CallStatusMissed
	default:
		return CallStatusAnswered
	}
}

// SummaryAction represents the follow-up action recommended by a summary.
type SummaryAction string

const (
	SummaryActionCallback SummaryAction = "callback"
	SummaryActionBooking  SummaryAction = "booking"
	SummaryActionQuote    SummaryAction = "quote"
	SummaryActionInfo     SummaryAction = "info"
)

// CoerceSummaryAction validates a model-produced action value against the
// closed enumeration, coercing anything out of set to "callback". The
// language model is not trusted to honor the contract.
func CoerceSummaryAction(s string) SummaryAction {
	switch SummaryAction(s) {
	case SummaryActionCallback, SummaryActionBooking, SummaryActionQuote, SummaryActionInfo:
		return SummaryAction(s)
	default:
		return SummaryActionCallback
	}
}

// CallSummary is the structured extraction derived from a call transcript.
type CallSummary struct {
	Intent  string                 `json:"intent"`
	Details map[string]interface{} `json:"details"`
	Action  SummaryAction          `json:"action"`
}

// FallbackCallSummary returns the fixed summary used whenever generation
// fails. Losing a summary is preferable to losing the call record.
func FallbackCallSummary() *CallSummary {
	return &CallSummary{
		Intent:  "unknown",
		Details: map[string]interface{}{},
		Action:  SummaryActionCallback,
	}
}

// Value implements the driver.Valuer interface for CallSummary.
func (s CallSummary) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for CallSummary.
func (s *CallSummary) Scan(value interface{}) error {
	if value == nil {
		*s = CallSummary{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CallSummary", value)
	}

	return json.Unmarshal(bytes, s)
}

// Call represents one telephony session handled by the voice platform.
// Keyed by the platform's external call id for webhook correlation.
type Call struct {
	ID         string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VapiCallID string `json:"vapi_call_id" gorm:"type:varchar(255);uniqueIndex:uni_calls_vapi_call_id;not null"`
	BusinessID string `json:"business_id" gorm:"type:uuid;index;not null"`

	CallerPhone string        `json:"caller_phone" gorm:"type:varchar(64)"`
	Direction   CallDirection `json:"direction" gorm:"type:varchar(16);default:'inbound'"`
	Status      CallStatus    `json:"status" gorm:"type:varchar(16);index"`
	Timestamp   time.Time     `json:"timestamp" gorm:"index"`
	Duration    int           `json:"duration"`
	AudioURL    string        `json:"audio_url" gorm:"type:text"`

	// Transcript is mutable: it may be updated several times by transcript
	// events before the final version arrives with call-end.
	Transcript string `json:"transcript" gorm:"type:text"`

	VapiMetadata  JSONB        `json:"vapi_metadata" gorm:"type:jsonb"`
	Summary       *CallSummary `json:"summary" gorm:"type:jsonb"`
	ExtractedInfo JSONB        `json:"extracted_info" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Appointments []Appointment `json:"appointments,omitempty" gorm:"foreignKey:CallID"`
}

// TableName sets the table name for Call.
func (Call) TableName() string {
	return "calls"
}
