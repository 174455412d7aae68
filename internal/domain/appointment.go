package domain

import (
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
// Appointments are created pending by the booking tool; no confirmation or
// cancellation flow exists yet.
type AppointmentStatus string

const (
	AppointmentStatusPending AppointmentStatus = "pending"
)

// Appointment is created as a side effect of a book_appointment tool
// invocation during a call.
type Appointment struct {
	ID         string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BusinessID string `json:"business_id" gorm:"type:uuid;index;not null"`
	CallID     string `json:"call_id" gorm:"type:uuid;index"`

	CustomerName  string `json:"customer_name" gorm:"type:varchar(255)"`
	CustomerPhone string `json:"customer_phone" gorm:"type:varchar(64)"`
	CustomerEmail string `json:"customer_email" gorm:"type:varchar(255)"`
	ServiceType   string `json:"service_type" gorm:"type:varchar(255)"`

	ScheduledAt time.Time         `json:"scheduled_at"`
	Notes       string            `json:"notes" gorm:"type:text"`
	Status      AppointmentStatus `json:"status" gorm:"type:varchar(32);default:'pending'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Appointment.
func (Appointment) TableName() string {
	return "appointments"
}
