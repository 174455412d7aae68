package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

// GormAppointmentRepository handles database operations for appointments.
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new appointment repository.
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// Create creates a new appointment record.
func (r *GormAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// GetByCallID retrieves all appointments booked during a call.
func (r *GormAppointmentRepository) GetByCallID(ctx context.Context, callID string) ([]*domain.Appointment, error) {
	var appointments []*domain.Appointment
	if err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("created_at ASC").
		Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to get appointments: %w", err)
	}
	return appointments, nil
}
