package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

// GormCallRepository handles database operations for call records.
type GormCallRepository struct {
	db *gorm.DB
}

// NewGormCallRepository creates a new call repository.
func NewGormCallRepository(db *gorm.DB) *GormCallRepository {
	return &GormCallRepository{db: db}
}

// Create creates a new call record.
func (r *GormCallRepository) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

// GetByID retrieves a call by internal ID.
func (r *GormCallRepository) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&call).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// GetByVapiCallID retrieves a call by the voice platform's call id.
func (r *GormCallRepository) GetByVapiCallID(ctx context.Context, vapiCallID string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).Where("vapi_call_id = ?", vapiCallID).First(&call).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// GetOwnedDetail retrieves a call with its appointments, scoped to the
// owning business.
func (r *GormCallRepository) GetOwnedDetail(ctx context.Context, id, businessID string) (*domain.Call, error) {
	var call domain.Call
	if err := r.db.WithContext(ctx).
		Preload("Appointments").
		Where("id = ? AND business_id = ?", id, businessID).
		First(&call).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

// UpdateByVapiCallID applies field updates to the call correlated by the
// external call id. Updating an unknown id is an error so that a finalize
// event for a call that was never recorded surfaces instead of silently
// creating nothing.
func (r *GormCallRepository) UpdateByVapiCallID(ctx context.Context, vapiCallID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Call{}).
		Where("vapi_call_id = ?", vapiCallID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update call: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update call %s: %w", vapiCallID, gorm.ErrRecordNotFound)
	}
	return nil
}

// SaveSummary persists a generated summary onto the call record.
func (r *GormCallRepository) SaveSummary(ctx context.Context, id string, summary *domain.CallSummary) error {
	if err := r.db.WithContext(ctx).
		Model(&domain.Call{}).
		Where("id = ?", id).
		Update("summary", summary).Error; err != nil {
		return fmt.Errorf("failed to save call summary: %w", err)
	}
	return nil
}

// List returns a page of calls matching the filter plus the total count.
func (r *GormCallRepository) List(ctx context.Context, filter ListCallsFilter) ([]*domain.Call, int64, error) {
	if filter.BusinessID == "" {
		return nil, 0, fmt.Errorf("business ID cannot be empty")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&domain.Call{}).Where("business_id = ?", filter.BusinessID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count calls: %w", err)
	}

	var calls []*domain.Call
	if err := query.
		Order("timestamp DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&calls).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list calls: %w", err)
	}

	return calls, total, nil
}

// ListRecentByBusiness returns the most recent calls for a business.
func (r *GormCallRepository) ListRecentByBusiness(ctx context.Context, businessID string, limit int) ([]*domain.Call, error) {
	if limit < 1 {
		limit = 10
	}
	var calls []*domain.Call
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent calls: %w", err)
	}
	return calls, nil
}
