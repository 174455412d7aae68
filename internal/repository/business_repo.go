package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

// GormBusinessRepository handles database operations for businesses.
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new business repository.
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// Create creates a new business.
func (r *GormBusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	if business.ID == "" {
		business.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

// Update saves an existing business.
func (r *GormBusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	if err := r.db.WithContext(ctx).Save(business).Error; err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	return nil
}

// GetByID retrieves a business by ID.
func (r *GormBusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	var business domain.Business
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&business).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

// GetByClerkUserID retrieves a business by the identity provider's user id.
func (r *GormBusinessRepository) GetByClerkUserID(ctx context.Context, clerkUserID string) (*domain.Business, error) {
	var business domain.Business
	if err := r.db.WithContext(ctx).Where("clerk_user_id = ?", clerkUserID).First(&business).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

// GetOwned retrieves a business by ID scoped to the owning identity.
func (r *GormBusinessRepository) GetOwned(ctx context.Context, id, clerkUserID string) (*domain.Business, error) {
	var business domain.Business
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clerk_user_id = ?", id, clerkUserID).
		First(&business).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

// FindByPhoneNumber retrieves all businesses registered with a phone
// number, oldest first. Shared forwarding numbers are resolved by the
// caller taking the first entry.
func (r *GormBusinessRepository) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*domain.Business, error) {
	var businesses []*domain.Business
	if err := r.db.WithContext(ctx).
		Where("phone_number = ?", phoneNumber).
		Order("created_at ASC").
		Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("failed to find businesses by phone number: %w", err)
	}
	return businesses, nil
}
