package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/voicedesk/receptionist-service/internal/domain"
)

// UserRepository defines the interface for user account operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// BusinessRepository defines the interface for business tenant operations.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	Update(ctx context.Context, business *domain.Business) error

	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetByClerkUserID(ctx context.Context, clerkUserID string) (*domain.Business, error)
	// GetOwned returns the business only when it belongs to the given
	// identity; ownership mismatches look identical to not-found.
	GetOwned(ctx context.Context, id, clerkUserID string) (*domain.Business, error)
	// FindByPhoneNumber returns all businesses registered with the given
	// number, oldest first.
	FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*domain.Business, error)
}

// ListCallsFilter narrows and pages a call listing. Page and Limit are
// 1-based; zero values fall back to defaults.
type ListCallsFilter struct {
	BusinessID string
	Status     domain.CallStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

// CallRepository defines the interface for call record operations.
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error

	GetByID(ctx context.Context, id string) (*domain.Call, error)
	GetByVapiCallID(ctx context.Context, vapiCallID string) (*domain.Call, error)
	// GetOwnedDetail returns the call with its appointments only when it
	// belongs to the given business.
	GetOwnedDetail(ctx context.Context, id, businessID string) (*domain.Call, error)

	// UpdateByVapiCallID applies field updates to the call correlated by
	// the external call id. It fails with gorm.ErrRecordNotFound when no
	// such call exists.
	UpdateByVapiCallID(ctx context.Context, vapiCallID string, updates map[string]interface{}) error
	SaveSummary(ctx context.Context, id string, summary *domain.CallSummary) error

	List(ctx context.Context, filter ListCallsFilter) ([]*domain.Call, int64, error)
	ListRecentByBusiness(ctx context.Context, businessID string, limit int) ([]*domain.Call, error)
}

// AppointmentRepository defines the interface for appointment operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	GetByCallID(ctx context.Context, callID string) ([]*domain.Appointment, error)
}

// RepositoryManager combines all repositories.
type RepositoryManager interface {
	Users() UserRepository
	Businesses() BusinessRepository
	Calls() CallRepository
	Appointments() AppointmentRepository

	// Transaction support
	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM.
type GormRepositoryManager struct {
	db              *gorm.DB
	userRepo        *GormUserRepository
	businessRepo    *GormBusinessRepository
	callRepo        *GormCallRepository
	appointmentRepo *GormAppointmentRepository
}

// NewGormRepositoryManager creates a new GORM repository manager.
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:              db,
		userRepo:        NewGormUserRepository(db),
		businessRepo:    NewGormBusinessRepository(db),
		callRepo:        NewGormCallRepository(db),
		appointmentRepo: NewGormAppointmentRepository(db),
	}
}

// Users returns the user repository.
func (m *GormRepositoryManager) Users() UserRepository {
	return m.userRepo
}

// Businesses returns the business repository.
func (m *GormRepositoryManager) Businesses() BusinessRepository {
	return m.businessRepo
}

// Calls returns the call repository.
func (m *GormRepositoryManager) Calls() CallRepository {
	return m.callRepo
}

// Appointments returns the appointment repository.
func (m *GormRepositoryManager) Appointments() AppointmentRepository {
	return m.appointmentRepo
}

// WithTx executes a function within a database transaction.
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection.
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
