package handler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
)

// memStore is an in-memory stand-in for the repository layer, shared by
// the handler tests.
type memStore struct {
	users      []*domain.User
	businesses []*domain.Business
	calls      []*domain.Call
}

func (s *memStore) Users() repository.UserRepository               { return (*memUserRepo)(s) }
func (s *memStore) Businesses() repository.BusinessRepository      { return (*memBusinessRepo)(s) }
func (s *memStore) Calls() repository.CallRepository               { return (*memCallRepo)(s) }
func (s *memStore) Appointments() repository.AppointmentRepository { return nil }
func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.RepositoryManager) error) error {
	return fn(ctx, s)
}
func (s *memStore) Ping(ctx context.Context) error { return nil }
func (s *memStore) Close() error                   { return nil }

type memUserRepo memStore

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users = append(r.users, user)
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type memBusinessRepo memStore

func (r *memBusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	if business.ID == "" {
		business.ID = fmt.Sprintf("biz-%d", len(r.businesses)+1)
	}
	r.businesses = append(r.businesses, business)
	return nil
}

func (r *memBusinessRepo) Update(ctx context.Context, business *domain.Business) error {
	for i, b := range r.businesses {
		if b.ID == business.ID {
			r.businesses[i] = business
			return nil
		}
	}
	return fmt.Errorf("business not found")
}

func (r *memBusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	for _, b := range r.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBusinessRepo) GetByClerkUserID(ctx context.Context, clerkUserID string) (*domain.Business, error) {
	for _, b := range r.businesses {
		if b.ClerkUserID == clerkUserID {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBusinessRepo) GetOwned(ctx context.Context, id, clerkUserID string) (*domain.Business, error) {
	for _, b := range r.businesses {
		if b.ID == id && b.ClerkUserID == clerkUserID {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBusinessRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) ([]*domain.Business, error) {
	var out []*domain.Business
	for _, b := range r.businesses {
		if b.PhoneNumber == phoneNumber {
			out = append(out, b)
		}
	}
	return out, nil
}

type memCallRepo memStore

func (r *memCallRepo) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = fmt.Sprintf("call-%d", len(r.calls)+1)
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *memCallRepo) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	for _, c := range r.calls {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCallRepo) GetByVapiCallID(ctx context.Context, vapiCallID string) (*domain.Call, error) {
	for _, c := range r.calls {
		if c.VapiCallID == vapiCallID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCallRepo) GetOwnedDetail(ctx context.Context, id, businessID string) (*domain.Call, error) {
	for _, c := range r.calls {
		if c.ID == id && c.BusinessID == businessID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCallRepo) UpdateByVapiCallID(ctx context.Context, vapiCallID string, updates map[string]interface{}) error {
	for _, c := range r.calls {
		if c.VapiCallID == vapiCallID {
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCallRepo) SaveSummary(ctx context.Context, id string, summary *domain.CallSummary) error {
	return nil
}

func (r *memCallRepo) List(ctx context.Context, filter repository.ListCallsFilter) ([]*domain.Call, int64, error) {
	var matched []*domain.Call
	for _, c := range r.calls {
		if c.BusinessID != filter.BusinessID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && c.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && c.Timestamp.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memCallRepo) ListRecentByBusiness(ctx context.Context, businessID string, limit int) ([]*domain.Call, error) {
	var out []*domain.Call
	for _, c := range r.calls {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func seedCalls(store *memStore, businessID string, n int) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		store.calls = append(store.calls, &domain.Call{
			ID:         fmt.Sprintf("call-%d", i+1),
			VapiCallID: fmt.Sprintf("vapi-%d", i+1),
			BusinessID: businessID,
			Status:     domain.CallStatusCompleted,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
		})
	}
}
