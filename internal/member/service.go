package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
)

type RegisterRequest struct {
	FullName  string
	Email     string
	Phone     string
	CompanyID string
}

type UpdateRequest struct {
	FullName  *string
	Email     *string
	Phone     *string
	CompanyID *string
}

// Service is the member half of the catalog store.
// Deactivation is owned by the booking engine because it depends on bookings.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	IsActive(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter Filter) ([]*Member, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Member, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	// Check if email is already used.
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	m := &Member{
		FullName:  name,
		Email:     email,
		Phone:     optional(req.Phone),
		CompanyID: optional(req.CompanyID),
		Status:    StatusActive,
	}

	// The unique index still guards against a concurrent registration.
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("member registered", zap.String("member_id", m.ID))
	return m, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) IsActive(ctx context.Context, id string) (bool, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return m.IsActive(), nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Member, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, ErrNameRequired
		}
		m.FullName = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != m.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			if err == nil && existing.ID != m.ID {
				return nil, ErrEmailAlreadyUsed
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("failed to check existing email: %w", err)
			}
		}
		m.Email = email
	}
	if req.Phone != nil {
		m.Phone = optional(*req.Phone)
	}
	if req.CompanyID != nil {
		m.CompanyID = optional(*req.CompanyID)
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
