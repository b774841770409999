package room

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
)

type CreateRequest struct {
	Name       string
	Kind       Kind
	Capacity   int
	HourlyRate decimal.Decimal
}

type UpdateRequest struct {
	Name       *string
	Kind       *Kind
	Capacity   *int
	HourlyRate *decimal.Decimal
}

// Service is the room half of the catalog store. Deleting a room is owned by the
// booking engine, which must first prove no booking references it.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	r := &Room{
		Name:       strings.TrimSpace(req.Name),
		Kind:       req.Kind,
		Capacity:   req.Capacity,
		HourlyRate: money.Round(req.HourlyRate),
	}
	if err := validate(r); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, ErrInvalidKind
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		r.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		r.Kind = *req.Kind
	}
	if req.Capacity != nil {
		r.Capacity = *req.Capacity
	}
	if req.HourlyRate != nil {
		r.HourlyRate = money.Round(*req.HourlyRate)
	}
	if err := validate(r); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func validate(r *Room) error {
	switch {
	case r.Name == "":
		return ErrEmptyName
	case !r.Kind.Valid():
		return ErrInvalidKind
	case r.Capacity < 0:
		return ErrInvalidCapacity
	case r.HourlyRate.IsNegative():
		return ErrInvalidRate
	}
	return nil
}
