package report

import (
	"context"
)

type Service interface {
	Summary(ctx context.Context) (Summary, error)
	// BookingsPerRoom lists every room, including rooms without bookings, by name.
	BookingsPerRoom(ctx context.Context) ([]RoomBookings, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *service) BookingsPerRoom(ctx context.Context) ([]RoomBookings, error) {
	return s.repo.BookingsPerRoom(ctx)
}
