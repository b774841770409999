package booking

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
)

type CreateRequest struct {
	MemberID string
	RoomID   string
	Interval Interval
}

// Service is the booking engine. It owns the booking lifecycle, the
// per-room overlap invariant and the catalog mutations that depend on bookings.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Cancel(ctx context.Context, id string) (*Booking, error)
	Reschedule(ctx context.Context, id string, interval Interval) (*Booking, error)
	DeactivateMember(ctx context.Context, memberID string) error
	DeleteRoom(ctx context.Context, roomID string) error
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &service{repo: repo, clock: clk}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		return nil, ErrMemberRequired
	}
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return nil, ErrRoomRequired
	}
	if err := req.Interval.Validate(); err != nil {
		return nil, err
	}

	b := &Booking{
		RoomID:   roomID,
		MemberID: memberID,
		Interval: req.Interval.UTC(),
		Status:   StatusConfirmed,
	}

	// Existence, activity and overlap are checked by the repository in the same
	// critical section as the insert.
	if err := s.repo.Create(ctx, b); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			logger.FromContext(ctx).Info("booking rejected: overlap",
				zap.String("room_id", roomID),
				zap.String("conflicting_booking_id", conflict.BookingID),
			)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("room_id", b.RoomID),
		zap.String("member_id", b.MemberID),
	)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, ErrInvalidTimeRange
	}
	return s.repo.List(ctx, filter)
}

// Cancel marks a booking CANCELLED. Cancelling an already cancelled booking
// returns it unchanged.
func (s *service) Cancel(ctx context.Context, id string) (*Booking, error) {
	b, changed, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.FromContext(ctx).Info("booking cancelled", zap.String("booking_id", b.ID))
	}
	return b, nil
}

func (s *service) Reschedule(ctx context.Context, id string, interval Interval) (*Booking, error) {
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.Reschedule(ctx, id, interval.UTC())
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("booking rescheduled",
		zap.String("booking_id", b.ID),
		zap.Stringer("interval", b.Interval),
	)
	return b, nil
}

// DeactivateMember moves a member to INACTIVE unless a confirmed booking of
// theirs starts after now.
func (s *service) DeactivateMember(ctx context.Context, memberID string) error {
	if strings.TrimSpace(memberID) == "" {
		return ErrMemberRequired
	}

	if err := s.repo.DeactivateMember(ctx, memberID, s.clock.Now()); err != nil {
		if errors.Is(err, ErrHasFutureBookings) {
			logger.FromContext(ctx).Warn("member deactivation rejected", zap.String("member_id", memberID))
		}
		return err
	}

	logger.FromContext(ctx).Info("member deactivated", zap.String("member_id", memberID))
	return nil
}

// DeleteRoom removes a room that no booking has ever referenced.
func (s *service) DeleteRoom(ctx context.Context, roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return ErrRoomRequired
	}

	if err := s.repo.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, ErrHasBookings) {
			logger.FromContext(ctx).Warn("room deletion rejected", zap.String("room_id", roomID))
		}
		return err
	}

	logger.FromContext(ctx).Info("room deleted", zap.String("room_id", roomID))
	return nil
}
