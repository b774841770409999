package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
)

type bookingRepo struct {
	s *Store
}

// view copies a stored booking and resolves its display names. Callers hold mu.
func (s *Store) view(rec *booking.Booking) *booking.Booking {
	b := *rec
	if rm, ok := s.rooms[b.RoomID]; ok {
		b.RoomName = rm.Name
	}
	if m, ok := s.members[b.MemberID]; ok {
		b.MemberName = m.FullName
	}
	return &b
}

// findOverlap returns the earliest confirmed booking of roomID overlapping
// interval, ignoring excludeID. Callers hold mu.
func (s *Store) findOverlap(roomID string, interval booking.Interval, excludeID string) *booking.ConflictError {
	var hit *booking.Booking
	for id, rec := range s.bookings {
		if id == excludeID || rec.RoomID != roomID || !rec.IsConfirmed() {
			continue
		}
		if !rec.Interval.Overlaps(interval) {
			continue
		}
		if hit == nil || rec.Interval.Start.Before(hit.Interval.Start) {
			hit = rec
		}
	}
	if hit == nil {
		return nil
	}
	return &booking.ConflictError{BookingID: hit.ID, RoomID: roomID, Existing: hit.Interval}
}

func (r *bookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[b.MemberID]
	if !ok {
		return booking.ErrMemberNotFound
	}
	if !m.IsActive() {
		return booking.ErrMemberInactive
	}
	rm, ok := s.rooms[b.RoomID]
	if !ok {
		return booking.ErrRoomNotFound
	}
	if conflict := s.findOverlap(b.RoomID, b.Interval, ""); conflict != nil {
		return conflict
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	b.ID = uuid.NewString()
	b.Status = booking.StatusConfirmed
	b.InvoiceID = nil
	b.CreatedAt = now
	b.UpdatedAt = now
	b.RoomName = rm.Name
	b.MemberName = m.FullName

	stored := *b
	s.bookings[b.ID] = &stored
	return nil
}

func (r *bookingRepo) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return s.view(rec), nil
}

func (r *bookingRepo) List(_ context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*booking.Booking
	for _, rec := range s.bookings {
		if filter.MemberID != "" && rec.MemberID != filter.MemberID {
			continue
		}
		if filter.RoomID != "" && rec.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.From != nil && !rec.Interval.End.After(*filter.From) {
			continue
		}
		if filter.To != nil && !rec.Interval.Start.Before(*filter.To) {
			continue
		}
		matched = append(matched, s.view(rec))
	}

	key := func(b *booking.Booking) time.Time {
		switch filter.SortBy {
		case "end_time":
			return b.Interval.End
		case "created_at":
			return b.CreatedAt
		default:
			return b.Interval.Start
		}
	}
	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		ki, kj := key(matched[i]), key(matched[j])
		if !ki.Equal(kj) {
			if asc {
				return ki.Before(kj)
			}
			return ki.After(kj)
		}
		return matched[i].ID < matched[j].ID
	})

	return paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *bookingRepo) Cancel(ctx context.Context, id string) (*booking.Booking, bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.bookings[id]
	if !ok {
		return nil, false, booking.ErrNotFound
	}
	if !rec.IsConfirmed() {
		return s.view(rec), false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	rec.Status = booking.StatusCancelled
	rec.UpdatedAt = s.clock.Now().UTC()
	return s.view(rec), true, nil
}

func (r *bookingRepo) Reschedule(ctx context.Context, id string, interval booking.Interval) (*booking.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if !rec.IsConfirmed() {
		return nil, booking.ErrNotConfirmed
	}
	if rec.InvoiceID != nil {
		return nil, booking.ErrAlreadyInvoiced
	}
	if conflict := s.findOverlap(rec.RoomID, interval, id); conflict != nil {
		return nil, conflict
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec.Interval = interval
	rec.UpdatedAt = s.clock.Now().UTC()
	return s.view(rec), nil
}

func (r *bookingRepo) DeactivateMember(ctx context.Context, memberID string, now time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok {
		return booking.ErrMemberNotFound
	}
	if !m.IsActive() {
		return nil
	}
	for _, rec := range s.bookings {
		if rec.MemberID == memberID && rec.IsConfirmed() && rec.Interval.Start.After(now) {
			return booking.ErrHasFutureBookings
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.Status = member.StatusInactive
	return nil
}

func (r *bookingRepo) DeleteRoom(ctx context.Context, roomID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return booking.ErrRoomNotFound
	}
	for _, rec := range s.bookings {
		if rec.RoomID == roomID {
			return booking.ErrHasBookings
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	delete(s.rooms, roomID)
	return nil
}
