package booking

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("booking not found")
	ErrTimeConflict      = apperror.Conflict("time slot already booked")
	ErrInvalidTimeRange  = apperror.Validation("start time must be before end time")
	ErrMissingTime       = apperror.Validation("start time and end time are required")
	ErrInvalidStatus     = apperror.Validation("invalid booking status")
	ErrMemberRequired    = apperror.Validation("member_id is required")
	ErrRoomRequired      = apperror.Validation("room_id is required")
	ErrMemberNotFound    = apperror.NotFound("member not found")
	ErrRoomNotFound      = apperror.NotFound("room not found")
	ErrMemberInactive    = apperror.Validation("member is not active")
	ErrNotConfirmed      = apperror.Conflict("only confirmed bookings can be rescheduled")
	ErrAlreadyInvoiced   = apperror.Conflict("booking is already invoiced")
	ErrHasFutureBookings = apperror.Conflict("cannot deactivate: member has future bookings")
	ErrHasBookings       = apperror.Conflict("cannot delete: room has related bookings")
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate checks that both bounds are set and Start < End.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return ErrMissingTime
	}
	if !i.Start.Before(i.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) UTC() Interval {
	return Interval{Start: i.Start.UTC(), End: i.End.UTC()}
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.UTC().Format(time.RFC3339), i.End.UTC().Format(time.RFC3339))
}

type Booking struct {
	ID         string
	RoomID     string
	RoomName   string
	MemberID   string
	MemberName string
	Interval   Interval
	Status     Status
	InvoiceID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// ConflictError reports the confirmed booking a request collided with.
// It unwraps to ErrTimeConflict.
type ConflictError struct {
	BookingID string
	RoomID    string
	Existing  Interval
}

func (e *ConflictError) Error() string {
	if e.Existing.Start.IsZero() {
		return ErrTimeConflict.Message
	}
	return fmt.Sprintf("%s: room already has a booking in %s", ErrTimeConflict.Message, e.Existing)
}

func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}

type Filter struct {
	MemberID  string
	RoomID    string
	Status    Status
	From      *time.Time // bookings ending after this time
	To        *time.Time // bookings starting before this time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
