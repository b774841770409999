package http

import (
	"time"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	memberHttp "github.com/nekogravitycat/coworking-ledger/internal/member/http"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	roomHttp "github.com/nekogravitycat/coworking-ledger/internal/room/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	RoomID    string     `form:"room_id" binding:"omitempty,uuid"`
	MemberID  string     `form:"member_id" binding:"omitempty,uuid"`
	Status    string     `form:"status" binding:"omitempty,oneof=CONFIRMED CANCELLED"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

type CreateBookingBody struct {
	MemberID  string    `json:"member_id" binding:"required,uuid"`
	RoomID    string    `json:"room_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateBookingBody.
func (r *CreateBookingBody) Validate() error {
	return booking.Interval{Start: r.StartTime, End: r.EndTime}.Validate()
}

type RescheduleBookingBody struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type BookingResponse struct {
	ID        string               `json:"id"`
	Room      roomHttp.RoomTag     `json:"room"`
	Member    memberHttp.MemberTag `json:"member"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Status    string               `json:"status"`
	InvoiceID *string              `json:"invoice_id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Room:      roomHttp.RoomTag{ID: b.RoomID, Name: b.RoomName},
		Member:    memberHttp.MemberTag{ID: b.MemberID, Name: b.MemberName},
		StartTime: b.Interval.Start,
		EndTime:   b.Interval.End,
		Status:    string(b.Status),
		InvoiceID: b.InvoiceID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ConflictResponse describes the booking a rejected request collided with.
type ConflictResponse struct {
	Error         string     `json:"error"`
	BookingID     string     `json:"conflicting_booking_id,omitempty"`
	ExistingStart *time.Time `json:"existing_start,omitempty"`
	ExistingEnd   *time.Time `json:"existing_end,omitempty"`
}

func NewConflictResponse(e *booking.ConflictError) ConflictResponse {
	resp := ConflictResponse{Error: e.Error(), BookingID: e.BookingID}
	if !e.Existing.Start.IsZero() {
		start, end := e.Existing.Start, e.Existing.End
		resp.ExistingStart = &start
		resp.ExistingEnd = &end
	}
	return resp
}
