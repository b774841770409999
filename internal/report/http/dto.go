package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/report"
)

type RevenueByDayRequest struct {
	Days *int `form:"days" binding:"omitempty,min=0"`
}

type TopDuesRequest struct {
	Limit *int `form:"limit" binding:"omitempty,min=0"`
}

type SummaryResponse struct {
	Members       int             `json:"members"`
	ActiveMembers int             `json:"active_members"`
	Rooms         int             `json:"rooms"`
	Bookings      int             `json:"bookings"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

func NewSummaryResponse(s report.Summary) SummaryResponse {
	return SummaryResponse{
		Members:       s.Members,
		ActiveMembers: s.ActiveMembers,
		Rooms:         s.Rooms,
		Bookings:      s.Bookings,
		TotalRevenue:  s.TotalRevenue,
	}
}

type DailyRevenueResponse struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

func NewDailyRevenueResponse(d ledger.DailyRevenue) DailyRevenueResponse {
	return DailyRevenueResponse{Day: d.Day.Format(time.DateOnly), Revenue: d.Revenue}
}

type MemberDueResponse struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Due        decimal.Decimal `json:"due"`
}

type MemberBalanceResponse struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Due        decimal.Decimal `json:"due"`
}

type RoomBookingsResponse struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Bookings int    `json:"bookings"`
}

// ListResponse wraps unpaginated report rows.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return ListResponse[T]{Items: items}
}
