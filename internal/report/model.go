package report

import (
	"github.com/shopspring/decimal"
)

// Summary holds the dashboard counters.
type Summary struct {
	Members       int
	ActiveMembers int
	Rooms         int
	Bookings      int
	TotalRevenue  decimal.Decimal
}

// RoomBookings counts bookings of any status per room.
type RoomBookings struct {
	RoomID   string
	RoomName string
	Bookings int
}
