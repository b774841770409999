package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	Kind string `form:"kind" binding:"omitempty,oneof=DESK MEETING CABIN EVENT"`
}

type CreateRoomBody struct {
	Name       string          `json:"name" binding:"required"`
	Kind       string          `json:"kind" binding:"required,oneof=DESK MEETING CABIN EVENT"`
	Capacity   int             `json:"capacity" binding:"min=0"`
	HourlyRate decimal.Decimal `json:"hourly_rate" binding:"money"`
}

type UpdateRoomBody struct {
	Name       *string          `json:"name"`
	Kind       *string          `json:"kind" binding:"omitempty,oneof=DESK MEETING CABIN EVENT"`
	Capacity   *int             `json:"capacity" binding:"omitempty,min=0"`
	HourlyRate *decimal.Decimal `json:"hourly_rate" binding:"omitempty,money"`
}

type RoomResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Capacity   int             `json:"capacity"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RoomTag is a brief representation of a room.
type RoomTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       string(r.Kind),
		Capacity:   r.Capacity,
		HourlyRate: r.HourlyRate,
		CreatedAt:  r.CreatedAt,
	}
}
