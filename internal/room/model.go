package room

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("room not found")
	ErrNameAlreadyUsed = apperror.Conflict("room name already exists")
	ErrEmptyName       = apperror.Validation("name cannot be empty")
	ErrInvalidKind     = apperror.Validation("invalid room kind")
	ErrInvalidCapacity = apperror.Validation("capacity must not be negative")
	ErrInvalidRate     = apperror.Validation("hourly rate must not be negative")
)

type Kind string

const (
	KindDesk    Kind = "DESK"
	KindMeeting Kind = "MEETING"
	KindCabin   Kind = "CABIN"
	KindEvent   Kind = "EVENT"
)

var ValidKinds = []Kind{KindDesk, KindMeeting, KindCabin, KindEvent}

func (k Kind) Valid() bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Room represents a bookable space (e.g., Hot Desk 3, Meeting Room A).
type Room struct {
	ID         string
	Name       string
	Kind       Kind
	Capacity   int
	HourlyRate decimal.Decimal
	CreatedAt  time.Time
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Kind     Kind
	Page     int
	PageSize int
}
