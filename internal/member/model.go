package member

import (
	"time"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("member not found")
	ErrEmailAlreadyUsed = apperror.Conflict("email already used")
	ErrEmailRequired    = apperror.Validation("email is required")
	ErrNameRequired     = apperror.Validation("full name is required")
	ErrInvalidStatus    = apperror.Validation("invalid member status")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Member is a registered user of the facility.
type Member struct {
	ID        string
	FullName  string
	Email     string
	Phone     *string
	CompanyID *string
	Status    Status
	CreatedAt time.Time
}

// IsActive reports whether the member may create bookings.
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// Filter defines filter options for listing members.
type Filter struct {
	Status   Status
	Query    string // matches full name or email, case-insensitive
	Page     int
	PageSize int
}
