package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
)

var (
	ErrNotFound             = apperror.NotFound("invoice not found")
	ErrMemberNotFound       = apperror.NotFound("member not found")
	ErrMemberRequired       = apperror.Validation("member_id is required")
	ErrInvalidStatus        = apperror.Validation("invalid invoice status")
	ErrBookingAlreadyBilled = apperror.Conflict("booking was billed or changed while invoicing")
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Line bills one booking. Start and End are the period the line was priced on.
type Line struct {
	ID          string
	InvoiceID   string
	Position    int
	BookingID   string
	Start       time.Time
	End         time.Time
	Description string
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

type Invoice struct {
	ID         string
	MemberID   string
	MemberName string
	IssueDate  time.Time
	Status     Status
	Lines      []Line
	CreatedAt  time.Time
}

// Total is the sum of the line amounts; zero for an invoice without lines.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.Lines {
		total = total.Add(l.Amount)
	}
	return money.Round(total)
}

// Billable is a confirmed, ended, not yet invoiced booking with the rate of its room.
type Billable struct {
	BookingID  string
	RoomName   string
	Start      time.Time
	End        time.Time
	HourlyRate decimal.Decimal
}

// Filter defines parameters for listing invoices.
type Filter struct {
	MemberID string
	Status   Status
	Page     int
	PageSize int
}
