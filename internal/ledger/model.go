package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/apperror"
)

var (
	ErrInvalidAmount   = apperror.Validation("amount must be a positive value with at most 2 decimal places")
	ErrInvalidMethod   = apperror.Validation("invalid payment method")
	ErrInvoiceRequired = apperror.Validation("invoice_id is required")
	ErrMemberRequired  = apperror.Validation("member_id is required")
	ErrInvoiceNotFound = apperror.NotFound("invoice not found")
	ErrMemberNotFound  = apperror.NotFound("member not found")
)

type Method string

const (
	MethodCash         Method = "CASH"
	MethodCard         Method = "CARD"
	MethodUPI          Method = "UPI"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

// DefaultMethod applies when a payment names no method.
const DefaultMethod = MethodCash

var ValidMethods = []Method{MethodCash, MethodCard, MethodUPI, MethodBankTransfer}

func (m Method) Valid() bool {
	for _, v := range ValidMethods {
		if m == v {
			return true
		}
	}
	return false
}

// Payment is an immutable ledger entry against an invoice.
type Payment struct {
	ID        string
	InvoiceID string
	MemberID  string
	Amount    decimal.Decimal
	Method    Method
	PaidAt    time.Time
}

// Balance is derived from invoice lines and payments; it is never stored.
type Balance struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
	Due   decimal.Decimal
}

// NewBalance derives Due. Due is negative when a payer has overpaid.
func NewBalance(total, paid decimal.Decimal) Balance {
	return Balance{Total: total, Paid: paid, Due: total.Sub(paid)}
}

type DailyRevenue struct {
	Day     time.Time // UTC midnight
	Revenue decimal.Decimal
}

type MemberDue struct {
	MemberID   string
	MemberName string
	Due        decimal.Decimal
}

type MemberBalance struct {
	MemberID   string
	MemberName string
	Balance
}

// PaymentFilter defines parameters for listing payments.
type PaymentFilter struct {
	InvoiceID string
	MemberID  string
	Page      int
	PageSize  int
}
