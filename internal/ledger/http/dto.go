package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
)

type RecordPaymentBody struct {
	Amount *decimal.Decimal `json:"amount" binding:"required,money"`
	Method string           `json:"method" binding:"omitempty,oneof=CASH CARD UPI BANK_TRANSFER"`
}

// ListPaymentsRequest defines query parameters for listing payments.
type ListPaymentsRequest struct {
	request.ListParams
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	MemberID  string `form:"member_id" binding:"omitempty,uuid"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	MemberID  string          `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
}

func NewPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		MemberID:  p.MemberID,
		Amount:    p.Amount,
		Method:    string(p.Method),
		PaidAt:    p.PaidAt,
	}
}

type BalanceResponse struct {
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
	Due   decimal.Decimal `json:"due"`
}

func NewBalanceResponse(b ledger.Balance) BalanceResponse {
	return BalanceResponse{Total: b.Total, Paid: b.Paid, Due: b.Due}
}
