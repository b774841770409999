package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	memberHttp "github.com/nekogravitycat/coworking-ledger/internal/member/http"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
)

// ListInvoicesRequest defines query parameters for listing invoices.
type ListInvoicesRequest struct {
	request.ListParams
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

type GenerateInvoiceBody struct {
	AsOf *time.Time `json:"as_of"`
}

type LineResponse struct {
	Position    int             `json:"position"`
	BookingID   string          `json:"booking_id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type InvoiceResponse struct {
	ID        string               `json:"id"`
	Member    memberHttp.MemberTag `json:"member"`
	IssueDate string               `json:"issue_date"`
	Status    string               `json:"status"`
	Lines     []LineResponse       `json:"lines"`
	Total     decimal.Decimal      `json:"total"`
	CreatedAt time.Time            `json:"created_at"`
}

func NewInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	lines := make([]LineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = LineResponse{
			Position:    l.Position,
			BookingID:   l.BookingID,
			StartTime:   l.Start,
			EndTime:     l.End,
			Description: l.Description,
			Hours:       l.Hours,
			Rate:        l.Rate,
			Amount:      l.Amount,
		}
	}
	return InvoiceResponse{
		ID:        inv.ID,
		Member:    memberHttp.MemberTag{ID: inv.MemberID, Name: inv.MemberName},
		IssueDate: inv.IssueDate.Format(time.DateOnly),
		Status:    string(inv.Status),
		Lines:     lines,
		Total:     inv.Total(),
		CreatedAt: inv.CreatedAt,
	}
}
