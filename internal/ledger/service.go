package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
)

type RecordPaymentRequest struct {
	InvoiceID string
	Amount    decimal.Decimal
	Method    Method // empty means DefaultMethod
}

// Service records payments and derives balances. It never mutates invoices.
type Service interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error)
	InvoiceBalance(ctx context.Context, invoiceID string) (Balance, error)
	MemberBalance(ctx context.Context, memberID string) (Balance, error)
	// RevenueByDay groups payments by UTC calendar day, newest first, at most
	// window days. A window <= 0 returns every day.
	RevenueByDay(ctx context.Context, window int) ([]DailyRevenue, error)
	// TopDues lists members with a positive due, largest first and ties by
	// member ID. A limit <= 0 returns every such member.
	TopDues(ctx context.Context, limit int) ([]MemberDue, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, int, error)
	MemberBalances(ctx context.Context) ([]MemberBalance, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &service{repo: repo, clock: clk}
}

func (s *service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	invoiceID := strings.TrimSpace(req.InvoiceID)
	if invoiceID == "" {
		return nil, ErrInvoiceRequired
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(money.Round(req.Amount)) {
		return nil, ErrInvalidAmount
	}
	method := req.Method
	if method == "" {
		method = DefaultMethod
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	p := &Payment{
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    method,
		PaidAt:    s.clock.Now().UTC(),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", p.InvoiceID),
		zap.Stringer("amount", p.Amount),
		zap.String("method", string(p.Method)),
	)
	return p, nil
}

func (s *service) InvoiceBalance(ctx context.Context, invoiceID string) (Balance, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return Balance{}, ErrInvoiceRequired
	}
	total, paid, err := s.repo.InvoiceTotals(ctx, invoiceID)
	if err != nil {
		return Balance{}, err
	}
	return NewBalance(total, paid), nil
}

func (s *service) MemberBalance(ctx context.Context, memberID string) (Balance, error) {
	if strings.TrimSpace(memberID) == "" {
		return Balance{}, ErrMemberRequired
	}
	total, paid, err := s.repo.MemberTotals(ctx, memberID)
	if err != nil {
		return Balance{}, err
	}
	return NewBalance(total, paid), nil
}

func (s *service) RevenueByDay(ctx context.Context, window int) ([]DailyRevenue, error) {
	if window < 0 {
		window = 0
	}
	return s.repo.RevenueByDay(ctx, window)
}

func (s *service) TopDues(ctx context.Context, limit int) ([]MemberDue, error) {
	if limit < 0 {
		limit = 0
	}
	return s.repo.TopDues(ctx, limit)
}

func (s *service) ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, int, error) {
	return s.repo.ListPayments(ctx, filter)
}

func (s *service) MemberBalances(ctx context.Context) ([]MemberBalance, error) {
	return s.repo.MemberBalances(ctx)
}
