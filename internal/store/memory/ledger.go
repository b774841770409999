package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
)

type ledgerRepo struct {
	s *Store
}

func (r *ledgerRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[p.InvoiceID]
	if !ok {
		return ledger.ErrInvoiceNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.ID = uuid.NewString()
	p.MemberID = inv.MemberID
	s.payments = append(s.payments, *p)
	return nil
}

// invoiceTotals sums lines and payments of one invoice. Callers hold mu.
func (s *Store) invoiceTotals(invoiceID string) (total, paid decimal.Decimal) {
	total, paid = decimal.Zero, decimal.Zero
	if rec, ok := s.invoices[invoiceID]; ok {
		total = rec.Total()
	}
	for _, p := range s.payments {
		if p.InvoiceID == invoiceID {
			paid = paid.Add(p.Amount)
		}
	}
	return total, paid
}

// memberTotals sums over every invoice of the member. Callers hold mu.
func (s *Store) memberTotals(memberID string) (total, paid decimal.Decimal) {
	total, paid = decimal.Zero, decimal.Zero
	for id, rec := range s.invoices {
		if rec.MemberID != memberID {
			continue
		}
		t, p := s.invoiceTotals(id)
		total = total.Add(t)
		paid = paid.Add(p)
	}
	return total, paid
}

func (r *ledgerRepo) InvoiceTotals(_ context.Context, invoiceID string) (decimal.Decimal, decimal.Decimal, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.invoices[invoiceID]; !ok {
		return decimal.Zero, decimal.Zero, ledger.ErrInvoiceNotFound
	}
	total, paid := s.invoiceTotals(invoiceID)
	return total, paid, nil
}

func (r *ledgerRepo) MemberTotals(_ context.Context, memberID string) (decimal.Decimal, decimal.Decimal, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.members[memberID]; !ok {
		return decimal.Zero, decimal.Zero, ledger.ErrMemberNotFound
	}
	total, paid := s.memberTotals(memberID)
	return total, paid, nil
}

func (r *ledgerRepo) RevenueByDay(_ context.Context, limit int) ([]ledger.DailyRevenue, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[time.Time]decimal.Decimal)
	for _, p := range s.payments {
		day := p.PaidAt.UTC().Truncate(24 * time.Hour)
		byDay[day] = byDay[day].Add(p.Amount)
	}

	days := make([]ledger.DailyRevenue, 0, len(byDay))
	for day, revenue := range byDay {
		days = append(days, ledger.DailyRevenue{Day: day, Revenue: revenue})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.After(days[j].Day) })

	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}
	return days, nil
}

// memberBalances returns one row per member, ordered by name. Callers hold mu.
func (s *Store) memberBalances() []ledger.MemberBalance {
	rows := make([]ledger.MemberBalance, 0, len(s.members))
	for id, m := range s.members {
		total, paid := s.memberTotals(id)
		rows = append(rows, ledger.MemberBalance{
			MemberID:   id,
			MemberName: m.FullName,
			Balance:    ledger.NewBalance(total, paid),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MemberName != rows[j].MemberName {
			return rows[i].MemberName < rows[j].MemberName
		}
		return rows[i].MemberID < rows[j].MemberID
	})
	return rows
}

func (r *ledgerRepo) TopDues(_ context.Context, limit int) ([]ledger.MemberDue, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dues []ledger.MemberDue
	for _, b := range s.memberBalances() {
		if b.Due.IsPositive() {
			dues = append(dues, ledger.MemberDue{MemberID: b.MemberID, MemberName: b.MemberName, Due: b.Due})
		}
	}
	sort.Slice(dues, func(i, j int) bool {
		if c := dues[i].Due.Cmp(dues[j].Due); c != 0 {
			return c > 0
		}
		return dues[i].MemberID < dues[j].MemberID
	})

	if limit > 0 && len(dues) > limit {
		dues = dues[:limit]
	}
	return dues, nil
}

func (r *ledgerRepo) MemberBalances(_ context.Context) ([]ledger.MemberBalance, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.memberBalances(), nil
}

func (r *ledgerRepo) ListPayments(_ context.Context, filter ledger.PaymentFilter) ([]*ledger.Payment, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*ledger.Payment
	// Walk newest first so equal timestamps keep reverse insertion order.
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		if filter.InvoiceID != "" && p.InvoiceID != filter.InvoiceID {
			continue
		}
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		matched = append(matched, &p)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].PaidAt.After(matched[j].PaidAt) })

	return paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}
