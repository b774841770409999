package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
)

type invoiceRepo struct {
	s *Store
}

// invoiceView copies a stored invoice with its lines. Callers hold mu.
func (s *Store) invoiceView(rec *invoiceRecord) *invoice.Invoice {
	inv := rec.Invoice
	inv.Lines = append([]invoice.Line(nil), rec.Lines...)
	if m, ok := s.members[inv.MemberID]; ok {
		inv.MemberName = m.FullName
	}
	return &inv
}

func (r *invoiceRepo) ListBillable(_ context.Context, memberID string, asOf time.Time) ([]invoice.Billable, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var billables []invoice.Billable
	for _, b := range s.bookings {
		if b.MemberID != memberID || b.Status != booking.StatusConfirmed || b.InvoiceID != nil {
			continue
		}
		if b.Interval.End.After(asOf) {
			continue
		}
		rm, ok := s.rooms[b.RoomID]
		if !ok {
			continue
		}
		billables = append(billables, invoice.Billable{
			BookingID:  b.ID,
			RoomName:   rm.Name,
			Start:      b.Interval.Start,
			End:        b.Interval.End,
			HourlyRate: rm.HourlyRate,
		})
	}

	sort.Slice(billables, func(i, j int) bool {
		if !billables[i].Start.Equal(billables[j].Start) {
			return billables[i].Start.Before(billables[j].Start)
		}
		return billables[i].BookingID < billables[j].BookingID
	})
	return billables, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[inv.MemberID]; !ok {
		return invoice.ErrMemberNotFound
	}
	for _, l := range inv.Lines {
		b, ok := s.bookings[l.BookingID]
		if !ok || b.Status != booking.StatusConfirmed || b.InvoiceID != nil {
			return invoice.ErrBookingAlreadyBilled
		}
		// The line must still describe the booking as it was priced.
		if !b.Interval.Start.Equal(l.Start) || !b.Interval.End.Equal(l.End) {
			return invoice.ErrBookingAlreadyBilled
		}
		if rm, ok := s.rooms[b.RoomID]; !ok || !rm.HourlyRate.Equal(l.Rate) {
			return invoice.ErrBookingAlreadyBilled
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	inv.ID = uuid.NewString()
	inv.CreatedAt = s.clock.Now().UTC()
	for i := range inv.Lines {
		inv.Lines[i].ID = uuid.NewString()
		inv.Lines[i].InvoiceID = inv.ID
		invoiceID := inv.ID
		s.bookings[inv.Lines[i].BookingID].InvoiceID = &invoiceID
	}

	rec := &invoiceRecord{Invoice: *inv, seq: s.nextSeq()}
	rec.Lines = append([]invoice.Line(nil), inv.Lines...)
	s.invoices[inv.ID] = rec
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*invoice.Invoice, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}
	return s.invoiceView(rec), nil
}

func (r *invoiceRepo) List(_ context.Context, filter invoice.Filter) ([]*invoice.Invoice, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*invoiceRecord
	for _, rec := range s.invoices {
		if filter.MemberID != "" && rec.MemberID != filter.MemberID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	// Newest first.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].IssueDate.Equal(matched[j].IssueDate) {
			return matched[i].IssueDate.After(matched[j].IssueDate)
		}
		return matched[i].seq > matched[j].seq
	})

	page := paginate(matched, filter.Page, filter.PageSize)
	out := make([]*invoice.Invoice, len(page))
	for i, rec := range page {
		out[i] = s.invoiceView(rec)
	}
	return out, len(matched), nil
}

func (r *invoiceRepo) Close(ctx context.Context, id string) (*invoice.Invoice, bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.invoices[id]
	if !ok {
		return nil, false, invoice.ErrNotFound
	}
	if rec.Status == invoice.StatusClosed {
		return s.invoiceView(rec), false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	rec.Status = invoice.StatusClosed
	return s.invoiceView(rec), true, nil
}
