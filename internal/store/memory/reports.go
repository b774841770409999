package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/report"
)

type reportRepo struct {
	s *Store
}

func (r *reportRepo) Summary(_ context.Context) (report.Summary, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := report.Summary{
		Members:      len(s.members),
		Rooms:        len(s.rooms),
		Bookings:     len(s.bookings),
		TotalRevenue: decimal.Zero,
	}
	for _, m := range s.members {
		if m.IsActive() {
			sum.ActiveMembers++
		}
	}
	for _, p := range s.payments {
		sum.TotalRevenue = sum.TotalRevenue.Add(p.Amount)
	}
	return sum, nil
}

func (r *reportRepo) BookingsPerRoom(_ context.Context) ([]report.RoomBookings, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.rooms))
	for _, b := range s.bookings {
		counts[b.RoomID]++
	}

	rows := make([]report.RoomBookings, 0, len(s.rooms))
	for id, rm := range s.rooms {
		rows = append(rows, report.RoomBookings{RoomID: id, RoomName: rm.Name, Bookings: counts[id]})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RoomName < rows[j].RoomName })
	return rows, nil
}
