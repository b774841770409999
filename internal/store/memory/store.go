// Package memory is an in-process storage backend implementing every domain
// repository over one shared set of maps. A single store-wide lock makes each
// check-and-write atomic, which gives the same guarantees as the row locks of
// the PostgreSQL backend. Used for tests and STORE_DRIVER=memory.
package memory

import (
	"sync"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/report"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

type Store struct {
	mu    sync.RWMutex
	clock clock.Clock
	seq   int64

	members  map[string]*member.Member
	rooms    map[string]*room.Room
	bookings map[string]*booking.Booking
	invoices map[string]*invoiceRecord
	payments []ledger.Payment
}

type invoiceRecord struct {
	invoice.Invoice
	seq int64
}

type Option func(*Store)

// WithClock sets the clock used for created_at style timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func New(opts ...Option) *Store {
	s := &Store{
		clock:    clock.SystemClock{},
		members:  make(map[string]*member.Member),
		rooms:    make(map[string]*room.Room),
		bookings: make(map[string]*booking.Booking),
		invoices: make(map[string]*invoiceRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Members() member.Repository   { return &memberRepo{s} }
func (s *Store) Rooms() room.Repository       { return &roomRepo{s} }
func (s *Store) Bookings() booking.Repository { return &bookingRepo{s} }
func (s *Store) Invoices() invoice.Repository { return &invoiceRepo{s} }
func (s *Store) Ledger() ledger.Repository    { return &ledgerRepo{s} }
func (s *Store) Reports() report.Repository   { return &reportRepo{s} }

// nextSeq orders records created within the same clock tick. Callers hold mu.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// paginate slices items for a 1-based page, applying the list defaults.
func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
