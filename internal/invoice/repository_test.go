package invoice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/db/dbtest"
	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

// newPgxEnv wires the services to Postgres. It skips without TEST_DB_DSN.
func newPgxEnv(t *testing.T) (*env, *interleavedRepo) {
	t.Helper()
	pool := dbtest.Open(t)
	clk := clock.NewFixed(t0)
	members := member.NewService(member.NewPgxRepository(pool))
	repo := &interleavedRepo{Repository: invoice.NewPgxRepository(pool)}
	return &env{
		clock:    clk,
		members:  members,
		rooms:    room.NewService(room.NewPgxRepository(pool)),
		bookings: booking.NewService(booking.NewPgxRepository(pool), clk),
		invoices: invoice.NewService(repo, members, clk),
	}, repo
}

func TestPgxGenerateInvoice(t *testing.T) {
	ctx := context.Background()
	e, _ := newPgxEnv(t)
	m := e.member(t, "ada@example.com")
	desk := e.room(t, "Desk 1", "33.33")
	meeting := e.room(t, "Meeting A", "20.00")

	ninety := e.book(t, m, desk, t0, 90*time.Minute)
	twenty := e.book(t, m, meeting, t0.Add(time.Hour), 20*time.Minute)
	e.book(t, m, meeting, t0.Add(48*time.Hour), time.Hour)
	edge := e.book(t, m, desk, t0.Add(23*time.Hour), time.Hour)

	asOf := t0.Add(24 * time.Hour)
	inv, err := e.invoices.Generate(ctx, m, asOf)
	require.NoError(t, err)
	require.Len(t, inv.Lines, 3, "a booking ending exactly at asOf is billed")
	assert.Equal(t, ninety.ID, inv.Lines[0].BookingID)
	assert.Equal(t, twenty.ID, inv.Lines[1].BookingID)
	assert.Equal(t, edge.ID, inv.Lines[2].BookingID)
	assert.True(t, money.MustParse("50.00").Equal(inv.Lines[0].Amount), "got %s", inv.Lines[0].Amount)
	assert.True(t, money.MustParse("6.67").Equal(inv.Lines[1].Amount), "got %s", inv.Lines[1].Amount)

	stored, err := e.invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Member ada@example.com", stored.MemberName)
	require.Len(t, stored.Lines, 3)
	assert.True(t, stored.Lines[0].Start.Equal(ninety.Interval.Start))
	assert.True(t, stored.Lines[0].End.Equal(ninety.Interval.End))
	assert.True(t, money.MustParse("1.5").Equal(stored.Lines[0].Hours))
	assert.True(t, inv.Total().Equal(stored.Total()))

	total, err := e.invoices.Total(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, money.MustParse("90.00").Equal(total), "got %s", total)

	again, err := e.invoices.Generate(ctx, m, asOf)
	require.NoError(t, err)
	assert.Empty(t, again.Lines, "already billed bookings are not billed again")

	_, err = e.invoices.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
	_, err = e.invoices.Generate(ctx, "missing", asOf)
	assert.ErrorIs(t, err, invoice.ErrMemberNotFound)
}

func TestPgxGenerateInvoiceConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	e, _ := newPgxEnv(t)
	m := e.member(t, "race@example.com")
	r := e.room(t, "Cabin", "10.00")
	for i := 0; i < 6; i++ {
		e.book(t, m, r, t0.Add(time.Duration(i)*time.Hour), 30*time.Minute)
	}
	asOf := t0.Add(12 * time.Hour)

	const runs = 8
	var wg sync.WaitGroup
	results := make([]*invoice.Invoice, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.invoices.Generate(ctx, m, asOf)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]int)
	for i := range results {
		require.NoError(t, errs[i])
		for _, l := range results[i].Lines {
			seen[l.BookingID]++
		}
	}
	assert.Len(t, seen, 6)
	for id, n := range seen {
		assert.Equal(t, 1, n, "booking %s billed %d times", id, n)
	}
}

func TestPgxGenerateInvoiceSeesChangesMadeWhileInvoicing(t *testing.T) {
	ctx := context.Background()
	asOf := t0.Add(24 * time.Hour)

	t.Run("booking moved past asOf is not billed", func(t *testing.T) {
		e, repo := newPgxEnv(t)
		m := e.member(t, "ada@example.com")
		r := e.room(t, "Desk 1", "10.00")
		b := e.book(t, m, r, t0, time.Hour)

		repo.afterListed = func() {
			_, err := e.bookings.Reschedule(ctx, b.ID, booking.Interval{Start: t0.Add(15 * time.Hour), End: asOf.Add(48 * time.Hour)})
			require.NoError(t, err)
		}

		inv, err := e.invoices.Generate(ctx, m, asOf)
		require.NoError(t, err)
		assert.Empty(t, inv.Lines)

		got, err := e.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Nil(t, got.InvoiceID)
	})

	t.Run("room repriced is billed on the new rate", func(t *testing.T) {
		e, repo := newPgxEnv(t)
		m := e.member(t, "ada@example.com")
		r := e.room(t, "Desk 1", "10.00")
		e.book(t, m, r, t0, 2*time.Hour)

		repo.afterListed = func() {
			rate := money.MustParse("12.50")
			_, err := e.rooms.Update(ctx, r, room.UpdateRequest{HourlyRate: &rate})
			require.NoError(t, err)
		}

		inv, err := e.invoices.Generate(ctx, m, asOf)
		require.NoError(t, err)
		require.Len(t, inv.Lines, 1)
		assert.True(t, money.MustParse("25.00").Equal(inv.Lines[0].Amount), "got %s", inv.Lines[0].Amount)
	})
}

func TestPgxCloseAndListInvoices(t *testing.T) {
	ctx := context.Background()
	e, _ := newPgxEnv(t)
	m := e.member(t, "close@example.com")
	r := e.room(t, "Desk", "8.00")

	e.book(t, m, r, t0, time.Hour)
	first, err := e.invoices.Generate(ctx, m, t0.Add(2*time.Hour))
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	second, err := e.invoices.Generate(ctx, m, t0.Add(30*time.Hour))
	require.NoError(t, err)

	closed, err := e.invoices.Close(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusClosed, closed.Status)
	again, err := e.invoices.Close(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusClosed, again.Status)

	items, total, err := e.invoices.List(ctx, invoice.Filter{MemberID: m, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)

	open, total, err := e.invoices.List(ctx, invoice.Filter{MemberID: m, Status: invoice.StatusOpen, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, second.ID, open[0].ID)

	_, err = e.invoices.Close(ctx, "missing")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}
