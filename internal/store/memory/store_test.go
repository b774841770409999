package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Nil(t, paginate(items, 4, 2))
	assert.Equal(t, items, paginate(items, 0, 0), "defaults to the first page of 20")
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(clock.NewFixed(now)))

	m := &member.Member{FullName: "Ada", Email: "ada@example.com"}
	require.NoError(t, s.Members().Create(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, member.StatusActive, m.Status)
	assert.Equal(t, now, m.CreatedAt)

	m.FullName = "changed by caller"
	got, err := s.Members().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FullName)

	got.Status = member.StatusInactive
	again, err := s.Members().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, again.IsActive())

	r := &room.Room{Name: "Desk", Kind: room.KindDesk, HourlyRate: money.MustParse("5")}
	require.NoError(t, s.Rooms().Create(ctx, r))

	b := &booking.Booking{
		RoomID:   r.ID,
		MemberID: m.ID,
		Interval: booking.Interval{Start: now, End: now.Add(time.Hour)},
		Status:   booking.StatusConfirmed,
	}
	require.NoError(t, s.Bookings().Create(ctx, b))

	fetched, err := s.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk", fetched.RoomName)
	assert.Equal(t, "Ada", fetched.MemberName)
	fetched.Status = booking.StatusCancelled

	stillConfirmed, err := s.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stillConfirmed.IsConfirmed())
}

func TestMemberEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Members().Create(ctx, &member.Member{FullName: "Ada", Email: "ada@example.com"}))
	err := s.Members().Create(ctx, &member.Member{FullName: "Other Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, member.ErrEmailAlreadyUsed)

	bob := &member.Member{FullName: "Bob", Email: "bob@example.com"}
	require.NoError(t, s.Members().Create(ctx, bob))
	bob.Email = "ada@example.com"
	assert.ErrorIs(t, s.Members().Update(ctx, bob), member.ErrEmailAlreadyUsed)
}

func TestCancelledContextWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()

	err := s.Members().Create(ctx, &member.Member{FullName: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, context.Canceled)

	_, total, err := s.Members().List(context.Background(), member.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
