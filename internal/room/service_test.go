package room_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
	"github.com/nekogravitycat/coworking-ledger/internal/store/memory"
)

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	svc := room.NewService(memory.New().Rooms())

	r, err := svc.Create(ctx, room.CreateRequest{Name: " Meeting A ", Kind: room.KindMeeting, Capacity: 8, HourlyRate: money.MustParse("12.345")})
	require.NoError(t, err)
	assert.Equal(t, "Meeting A", r.Name)
	assert.True(t, money.MustParse("12.35").Equal(r.HourlyRate), "rate is kept at currency precision")

	tests := []struct {
		name string
		req  room.CreateRequest
		want error
	}{
		{"empty name", room.CreateRequest{Kind: room.KindDesk}, room.ErrEmptyName},
		{"bad kind", room.CreateRequest{Name: "X", Kind: "POD"}, room.ErrInvalidKind},
		{"negative capacity", room.CreateRequest{Name: "X", Kind: room.KindDesk, Capacity: -1}, room.ErrInvalidCapacity},
		{"negative rate", room.CreateRequest{Name: "X", Kind: room.KindDesk, HourlyRate: money.MustParse("-1")}, room.ErrInvalidRate},
		{"duplicate name", room.CreateRequest{Name: "Meeting A", Kind: room.KindDesk}, room.ErrNameAlreadyUsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateAndListRooms(t *testing.T) {
	ctx := context.Background()
	svc := room.NewService(memory.New().Rooms())

	desk, err := svc.Create(ctx, room.CreateRequest{Name: "Desk 1", Kind: room.KindDesk, HourlyRate: money.MustParse("4")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, room.CreateRequest{Name: "Cabin 1", Kind: room.KindCabin, HourlyRate: money.MustParse("9")})
	require.NoError(t, err)

	rate := money.MustParse("4.50")
	updated, err := svc.Update(ctx, desk.ID, room.UpdateRequest{HourlyRate: &rate})
	require.NoError(t, err)
	assert.True(t, rate.Equal(updated.HourlyRate))

	kind := room.Kind("POD")
	_, err = svc.Update(ctx, desk.ID, room.UpdateRequest{Kind: &kind})
	assert.ErrorIs(t, err, room.ErrInvalidKind)

	_, err = svc.Update(ctx, "missing", room.UpdateRequest{})
	assert.ErrorIs(t, err, room.ErrNotFound)

	items, total, err := svc.List(ctx, room.Filter{Kind: room.KindDesk})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, desk.ID, items[0].ID)

	_, _, err = svc.List(ctx, room.Filter{Kind: "POD"})
	assert.ErrorIs(t, err, room.ErrInvalidKind)
}
