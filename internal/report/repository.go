package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Summary(ctx context.Context) (Summary, error)
	BookingsPerRoom(ctx context.Context) ([]RoomBookings, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const summarySQL = `
SELECT
    (SELECT count(*) FROM public.members),
    (SELECT count(*) FROM public.members WHERE status = 'ACTIVE'),
    (SELECT count(*) FROM public.rooms),
    (SELECT count(*) FROM public.bookings),
    (SELECT COALESCE(SUM(amount), 0) FROM public.payments)`

func (r *pgxRepository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, summarySQL).
		Scan(&s.Members, &s.ActiveMembers, &s.Rooms, &s.Bookings, &s.TotalRevenue)
	if err != nil {
		return Summary{}, fmt.Errorf("get summary failed: %w", err)
	}
	return s, nil
}

const bookingsPerRoomSQL = `
SELECT r.id, r.name, count(b.id)
FROM public.rooms r
LEFT JOIN public.bookings b ON b.room_id = r.id
GROUP BY r.id, r.name
ORDER BY r.name ASC`

func (r *pgxRepository) BookingsPerRoom(ctx context.Context) ([]RoomBookings, error) {
	rows, err := r.pool.Query(ctx, bookingsPerRoomSQL)
	if err != nil {
		return nil, fmt.Errorf("bookings per room failed: %w", err)
	}
	defer rows.Close()

	var result []RoomBookings
	for rows.Next() {
		var rb RoomBookings
		if err := rows.Scan(&rb.RoomID, &rb.RoomName, &rb.Bookings); err != nil {
			return nil, fmt.Errorf("scan room bookings failed: %w", err)
		}
		result = append(result, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings per room failed: %w", err)
	}
	return result, nil
}
