package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, r *Room) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, room *Room) error {
	const query = `
		INSERT INTO public.rooms (name, kind, capacity, hourly_rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, room.Name, room.Kind, room.Capacity, room.HourlyRate).
		Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "rooms_name_key") {
			return ErrNameAlreadyUsed
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	const query = `
		SELECT id, name, kind, capacity, hourly_rate, created_at
		FROM public.rooms
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var room Room
	if err := row.Scan(&room.ID, &room.Name, &room.Kind, &room.Capacity, &room.HourlyRate, &room.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return &room, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	var args []any
	queryBase := `
		SELECT id, name, kind, capacity, hourly_rate, created_at, count(*) OVER() as total_count
		FROM public.rooms
		WHERE 1=1
	`
	paramIndex := 1

	if filter.Kind != "" {
		queryBase += fmt.Sprintf(" AND kind = $%d", paramIndex)
		args = append(args, filter.Kind)
		paramIndex++
	}

	queryBase += " ORDER BY name ASC"

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	queryBase += fmt.Sprintf(" LIMIT $%d OFFSET $%d", paramIndex, paramIndex+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.pool.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	var total int

	for rows.Next() {
		var room Room
		if err := rows.Scan(
			&room.ID, &room.Name, &room.Kind, &room.Capacity, &room.HourlyRate, &room.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, room *Room) error {
	const query = `
		UPDATE public.rooms
		SET name = $1, kind = $2, capacity = $3, hourly_rate = $4
		WHERE id = $5
	`
	ct, err := r.pool.Exec(ctx, query, room.Name, room.Kind, room.Capacity, room.HourlyRate, room.ID)
	if err != nil {
		if db.IsUniqueViolation(err, "rooms_name_key") {
			return ErrNameAlreadyUsed
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
