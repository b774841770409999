package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

// Repository persists bookings. Every mutating method is atomic: its
// preconditions are checked in the same critical section as the write.
type Repository interface {
	// Create inserts a CONFIRMED booking after checking that the member exists
	// and is active, the room exists and no confirmed booking of the room overlaps.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Cancel reports whether the status actually changed.
	Cancel(ctx context.Context, id string) (*Booking, bool, error)
	Reschedule(ctx context.Context, id string, interval Interval) (*Booking, error)
	DeactivateMember(ctx context.Context, memberID string, now time.Time) error
	DeleteRoom(ctx context.Context, roomID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const overlapConstraint = "bookings_no_overlap"

var bookingColumns = []string{
	"b.id", "b.room_id", "r.name", "b.member_id", "m.full_name",
	"b.start_time", "b.end_time", "b.status", "b.invoice_id", "b.created_at", "b.updated_at",
}

func selectBookings(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("public.bookings b").
		Join("public.rooms r ON b.room_id = r.id").
		Join("public.members m ON b.member_id = m.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.RoomID, &b.RoomName, &b.MemberID, &b.MemberName,
		&b.Interval.Start, &b.Interval.End, &b.Status, &b.InvoiceID, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Interval = b.Interval.UTC()
	return &b, nil
}

// lockRow takes a row lock on id in table and reports whether it exists.
// It returns the selected column.
func lockRow(ctx context.Context, tx pgx.Tx, table, column, id, mode string) (string, bool, error) {
	query, args, err := psql.Select(column).
		From(table).
		Where(squirrel.Eq{"id": id}).
		Suffix(mode).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build lock query failed: %w", err)
	}

	var value string
	if err := tx.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lock %s row failed: %w", table, err)
	}
	return value, true, nil
}

// findOverlap returns the earliest confirmed booking of the room that overlaps
// interval, ignoring excludeID.
func findOverlap(ctx context.Context, tx pgx.Tx, roomID string, interval Interval, excludeID string) (*ConflictError, error) {
	// Overlap: (NewStart < ExistingEnd) AND (ExistingStart < NewEnd)
	query := psql.Select("id", "start_time", "end_time").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID, "status": StatusConfirmed}).
		Where(squirrel.Lt{"start_time": interval.End}).
		Where(squirrel.Gt{"end_time": interval.Start})
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.OrderBy("start_time ASC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build check overlap query failed: %w", err)
	}

	conflict := &ConflictError{RoomID: roomID}
	err = tx.QueryRow(ctx, sql, args...).Scan(&conflict.BookingID, &conflict.Existing.Start, &conflict.Existing.End)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check overlap failed: %w", err)
	}
	conflict.Existing = conflict.Existing.UTC()
	return conflict, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// The member row is share-locked so deactivation cannot interleave.
		status, ok, err := lockRow(ctx, tx, "public.members", "status", b.MemberID, "FOR SHARE")
		if err != nil {
			return err
		}
		if !ok {
			return ErrMemberNotFound
		}
		if status != "ACTIVE" {
			return ErrMemberInactive
		}

		// The room row lock serializes all writers of this room's schedule.
		roomName, ok, err := lockRow(ctx, tx, "public.rooms", "name", b.RoomID, "FOR UPDATE")
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoomNotFound
		}

		conflict, err := findOverlap(ctx, tx, b.RoomID, b.Interval, "")
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}

		query, args, err := psql.Insert("public.bookings").
			Columns("room_id", "member_id", "start_time", "end_time", "status").
			Values(b.RoomID, b.MemberID, b.Interval.Start, b.Interval.End, StatusConfirmed).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			if db.IsExclusionViolation(err, overlapConstraint) {
				return &ConflictError{RoomID: b.RoomID}
			}
			return fmt.Errorf("create booking failed: %w", err)
		}

		b.RoomName = roomName
		b.Status = StatusConfirmed
		return nil
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getByID(ctx, r.pool, id)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getByID(ctx context.Context, q querier, id string) (*Booking, error) {
	query, args, err := selectBookings(bookingColumns...).
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

var sortColumns = map[string]string{
	"start_time": "b.start_time",
	"end_time":   "b.end_time",
	"created_at": "b.created_at",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings(append(bookingColumns, "count(*) OVER() AS total_count")...)

	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"b.member_id": filter.MemberID})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_time": *filter.To})
	}

	// Sorting
	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "b.start_time"
	}
	orderDir := "DESC"
	if filter.SortOrder == "asc" || filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "b.id ASC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.Limit(uint64(filter.PageSize)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Cancel(ctx context.Context, id string) (*Booking, bool, error) {
	var (
		b       *Booking
		changed bool
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql.Update("public.bookings").
			Set("status", StatusCancelled).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id, "status": StatusConfirmed}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build cancel booking query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			if db.IsInvalidInput(err) {
				return ErrNotFound
			}
			return fmt.Errorf("cancel booking failed: %w", err)
		}
		changed = ct.RowsAffected() > 0

		b, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return b, changed, nil
}

func (r *pgxRepository) Reschedule(ctx context.Context, id string, interval Interval) (*Booking, error) {
	var b *Booking
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}

		// Same lock order as Create: room first, then the booking itself.
		if _, ok, err := lockRow(ctx, tx, "public.rooms", "id", current.RoomID, "FOR UPDATE"); err != nil {
			return err
		} else if !ok {
			return ErrRoomNotFound
		}

		var (
			status    Status
			invoiceID *string
		)
		lockQuery, args, err := psql.Select("status", "invoice_id").
			From("public.bookings").
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock booking query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, lockQuery, args...).Scan(&status, &invoiceID); err != nil {
			return fmt.Errorf("lock booking failed: %w", err)
		}
		if status != StatusConfirmed {
			return ErrNotConfirmed
		}
		if invoiceID != nil {
			return ErrAlreadyInvoiced
		}

		conflict, err := findOverlap(ctx, tx, current.RoomID, interval, id)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}

		query, args, err := psql.Update("public.bookings").
			Set("start_time", interval.Start).
			Set("end_time", interval.End).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build reschedule booking query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if db.IsExclusionViolation(err, overlapConstraint) {
				return &ConflictError{RoomID: current.RoomID}
			}
			return fmt.Errorf("reschedule booking failed: %w", err)
		}

		b, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) DeactivateMember(ctx context.Context, memberID string, now time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Exclusive lock: waits for in-flight booking creations of this member.
		status, ok, err := lockRow(ctx, tx, "public.members", "status", memberID, "FOR UPDATE")
		if err != nil {
			return err
		}
		if !ok {
			return ErrMemberNotFound
		}
		if status == "INACTIVE" {
			return nil
		}

		sub, args, err := psql.Select("1").
			From("public.bookings").
			Where(squirrel.Eq{"member_id": memberID, "status": StatusConfirmed}).
			Where(squirrel.Gt{"start_time": now}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build future bookings query failed: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
			return fmt.Errorf("check future bookings failed: %w", err)
		}
		if exists {
			return ErrHasFutureBookings
		}

		query, args, err := psql.Update("public.members").
			Set("status", "INACTIVE").
			Where(squirrel.Eq{"id": memberID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build deactivate member query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("deactivate member failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) DeleteRoom(ctx context.Context, roomID string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, ok, err := lockRow(ctx, tx, "public.rooms", "id", roomID, "FOR UPDATE"); err != nil {
			return err
		} else if !ok {
			return ErrRoomNotFound
		}

		sub, args, err := psql.Select("1").
			From("public.bookings").
			Where(squirrel.Eq{"room_id": roomID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build room bookings query failed: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
			return fmt.Errorf("check room bookings failed: %w", err)
		}
		if exists {
			return ErrHasBookings
		}

		query, args, err := psql.Delete("public.rooms").
			Where(squirrel.Eq{"id": roomID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete room query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if db.IsForeignKeyViolation(err, "") {
				return ErrHasBookings
			}
			return fmt.Errorf("delete room failed: %w", err)
		}
		return nil
	})
}
