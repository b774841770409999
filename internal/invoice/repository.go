package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

type Repository interface {
	// ListBillable returns the member's confirmed, uninvoiced bookings that
	// ended at or before asOf, oldest first.
	ListBillable(ctx context.Context, memberID string, asOf time.Time) ([]Billable, error)
	// Create stores the invoice with its lines and attaches every billed booking
	// to it. It fails with ErrBookingAlreadyBilled if any of those bookings was
	// billed, cancelled, moved or repriced since ListBillable, in which case
	// nothing is written.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Invoice, int, error)
	// Close reports whether the status actually changed.
	Close(ctx context.Context, id string) (*Invoice, bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const lineBookingConstraint = "invoice_lines_booking_key"

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *pgxRepository) ListBillable(ctx context.Context, memberID string, asOf time.Time) ([]Billable, error) {
	query, args, err := psql.Select("b.id", "r.name", "b.start_time", "b.end_time", "r.hourly_rate").
		From("public.bookings b").
		Join("public.rooms r ON b.room_id = r.id").
		Where(squirrel.Eq{"b.member_id": memberID, "b.status": "CONFIRMED", "b.invoice_id": nil}).
		Where(squirrel.LtOrEq{"b.end_time": asOf}).
		OrderBy("b.start_time ASC", "b.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list billable query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if db.IsInvalidInput(err) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("list billable bookings failed: %w", err)
	}
	defer rows.Close()

	var billables []Billable
	for rows.Next() {
		var b Billable
		if err := rows.Scan(&b.BookingID, &b.RoomName, &b.Start, &b.End, &b.HourlyRate); err != nil {
			return nil, fmt.Errorf("scan billable booking failed: %w", err)
		}
		billables = append(billables, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list billable bookings failed: %w", err)
	}
	return billables, nil
}

func (r *pgxRepository) Create(ctx context.Context, inv *Invoice) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Serializes billing runs of one member.
		lockQuery, args, err := psql.Select("id").
			From("public.members").
			Where(squirrel.Eq{"id": inv.MemberID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock member query failed: %w", err)
		}
		var lockedID string
		if err := tx.QueryRow(ctx, lockQuery, args...).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("lock member failed: %w", err)
		}

		query, args, err := psql.Insert("public.invoices").
			Columns("member_id", "issue_date", "status").
			Values(inv.MemberID, inv.IssueDate, inv.Status).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create invoice query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt); err != nil {
			return fmt.Errorf("create invoice failed: %w", err)
		}

		if len(inv.Lines) == 0 {
			return nil
		}

		for i := range inv.Lines {
			l := &inv.Lines[i]
			if err := attachBooking(ctx, tx, inv.ID, l); err != nil {
				return err
			}

			l.InvoiceID = inv.ID
			query, args, err := psql.Insert("public.invoice_lines").
				Columns("invoice_id", "position", "booking_id", "period_start", "period_end", "description", "hours", "rate", "amount").
				Values(inv.ID, l.Position, l.BookingID, l.Start, l.End, l.Description, l.Hours, l.Rate, l.Amount).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("build create invoice line query failed: %w", err)
			}
			if err := tx.QueryRow(ctx, query, args...).Scan(&l.ID); err != nil {
				if db.IsUniqueViolation(err, lineBookingConstraint) {
					return ErrBookingAlreadyBilled
				}
				return fmt.Errorf("create invoice line failed: %w", err)
			}
		}
		return nil
	})
}

// attachBooking links the line's booking to the invoice only if the booking is
// still unbilled, confirmed and on the priced period, and its room still on the
// priced rate. The room is locked before the booking, as Reschedule does.
func attachBooking(ctx context.Context, tx pgx.Tx, invoiceID string, l *Line) error {
	rateQuery, args, err := psql.Select("r.hourly_rate").
		From("public.rooms r").
		Where(squirrel.Expr("r.id = (SELECT b.room_id FROM public.bookings b WHERE b.id = ?)", l.BookingID)).
		Suffix("FOR SHARE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock room query failed: %w", err)
	}
	var rate decimal.Decimal
	if err := tx.QueryRow(ctx, rateQuery, args...).Scan(&rate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookingAlreadyBilled
		}
		return fmt.Errorf("lock room failed: %w", err)
	}
	if !rate.Equal(l.Rate) {
		return ErrBookingAlreadyBilled
	}

	query, args, err := psql.Update("public.bookings").
		Set("invoice_id", invoiceID).
		Where(squirrel.Eq{
			"id":         l.BookingID,
			"status":     "CONFIRMED",
			"invoice_id": nil,
			"start_time": l.Start,
			"end_time":   l.End,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build attach booking query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("attach booking failed: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrBookingAlreadyBilled
	}
	return nil
}

var invoiceColumns = []string{"i.id", "i.member_id", "m.full_name", "i.issue_date", "i.status", "i.created_at"}

func selectInvoices(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("public.invoices i").
		Join("public.members m ON i.member_id = m.id")
}

func scanInvoice(row pgx.Row, extra ...any) (*Invoice, error) {
	var inv Invoice
	dest := []any{&inv.ID, &inv.MemberID, &inv.MemberName, &inv.IssueDate, &inv.Status, &inv.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	return getByID(ctx, r.pool, id)
}

func getByID(ctx context.Context, q querier, id string) (*Invoice, error) {
	query, args, err := selectInvoices(invoiceColumns...).
		Where(squirrel.Eq{"i.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get invoice query failed: %w", err)
	}

	inv, err := scanInvoice(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invoice failed: %w", err)
	}

	lines, err := loadLines(ctx, q, []string{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Lines = lines[inv.ID]
	return inv, nil
}

// loadLines returns the lines of the given invoices keyed by invoice ID, in position order.
func loadLines(ctx context.Context, q querier, invoiceIDs []string) (map[string][]Line, error) {
	result := make(map[string][]Line, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("id", "invoice_id", "position", "booking_id", "period_start", "period_end", "description", "hours", "rate", "amount").
		From("public.invoice_lines").
		Where(squirrel.Eq{"invoice_id": invoiceIDs}).
		OrderBy("invoice_id", "position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoice lines query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.BookingID, &l.Start, &l.End, &l.Description, &l.Hours, &l.Rate, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line failed: %w", err)
		}
		l.Start, l.End = l.Start.UTC(), l.End.UTC()
		result[l.InvoiceID] = append(result[l.InvoiceID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoice lines failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Invoice, int, error) {
	query := selectInvoices(append(invoiceColumns, "count(*) OVER() AS total_count")...)

	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"i.member_id": filter.MemberID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"i.status": filter.Status})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("i.issue_date DESC", "i.created_at DESC", "i.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list invoices query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices failed: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	var total int
	for rows.Next() {
		inv, err := scanInvoice(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice failed: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list invoices failed: %w", err)
	}

	ids := make([]string, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	lines, err := loadLines(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, inv := range invoices {
		inv.Lines = lines[inv.ID]
	}

	return invoices, total, nil
}

func (r *pgxRepository) Close(ctx context.Context, id string) (*Invoice, bool, error) {
	var (
		inv     *Invoice
		changed bool
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql.Update("public.invoices").
			Set("status", StatusClosed).
			Where(squirrel.Eq{"id": id, "status": StatusOpen}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build close invoice query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			if db.IsInvalidInput(err) {
				return ErrNotFound
			}
			return fmt.Errorf("close invoice failed: %w", err)
		}
		changed = ct.RowsAffected() > 0

		inv, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return inv, changed, nil
}
