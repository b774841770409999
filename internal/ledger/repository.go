package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

// Repository reads balances as single statements so each result comes from
// one snapshot of lines and payments.
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	InvoiceTotals(ctx context.Context, invoiceID string) (total, paid decimal.Decimal, err error)
	MemberTotals(ctx context.Context, memberID string) (total, paid decimal.Decimal, err error)
	RevenueByDay(ctx context.Context, limit int) ([]DailyRevenue, error)
	TopDues(ctx context.Context, limit int) ([]MemberDue, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, int, error)
	MemberBalances(ctx context.Context) ([]MemberBalance, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const createPaymentSQL = `
WITH ins AS (
    INSERT INTO public.payments (invoice_id, amount, method, paid_at)
    VALUES ($1, $2, $3, $4)
    RETURNING id, invoice_id
)
SELECT ins.id, i.member_id
FROM ins
JOIN public.invoices i ON i.id = ins.invoice_id`

func (r *pgxRepository) CreatePayment(ctx context.Context, p *Payment) error {
	err := r.pool.QueryRow(ctx, createPaymentSQL, p.InvoiceID, p.Amount, p.Method, p.PaidAt).
		Scan(&p.ID, &p.MemberID)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") || db.IsInvalidInput(err) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}

const invoiceTotalsSQL = `
SELECT
    COALESCE((SELECT SUM(l.amount) FROM public.invoice_lines l WHERE l.invoice_id = i.id), 0),
    COALESCE((SELECT SUM(p.amount) FROM public.payments p WHERE p.invoice_id = i.id), 0)
FROM public.invoices i
WHERE i.id = $1`

func (r *pgxRepository) InvoiceTotals(ctx context.Context, invoiceID string) (decimal.Decimal, decimal.Decimal, error) {
	var total, paid decimal.Decimal
	if err := r.pool.QueryRow(ctx, invoiceTotalsSQL, invoiceID).Scan(&total, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return decimal.Zero, decimal.Zero, ErrInvoiceNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("get invoice totals failed: %w", err)
	}
	return total, paid, nil
}

const memberTotalsSQL = `
SELECT
    COALESCE((SELECT SUM(l.amount)
              FROM public.invoice_lines l
              JOIN public.invoices i ON i.id = l.invoice_id
              WHERE i.member_id = m.id), 0),
    COALESCE((SELECT SUM(p.amount)
              FROM public.payments p
              JOIN public.invoices i ON i.id = p.invoice_id
              WHERE i.member_id = m.id), 0)
FROM public.members m
WHERE m.id = $1`

func (r *pgxRepository) MemberTotals(ctx context.Context, memberID string) (decimal.Decimal, decimal.Decimal, error) {
	var total, paid decimal.Decimal
	if err := r.pool.QueryRow(ctx, memberTotalsSQL, memberID).Scan(&total, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return decimal.Zero, decimal.Zero, ErrMemberNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("get member totals failed: %w", err)
	}
	return total, paid, nil
}

func (r *pgxRepository) RevenueByDay(ctx context.Context, limit int) ([]DailyRevenue, error) {
	query := psql.Select("(paid_at AT TIME ZONE 'UTC')::date AS day", "SUM(amount) AS revenue").
		From("public.payments").
		GroupBy("day").
		OrderBy("day DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build revenue by day query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("revenue by day failed: %w", err)
	}
	defer rows.Close()

	var days []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily revenue failed: %w", err)
		}
		d.Day = d.Day.UTC()
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revenue by day failed: %w", err)
	}
	return days, nil
}

// memberBalancesSQL yields one row per member with invoiced total and paid sums.
const memberBalancesSQL = `
SELECT m.id::text AS member_id,
       m.full_name,
       COALESCE(t.total, 0) AS total,
       COALESCE(p.paid, 0) AS paid
FROM public.members m
LEFT JOIN (
    SELECT i.member_id, SUM(l.amount) AS total
    FROM public.invoice_lines l
    JOIN public.invoices i ON i.id = l.invoice_id
    GROUP BY i.member_id
) t ON t.member_id = m.id
LEFT JOIN (
    SELECT i.member_id, SUM(p.amount) AS paid
    FROM public.payments p
    JOIN public.invoices i ON i.id = p.invoice_id
    GROUP BY i.member_id
) p ON p.member_id = m.id`

func (r *pgxRepository) TopDues(ctx context.Context, limit int) ([]MemberDue, error) {
	query := psql.Select("member_id", "full_name", "total - paid AS due").
		From("(" + memberBalancesSQL + ") b").
		Where("total - paid > 0").
		OrderBy("due DESC", "member_id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top dues query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("top dues failed: %w", err)
	}
	defer rows.Close()

	var dues []MemberDue
	for rows.Next() {
		var d MemberDue
		if err := rows.Scan(&d.MemberID, &d.MemberName, &d.Due); err != nil {
			return nil, fmt.Errorf("scan member due failed: %w", err)
		}
		dues = append(dues, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top dues failed: %w", err)
	}
	return dues, nil
}

func (r *pgxRepository) MemberBalances(ctx context.Context) ([]MemberBalance, error) {
	rows, err := r.pool.Query(ctx, memberBalancesSQL+"\nORDER BY m.full_name ASC, m.id ASC")
	if err != nil {
		return nil, fmt.Errorf("member balances failed: %w", err)
	}
	defer rows.Close()

	var balances []MemberBalance
	for rows.Next() {
		var (
			b           MemberBalance
			total, paid decimal.Decimal
		)
		if err := rows.Scan(&b.MemberID, &b.MemberName, &total, &paid); err != nil {
			return nil, fmt.Errorf("scan member balance failed: %w", err)
		}
		b.Balance = NewBalance(total, paid)
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("member balances failed: %w", err)
	}
	return balances, nil
}

func (r *pgxRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, int, error) {
	query := psql.Select("p.id", "p.invoice_id", "i.member_id", "p.amount", "p.method", "p.paid_at", "count(*) OVER() AS total_count").
		From("public.payments p").
		Join("public.invoices i ON i.id = p.invoice_id")

	if filter.InvoiceID != "" {
		query = query.Where(squirrel.Eq{"p.invoice_id": filter.InvoiceID})
	}
	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"i.member_id": filter.MemberID})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("p.paid_at DESC", "p.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list payments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	var total int
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.MemberID, &p.Amount, &p.Method, &p.PaidAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan payment failed: %w", err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list payments failed: %w", err)
	}
	return payments, total, nil
}
