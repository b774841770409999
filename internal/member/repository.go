package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coworking-ledger/internal/db"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, filter Filter) ([]*Member, int, error)
	Update(ctx context.Context, m *Member) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var memberColumns = []string{"id", "full_name", "email", "phone", "company_id", "status", "created_at"}

func scanMember(row pgx.Row, extra ...any) (*Member, error) {
	var m Member
	dest := []any{&m.ID, &m.FullName, &m.Email, &m.Phone, &m.CompanyID, &m.Status, &m.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgxRepository) Create(ctx context.Context, m *Member) error {
	query, args, err := psql.Insert("public.members").
		Columns("full_name", "email", "phone", "company_id", "status").
		Values(m.FullName, m.Email, m.Phone, m.CompanyID, m.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create member query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		if db.IsUniqueViolation(err, "members_email_key") {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Member, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Eq) (*Member, error) {
	query, args, err := psql.Select(memberColumns...).
		From("public.members").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get member query failed: %w", err)
	}

	m, err := scanMember(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member failed: %w", err)
	}
	return m, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Member, int, error) {
	query := psql.Select(append(memberColumns, "count(*) OVER() AS total_count")...).
		From("public.members")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"full_name": like},
			squirrel.ILike{"email": like},
		})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("full_name ASC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list members query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members failed: %w", err)
	}
	defer rows.Close()

	var members []*Member
	var total int
	for rows.Next() {
		m, err := scanMember(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan member failed: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list members failed: %w", err)
	}

	return members, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, m *Member) error {
	query, args, err := psql.Update("public.members").
		Set("full_name", m.FullName).
		Set("email", m.Email).
		Set("phone", m.Phone).
		Set("company_id", m.CompanyID).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update member query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err, "members_email_key") {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("update member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
