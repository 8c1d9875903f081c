package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/platform/db"
)

// Repository defines data access for customers.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByCode(ctx context.Context, code string) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateBalance(ctx context.Context, id int64, balance money.Money) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const customerColumns = `
	id, code, name, type, phone, email,
	balance::text, currency, is_active, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT`+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT`+customerColumns+` FROM customers WHERE code = $1`, code)
	return scanCustomer(row)
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, error) {
	query := `SELECT` + customerColumns + ` FROM customers WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, *req.Type)
		argNum++
	}
	if req.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argNum)
		args = append(args, *req.IsActive)
		argNum++
	}
	if req.Search != nil && strings.TrimSpace(*req.Search) != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+strings.TrimSpace(*req.Search)+"%")
		argNum++
	}
	query += " ORDER BY name"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, customer Customer) (int64, error) {
	query := `
		INSERT INTO customers (code, name, type, phone, email, balance, currency, is_active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		customer.Code,
		customer.Name,
		string(customer.Type),
		customer.Phone,
		customer.Email,
		customer.Balance.StringFixed(),
		customer.Balance.Currency(),
		customer.IsActive,
		customer.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := []any{}
	argNum := 1
	for col, val := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argNum))
		args = append(args, val)
		argNum++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateBalance(ctx context.Context, id int64, balance money.Money) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET balance = $2, updated_at = NOW() WHERE id = $1`,
		id, balance.StringFixed(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var phone, email, notes pgtype.Text
	var balance, currency string

	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Type, &phone, &email,
		&balance, &currency, &c.IsActive, &notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Balance, err = money.NewFromString(balance, currency)
	if err != nil {
		return nil, fmt.Errorf("customers: scan balance: %w", err)
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	return &c, nil
}
