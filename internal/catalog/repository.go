package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Repository defines data access for glass types.
type Repository interface {
	Get(ctx context.Context, id int64) (*Glass, error)
	GetByCode(ctx context.Context, code string) (*Glass, error)
	List(ctx context.Context, req ListGlassRequest) ([]Glass, error)
	Create(ctx context.Context, glass Glass) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const glassColumns = `
	id, code, name, thickness_mm::text, pricing_method,
	unit_price::text, currency, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Glass, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+glassColumns+` FROM glass_types WHERE id = $1`, id)
	return scanGlass(row)
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Glass, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+glassColumns+` FROM glass_types WHERE code = $1`, code)
	return scanGlass(row)
}

func (r *repository) List(ctx context.Context, req ListGlassRequest) ([]Glass, error) {
	query := `SELECT` + glassColumns + ` FROM glass_types WHERE 1=1`
	args := []any{}
	argNum := 1

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
	query += " ORDER BY code"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Glass
	for rows.Next() {
		g, err := scanGlass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, glass Glass) (int64, error) {
	query := `
		INSERT INTO glass_types (code, name, thickness_mm, pricing_method, unit_price, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		glass.Code,
		glass.Name,
		glass.ThicknessMM.String(),
		string(glass.PricingMethod),
		glass.UnitPrice.StringFixed(),
		glass.UnitPrice.Currency(),
		glass.IsActive,
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

	query := fmt.Sprintf("UPDATE glass_types SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGlass(row pgx.Row) (*Glass, error) {
	var g Glass
	var thickness, price, currency, method string

	err := row.Scan(
		&g.ID, &g.Code, &g.Name, &thickness, &method,
		&price, &currency, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g.ThicknessMM, err = decimal.NewFromString(thickness)
	if err != nil {
		return nil, fmt.Errorf("catalog: scan thickness: %w", err)
	}
	g.UnitPrice, err = money.NewFromString(price, currency)
	if err != nil {
		return nil, fmt.Errorf("catalog: scan unit price: %w", err)
	}
	g.PricingMethod = pricing.GlassPricing(method)
	return &g, nil
}
