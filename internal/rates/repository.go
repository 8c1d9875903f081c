package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Repository defines data access for rate tiers.
type Repository interface {
	Get(ctx context.Context, id int64) (*Tier, error)
	ListByCategory(ctx context.Context, category pricing.Category) ([]Tier, error)
	Categories(ctx context.Context) ([]pricing.Category, error)
	Create(ctx context.Context, tier Tier) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const tierColumns = `
	id, category, min_thickness::text, max_thickness::text,
	rate::text, currency, active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Tier, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+tierColumns+` FROM rate_tiers WHERE id = $1`, id)
	return scanTier(row)
}

func (r *repository) ListByCategory(ctx context.Context, category pricing.Category) ([]Tier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+tierColumns+` FROM rate_tiers WHERE category = $1 ORDER BY min_thickness`,
		string(category),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) Categories(ctx context.Context) ([]pricing.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM rate_tiers ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pricing.Category
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, pricing.Category(c))
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, tier Tier) (int64, error) {
	query := `
		INSERT INTO rate_tiers (category, min_thickness, max_thickness, rate, currency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		string(tier.Category),
		tier.MinThickness.String(),
		tier.MaxThickness.String(),
		tier.Rate.StringFixed(),
		tier.Rate.Currency(),
		tier.Active,
	).Scan(&id)
	if err != nil {
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

	query := fmt.Sprintf("UPDATE rate_tiers SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTier(row pgx.Row) (*Tier, error) {
	var t Tier
	var category, min, max, rate, currency string

	err := row.Scan(
		&t.ID, &category, &min, &max,
		&rate, &currency, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Category = pricing.Category(category)
	if t.MinThickness, err = decimal.NewFromString(min); err != nil {
		return nil, fmt.Errorf("rates: scan min thickness: %w", err)
	}
	if t.MaxThickness, err = decimal.NewFromString(max); err != nil {
		return nil, fmt.Errorf("rates: scan max thickness: %w", err)
	}
	if t.Rate, err = money.NewFromString(rate, currency); err != nil {
		return nil, fmt.Errorf("rates: scan rate: %w", err)
	}
	return &t, nil
}
