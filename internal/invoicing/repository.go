package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/customers"
	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/platform/db"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Repository defines data access for invoices, their payments and the
// customer balance rows the payment workflows must move in lockstep.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NextNumber(ctx context.Context) (string, error)
	CreateInvoice(ctx context.Context, snap Snapshot) (Snapshot, error)
	AppendLine(ctx context.Context, invoiceID int64, line Line) (int64, error)
	UpdateState(ctx context.Context, snap Snapshot) error
	GetInvoice(ctx context.Context, id int64) (*Snapshot, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Snapshot, error)
	CreatePayment(ctx context.Context, payment Payment) (int64, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	GetCustomer(ctx context.Context, id int64) (*customers.Customer, error)
	UpdateCustomerBalance(ctx context.Context, id int64, balance money.Money) error
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

func (r *repository) NextNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("invoicing: next number: %w", err)
	}
	return fmt.Sprintf("INV-%06d", n), nil
}

// CreateInvoice persists the snapshot and returns it with the generated
// invoice and line IDs filled in.
func (r *repository) CreateInvoice(ctx context.Context, snap Snapshot) (Snapshot, error) {
	query := `
		INSERT INTO invoices (number, customer_id, total, paid, remaining, currency, status, issued_at, paid_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		snap.Number,
		snap.CustomerID,
		snap.Total.StringFixed(),
		snap.Paid.StringFixed(),
		snap.Remaining.StringFixed(),
		snap.Total.Currency(),
		string(snap.Status),
		snap.IssuedAt,
		snap.PaidAt,
		snap.Notes,
	).Scan(&snap.ID)
	if err != nil {
		return Snapshot{}, err
	}

	for i := range snap.Lines {
		lineID, err := r.AppendLine(ctx, snap.ID, snap.Lines[i])
		if err != nil {
			return Snapshot{}, err
		}
		snap.Lines[i].ID = lineID
	}
	return snap, nil
}

func (r *repository) AppendLine(ctx context.Context, invoiceID int64, line Line) (int64, error) {
	query := `
		INSERT INTO invoice_lines (invoice_id, glass_id, glass_code, width, height, unit, quantity, material, unit_total, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		invoiceID,
		line.GlassID,
		line.GlassCode,
		line.Dimensions.Width().String(),
		line.Dimensions.Height().String(),
		string(line.Dimensions.Unit()),
		line.Quantity,
		line.Breakdown.Material.StringFixed(),
		line.Breakdown.UnitTotal.StringFixed(),
		line.Breakdown.Total.StringFixed(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, op := range line.Breakdown.Operations {
		if err := r.insertOperation(ctx, id, op); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// insertOperation persists one priced operation, including the resolved tier
// rate so the price can be recomputed later without a fresh table lookup.
func (r *repository) insertOperation(ctx context.Context, lineID int64, op pricing.PricedOperation) error {
	var tierID *int64
	var tierRate *string
	if op.Tier != nil {
		tierID = &op.Tier.ID
		rate := op.Tier.Rate.StringFixed()
		tierRate = &rate
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO line_operations (line_id, category, mode, formula, thickness, diameter, cut_length, area, tier_id, tier_rate, price, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lineID,
		string(op.Category),
		string(op.Mode),
		string(op.Formula),
		op.Thickness.String(),
		op.Diameter.String(),
		op.Length.String(),
		op.Area.Value().String(),
		tierID,
		tierRate,
		op.Price.StringFixed(),
		op.Description,
	)
	return err
}

func (r *repository) UpdateState(ctx context.Context, snap Snapshot) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET total = $2, paid = $3, remaining = $4, status = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $1`,
		snap.ID,
		snap.Total.StringFixed(),
		snap.Paid.StringFixed(),
		snap.Remaining.StringFixed(),
		string(snap.Status),
		snap.PaidAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

const invoiceColumns = `
	id, number, customer_id, total::text, paid::text, remaining::text,
	currency, status, issued_at, paid_at, notes`

func (r *repository) GetInvoice(ctx context.Context, id int64) (*Snapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT`+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	snap, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}
	if snap.Lines, err = r.listLines(ctx, id, snap.Total.Currency()); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Snapshot, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, *req.CustomerID)
		argNum++
	}
	if req.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *req.Status)
		argNum++
	}
	query += " ORDER BY issued_at DESC, id DESC"
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

	var out []Snapshot
	for rows.Next() {
		snap, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func (r *repository) listLines(ctx context.Context, invoiceID int64, currency string) ([]Line, error) {
	ops, err := r.listOperations(ctx, invoiceID, currency)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, glass_id, glass_code, width::text, height::text, unit, quantity,
		       material::text, unit_total::text, total::text
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var width, height, unit, material, unitTotal, total string
		if err := rows.Scan(&l.ID, &l.GlassID, &l.GlassCode, &width, &height, &unit, &l.Quantity,
			&material, &unitTotal, &total); err != nil {
			return nil, err
		}
		w, err := decimal.NewFromString(width)
		if err != nil {
			return nil, fmt.Errorf("invoicing: scan width: %w", err)
		}
		h, err := decimal.NewFromString(height)
		if err != nil {
			return nil, fmt.Errorf("invoicing: scan height: %w", err)
		}
		if l.Dimensions, err = geometry.NewDimensions(w, h, geometry.Unit(unit)); err != nil {
			return nil, err
		}
		l.Breakdown.Quantity = l.Quantity
		l.Breakdown.Operations = ops[l.ID]
		if l.Breakdown.Material, err = money.NewFromString(material, currency); err != nil {
			return nil, fmt.Errorf("invoicing: scan material: %w", err)
		}
		if l.Breakdown.UnitTotal, err = money.NewFromString(unitTotal, currency); err != nil {
			return nil, fmt.Errorf("invoicing: scan unit total: %w", err)
		}
		if l.Breakdown.Total, err = money.NewFromString(total, currency); err != nil {
			return nil, fmt.Errorf("invoicing: scan line total: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// listOperations loads every priced operation for an invoice, keyed by line.
// The retained tier is rebuilt from the stored tier id and rate, which is all
// a later recalculation needs.
func (r *repository) listOperations(ctx context.Context, invoiceID int64, currency string) (map[int64][]pricing.PricedOperation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.line_id, o.category, o.mode, o.formula, o.thickness::text, o.diameter::text,
		       o.cut_length::text, o.area::text, o.tier_id, o.tier_rate::text, o.price::text, o.description
		FROM line_operations o
		JOIN invoice_lines l ON l.id = o.line_id
		WHERE l.invoice_id = $1
		ORDER BY o.id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]pricing.PricedOperation)
	for rows.Next() {
		var (
			lineID                                            int64
			category, mode, formula                           string
			thickness, diameter, cutLength, area, price, desc string
			tierID                                            pgtype.Int8
			tierRate                                          pgtype.Text
		)
		if err := rows.Scan(&lineID, &category, &mode, &formula, &thickness, &diameter,
			&cutLength, &area, &tierID, &tierRate, &price, &desc); err != nil {
			return nil, err
		}

		op := pricing.PricedOperation{
			Category:    pricing.Category(category),
			Mode:        pricing.Mode(mode),
			Formula:     pricing.Formula(formula),
			Description: desc,
		}
		if op.Thickness, err = decimal.NewFromString(thickness); err != nil {
			return nil, fmt.Errorf("invoicing: scan thickness: %w", err)
		}
		if op.Diameter, err = decimal.NewFromString(diameter); err != nil {
			return nil, fmt.Errorf("invoicing: scan diameter: %w", err)
		}
		if op.Length, err = decimal.NewFromString(cutLength); err != nil {
			return nil, fmt.Errorf("invoicing: scan cut length: %w", err)
		}
		areaValue, err := decimal.NewFromString(area)
		if err != nil {
			return nil, fmt.Errorf("invoicing: scan area: %w", err)
		}
		if op.Area, err = geometry.NewArea(areaValue); err != nil {
			return nil, err
		}
		if op.Price, err = money.NewFromString(price, currency); err != nil {
			return nil, fmt.Errorf("invoicing: scan price: %w", err)
		}
		if tierID.Valid && tierRate.Valid {
			rate, err := money.NewFromString(tierRate.String, currency)
			if err != nil {
				return nil, fmt.Errorf("invoicing: scan tier rate: %w", err)
			}
			op.Tier = &pricing.RateTier{ID: tierID.Int64, Rate: rate, Active: true}
		}
		out[lineID] = append(out[lineID], op)
	}
	return out, rows.Err()
}

func (r *repository) CreatePayment(ctx context.Context, payment Payment) (int64, error) {
	query := `
		INSERT INTO invoice_payments (invoice_id, reference, amount, currency, method, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		payment.InvoiceID,
		payment.Reference,
		payment.Amount.StringFixed(),
		payment.Amount.Currency(),
		payment.Method,
		payment.Notes,
		payment.PaidAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, invoice_id, reference, amount::text, currency, method, notes, paid_at, created_at
		FROM invoice_payments WHERE id = $1`, id)
	return scanPayment(row)
}

func (r *repository) DeletePayment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoice_payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, reference, amount::text, currency, method, notes, paid_at, created_at
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY paid_at, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetCustomer loads a customer row with a row lock, so concurrent payment
// workflows serialize on the balance.
func (r *repository) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	var c customers.Customer
	var balance, currency string
	err := r.db.QueryRow(ctx, `
		SELECT id, code, name, type, balance::text, currency
		FROM customers WHERE id = $1 FOR UPDATE`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Type, &balance, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customers.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Balance, err = money.NewFromString(balance, currency); err != nil {
		return nil, fmt.Errorf("invoicing: scan customer balance: %w", err)
	}
	return &c, nil
}

func (r *repository) UpdateCustomerBalance(ctx context.Context, id int64, balance money.Money) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET balance = $2, updated_at = NOW() WHERE id = $1`,
		id, balance.StringFixed(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return customers.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	var total, paid, remaining, currency, status string
	var paidAt pgtype.Timestamptz
	var notes pgtype.Text

	err := row.Scan(
		&s.ID, &s.Number, &s.CustomerID, &total, &paid, &remaining,
		&currency, &status, &s.IssuedAt, &paidAt, &notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Total, err = money.NewFromString(total, currency); err != nil {
		return nil, fmt.Errorf("invoicing: scan total: %w", err)
	}
	if s.Paid, err = money.NewFromString(paid, currency); err != nil {
		return nil, fmt.Errorf("invoicing: scan paid: %w", err)
	}
	if s.Remaining, err = money.NewFromString(remaining, currency); err != nil {
		return nil, fmt.Errorf("invoicing: scan remaining: %w", err)
	}
	s.Status = Status(status)
	if paidAt.Valid {
		s.PaidAt = &paidAt.Time
	}
	if notes.Valid {
		s.Notes = notes.String
	}
	return &s, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var amount, currency string
	var notes pgtype.Text

	err := row.Scan(&p.ID, &p.InvoiceID, &p.Reference, &amount, &currency, &p.Method, &notes, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Amount, err = money.NewFromString(amount, currency); err != nil {
		return nil, fmt.Errorf("invoicing: scan amount: %w", err)
	}
	if notes.Valid {
		p.Notes = notes.String
	}
	return &p, nil
}
