package invoicing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vetro-erp/vetro-erp/internal/catalog"
	"github.com/vetro-erp/vetro-erp/internal/customers"
	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// GlassSource resolves glass types for line pricing.
type GlassSource interface {
	GetSellable(ctx context.Context, id int64) (*catalog.Glass, error)
}

// RateSource serves validated rate tables for the requested categories.
type RateSource interface {
	Tables(ctx context.Context, categories []pricing.Category) (pricing.TableSet, error)
}

// Notifier receives post-commit events. Implementations enqueue background
// work; they must never fail the calling workflow.
type Notifier interface {
	InvoiceIssued(ctx context.Context, invoiceID int64)
	PaymentRecorded(ctx context.Context, invoiceID int64, amount money.Money)
}

type noopNotifier struct{}

func (noopNotifier) InvoiceIssued(context.Context, int64)                {}
func (noopNotifier) PaymentRecorded(context.Context, int64, money.Money) {}

// Service drives the invoice workflows. Every state change that touches both
// the invoice and the customer balance runs in a single transaction: the two
// can never drift apart.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	glass    GlassSource
	rates    RateSource
	notifier Notifier
	currency string
	now      func() time.Time
}

// NewService builds a Service instance. A nil notifier disables notifications.
func NewService(logger *slog.Logger, repo Repository, glass GlassSource, rates RateSource, notifier Notifier, currency string) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		logger:   logger,
		repo:     repo,
		glass:    glass,
		rates:    rates,
		notifier: notifier,
		currency: currency,
		now:      time.Now,
	}
}

// priceLine resolves the glass type and rate tables, then prices one line.
func (s *Service) priceLine(ctx context.Context, in LineInput) (Line, error) {
	glass, err := s.glass.GetSellable(ctx, in.GlassID)
	if err != nil {
		return Line{}, err
	}
	dims, err := in.dimensions()
	if err != nil {
		return Line{}, err
	}

	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	reqs := make([]pricing.OperationRequest, 0, len(in.Operations))
	var categories []pricing.Category
	for _, op := range in.Operations {
		req, err := op.parse(glass.ThicknessMM, s.currency)
		if err != nil {
			return Line{}, err
		}
		reqs = append(reqs, req)
		if req.Mode != pricing.ModeManual {
			categories = append(categories, req.Category)
		}
	}

	tables, err := s.rates.Tables(ctx, categories)
	if err != nil {
		return Line{}, err
	}
	breakdown, err := pricing.PriceLine(dims, glass.PricingMethod, glass.UnitPrice, reqs, tables, quantity)
	if err != nil {
		return Line{}, err
	}

	return Line{
		GlassID:    glass.ID,
		GlassCode:  glass.Code,
		Dimensions: dims,
		Quantity:   quantity,
		Breakdown:  breakdown,
	}, nil
}

// Create issues a new invoice. Lines are priced up front; persistence, the
// optional initial payment and the customer balance update commit together.
// Cash customers must cover the full total at creation.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Snapshot, error) {
	// lines are independent, so they price concurrently
	lines := make([]Line, len(req.Lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range req.Lines {
		i, in := i, in
		g.Go(func() error {
			line, err := s.priceLine(gctx, in)
			if err != nil {
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	snap := NewSnapshot(req.CustomerID, s.currency, now, req.Notes)
	var err error
	for _, line := range lines {
		if snap, err = snap.AddLine(line); err != nil {
			return nil, err
		}
	}

	var initial money.Money
	if req.InitialPayment != nil {
		if initial, err = money.NewFromString(*req.InitialPayment, s.currency); err != nil {
			return nil, fmt.Errorf("invoicing: invalid initial payment: %w", err)
		}
		if snap, err = snap.SetInitialPayment(initial, now); err != nil {
			return nil, err
		}
	}

	var created Snapshot
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		customer, err := tx.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer.Type == customers.TypeCash && !snap.Remaining.IsZero() {
			return ErrCashMustPayInFull
		}

		number, err := tx.NextNumber(ctx)
		if err != nil {
			return err
		}
		snap.Number = number

		if snap, err = tx.CreateInvoice(ctx, snap); err != nil {
			return err
		}

		if !initial.IsZero() {
			if _, err := tx.CreatePayment(ctx, Payment{
				InvoiceID: snap.ID,
				Reference: uuid.NewString(),
				Amount:    initial,
				Method:    "cash",
				Notes:     "initial payment",
				PaidAt:    now,
			}); err != nil {
				return err
			}
		}

		// debt grows by what remains unpaid; zero for cash by the guard above
		updated, err := customer.AddToBalance(snap.Remaining)
		if err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer.ID, updated.Balance); err != nil {
			return err
		}

		created = snap
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.InvoiceIssued(ctx, created.ID)
	return &created, nil
}

// AddLine prices and appends a line to an open invoice, growing the customer
// balance by the line total in the same transaction.
func (s *Service) AddLine(ctx context.Context, invoiceID int64, in LineInput) (*Snapshot, error) {
	line, err := s.priceLine(ctx, in)
	if err != nil {
		return nil, err
	}

	var result Snapshot
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		snap, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		next, err := snap.AddLine(line)
		if err != nil {
			return err
		}

		customer, err := tx.GetCustomer(ctx, snap.CustomerID)
		if err != nil {
			return err
		}
		updated, err := customer.AddToBalance(line.Breakdown.Total)
		if err != nil {
			return err
		}

		lineID, err := tx.AppendLine(ctx, invoiceID, line)
		if err != nil {
			return err
		}
		next.Lines[len(next.Lines)-1].ID = lineID

		if err := tx.UpdateState(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer.ID, updated.Balance); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordPayment applies a payment to an invoice and shrinks the customer
// balance by the same amount, atomically. A zero amount changes nothing and
// records nothing.
func (s *Service) RecordPayment(ctx context.Context, invoiceID int64, req RecordPaymentRequest) (*Payment, *Snapshot, error) {
	amount, err := money.NewFromString(req.Amount, s.currency)
	if err != nil {
		return nil, nil, fmt.Errorf("invoicing: invalid amount: %w", err)
	}

	if amount.IsZero() {
		snap, err := s.repo.GetInvoice(ctx, invoiceID)
		if err != nil {
			return nil, nil, err
		}
		return nil, snap, nil
	}

	now := s.now()
	var (
		payment Payment
		result  Snapshot
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		snap, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		next, err := snap.RecordPayment(amount, now)
		if err != nil {
			return err
		}

		customer, err := tx.GetCustomer(ctx, snap.CustomerID)
		if err != nil {
			return err
		}
		updated := *customer
		if customer.Type == customers.TypeCredit {
			if updated, err = customer.SubtractFromBalance(amount); err != nil {
				return err
			}
		}

		payment = Payment{
			InvoiceID: invoiceID,
			Reference: uuid.NewString(),
			Amount:    amount,
			Method:    req.Method,
			Notes:     req.Notes,
			PaidAt:    now,
		}
		if payment.ID, err = tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if err := tx.UpdateState(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer.ID, updated.Balance); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.PaymentRecorded(ctx, invoiceID, amount)
	return &payment, &result, nil
}

// ReversePayment deletes a payment record, restores the invoice state and puts
// the amount back on the customer balance. Cash customers cannot reverse: that
// would leave a cash invoice unpaid.
func (s *Service) ReversePayment(ctx context.Context, invoiceID, paymentID int64) (*Snapshot, error) {
	var result Snapshot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.InvoiceID != invoiceID {
			return ErrPaymentNotFound
		}

		snap, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		next, err := snap.ReversePayment(payment.Amount)
		if err != nil {
			return err
		}

		customer, err := tx.GetCustomer(ctx, snap.CustomerID)
		if err != nil {
			return err
		}
		// cash customers fail here: their balance may never grow
		updated, err := customer.AddToBalance(payment.Amount)
		if err != nil {
			return err
		}

		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		if err := tx.UpdateState(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer.ID, updated.Balance); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel voids an invoice. The unpaid remainder comes off the customer balance
// in the same transaction; payments already made stay on record.
func (s *Service) Cancel(ctx context.Context, invoiceID int64) (*Snapshot, error) {
	var result Snapshot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		snap, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		next, err := snap.Cancel()
		if err != nil {
			return err
		}

		customer, err := tx.GetCustomer(ctx, snap.CustomerID)
		if err != nil {
			return err
		}
		updated := *customer
		if customer.Type == customers.TypeCredit && !snap.Remaining.IsZero() {
			if updated, err = customer.SubtractFromBalance(snap.Remaining); err != nil {
				return err
			}
		}

		if err := tx.UpdateState(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateCustomerBalance(ctx, customer.ID, updated.Balance); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Quote prices a line without persisting anything.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteView, error) {
	line, err := s.priceLine(ctx, req.Line)
	if err != nil {
		return QuoteView{}, err
	}
	return QuoteView{
		GlassCode:  line.GlassCode,
		Material:   line.Breakdown.Material.StringFixed(),
		Operations: toOperationViews(line.Breakdown.Operations),
		UnitTotal:  line.Breakdown.UnitTotal.StringFixed(),
		Quantity:   line.Quantity,
		Total:      line.Breakdown.Total.StringFixed(),
		Currency:   line.Breakdown.Total.Currency(),
	}, nil
}

// Get returns one invoice with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Snapshot, error) {
	return s.repo.GetInvoice(ctx, id)
}

// List returns invoices matching the filter, without lines.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Snapshot, error) {
	if req.Limit == 0 {
		req.Limit = 100
	}
	return s.repo.ListInvoices(ctx, req)
}

// Payments returns the payments recorded against one invoice.
func (s *Service) Payments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}
