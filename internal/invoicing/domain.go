// Package invoicing owns the invoice aggregate: line aggregation, derived
// totals, and the payment state machine. The aggregate is modeled as an
// immutable Snapshot with pure transition functions, so every invariant can be
// checked in isolation and the persistence layer only ever stores the result.
package invoicing

import (
	"errors"
	"time"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Status enumerates invoice payment states.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusCancelled     Status = "CANCELLED"
)

var (
	ErrInvoiceNotFound = errors.New("invoicing: invoice not found")
	ErrPaymentNotFound = errors.New("invoicing: payment not found")
	// ErrInvoiceClosed indicates a mutation on a PAID or CANCELLED invoice.
	ErrInvoiceClosed = errors.New("invoicing: invoice is paid or cancelled")
	// ErrInvoiceCancelled indicates a payment on a cancelled invoice.
	ErrInvoiceCancelled = errors.New("invoicing: invoice is cancelled")
	// ErrPaymentExceedsBalance indicates a payment above the remaining balance.
	ErrPaymentExceedsBalance = errors.New("invoicing: payment exceeds remaining balance")
	// ErrReversalExceedsPaid indicates a reversal above the paid amount.
	ErrReversalExceedsPaid = errors.New("invoicing: reversal exceeds paid amount")
	// ErrAlreadySeeded indicates a second initial payment.
	ErrAlreadySeeded = errors.New("invoicing: initial payment already recorded")
	// ErrCashMustPayInFull indicates a cash-customer invoice left unpaid at creation.
	ErrCashMustPayInFull = errors.New("invoicing: cash customer must pay invoice in full at creation")
)

// Line is one priced glass piece within an invoice.
type Line struct {
	ID         int64
	GlassID    int64
	GlassCode  string
	Dimensions geometry.Dimensions
	Quantity   int
	Breakdown  pricing.LineBreakdown
}

// Payment is one recorded payment against an invoice.
type Payment struct {
	ID        int64
	InvoiceID int64
	Reference string
	Amount    money.Money
	Method    string
	Notes     string
	PaidAt    time.Time
	CreatedAt time.Time
}

// Snapshot is the immutable state of an invoice. Transition methods return a
// new snapshot and never mutate the receiver.
type Snapshot struct {
	ID         int64
	Number     string
	CustomerID int64
	Lines      []Line
	Total      money.Money
	Paid       money.Money
	Remaining  money.Money
	Status     Status
	IssuedAt   time.Time
	PaidAt     *time.Time
	Notes      string
}

// NewSnapshot starts an empty pending invoice for a customer.
func NewSnapshot(customerID int64, currency string, issuedAt time.Time, notes string) Snapshot {
	return Snapshot{
		CustomerID: customerID,
		Total:      money.Zero(currency),
		Paid:       money.Zero(currency),
		Remaining:  money.Zero(currency),
		Status:     StatusPending,
		IssuedAt:   issuedAt,
		Notes:      notes,
	}
}

func (s Snapshot) clone() Snapshot {
	s.Lines = append([]Line(nil), s.Lines...)
	if s.PaidAt != nil {
		t := *s.PaidAt
		s.PaidAt = &t
	}
	return s
}

// AddLine appends a priced line and recomputes the derived totals. Lines can
// no longer be added once the invoice is fully paid or cancelled.
func (s Snapshot) AddLine(line Line) (Snapshot, error) {
	if s.Status == StatusPaid || s.Status == StatusCancelled {
		return Snapshot{}, ErrInvoiceClosed
	}
	next := s.clone()

	total, err := next.Total.Add(line.Breakdown.Total)
	if err != nil {
		return Snapshot{}, err
	}
	remaining, err := total.Sub(next.Paid)
	if err != nil {
		return Snapshot{}, err
	}

	next.Lines = append(next.Lines, line)
	next.Total = total
	next.Remaining = remaining
	next.recomputeStatus(time.Time{})
	return next, nil
}

// RecordPayment applies a payment. A zero amount is a no-op; an amount above
// the remaining balance is rejected without touching any field. The payment
// date is set the first time the invoice becomes fully paid.
func (s Snapshot) RecordPayment(amount money.Money, at time.Time) (Snapshot, error) {
	if s.Status == StatusCancelled {
		return Snapshot{}, ErrInvoiceCancelled
	}
	if amount.IsZero() {
		return s.clone(), nil
	}
	over, err := amount.GreaterThan(s.Remaining)
	if err != nil {
		return Snapshot{}, err
	}
	if over {
		return Snapshot{}, ErrPaymentExceedsBalance
	}

	next := s.clone()
	if next.Paid, err = next.Paid.Add(amount); err != nil {
		return Snapshot{}, err
	}
	if next.Remaining, err = next.Remaining.Sub(amount); err != nil {
		return Snapshot{}, err
	}
	next.recomputeStatus(at)
	return next, nil
}

// ReversePayment undoes a previously recorded payment, moving the status
// backwards as needed. Used when a payment record is deleted.
func (s Snapshot) ReversePayment(amount money.Money) (Snapshot, error) {
	if s.Status == StatusCancelled {
		return Snapshot{}, ErrInvoiceCancelled
	}
	if amount.IsZero() {
		return s.clone(), nil
	}
	over, err := amount.GreaterThan(s.Paid)
	if err != nil {
		return Snapshot{}, err
	}
	if over {
		return Snapshot{}, ErrReversalExceedsPaid
	}

	next := s.clone()
	if next.Paid, err = next.Paid.Sub(amount); err != nil {
		return Snapshot{}, err
	}
	if next.Remaining, err = next.Remaining.Add(amount); err != nil {
		return Snapshot{}, err
	}
	next.recomputeStatus(time.Time{})
	return next, nil
}

// SetInitialPayment seeds a down payment at creation time. It may be used
// exactly once, before any other payment.
func (s Snapshot) SetInitialPayment(amount money.Money, at time.Time) (Snapshot, error) {
	if !s.Paid.IsZero() {
		return Snapshot{}, ErrAlreadySeeded
	}
	over, err := amount.GreaterThan(s.Total)
	if err != nil {
		return Snapshot{}, err
	}
	if over {
		return Snapshot{}, ErrPaymentExceedsBalance
	}
	return s.RecordPayment(amount, at)
}

// Cancel moves the invoice to its terminal state. Cancellation never deletes:
// the record survives with CANCELLED status.
func (s Snapshot) Cancel() (Snapshot, error) {
	if s.Status == StatusCancelled {
		return Snapshot{}, ErrInvoiceCancelled
	}
	next := s.clone()
	next.Status = StatusCancelled
	return next, nil
}

// recomputeStatus derives the status from paid/remaining. The at argument is
// consulted only when the invoice transitions into PAID for the first time.
func (s *Snapshot) recomputeStatus(at time.Time) {
	switch {
	case !s.Total.IsZero() && s.Remaining.IsZero():
		s.Status = StatusPaid
		if s.PaidAt == nil {
			if at.IsZero() {
				at = time.Now()
			}
			s.PaidAt = &at
		}
	case !s.Paid.IsZero():
		s.Status = StatusPartiallyPaid
		s.PaidAt = nil
	default:
		s.Status = StatusPending
		s.PaidAt = nil
	}
}
