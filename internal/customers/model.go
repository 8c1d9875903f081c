// Package customers holds customer masterdata and the per-customer balance
// ledger. Balance mutations are pure functions on the Customer value; they are
// persisted only through the invoicing payment workflow so the ledger stays in
// lockstep with invoice payment state.
package customers

import (
	"errors"
	"time"

	"github.com/vetro-erp/vetro-erp/internal/money"
)

// CustomerType determines whether a customer may carry an outstanding balance.
type CustomerType string

const (
	// TypeCash customers settle every invoice at creation and never carry debt.
	TypeCash CustomerType = "cash"
	// TypeCredit customers accumulate a running balance of unpaid invoices.
	TypeCredit CustomerType = "credit"
)

var (
	ErrNotFound      = errors.New("customers: not found")
	ErrAlreadyExists = errors.New("customers: code already exists")
	// ErrCashCustomerBalance indicates an attempt to put debt on a cash customer.
	ErrCashCustomerBalance = errors.New("customers: cash customer cannot carry a balance")
	// ErrInsufficientBalance indicates a subtraction larger than the current balance.
	ErrInsufficientBalance = errors.New("customers: amount exceeds current balance")
)

// Customer is a customer record with its running balance of unpaid debt.
type Customer struct {
	ID        int64        `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Type      CustomerType `json:"type"`
	Phone     *string      `json:"phone,omitempty"`
	Email     *string      `json:"email,omitempty"`
	Balance   money.Money  `json:"-"`
	IsActive  bool         `json:"is_active"`
	Notes     *string      `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AddToBalance returns a copy with the amount added to the outstanding
// balance. Cash customers may never gain a balance, regardless of amount.
func (c Customer) AddToBalance(amount money.Money) (Customer, error) {
	if c.Type == TypeCash && !amount.IsZero() {
		return Customer{}, ErrCashCustomerBalance
	}
	balance, err := c.Balance.Add(amount)
	if err != nil {
		return Customer{}, err
	}
	c.Balance = balance
	return c, nil
}

// SubtractFromBalance returns a copy with the amount removed from the
// outstanding balance, failing when the amount exceeds it.
func (c Customer) SubtractFromBalance(amount money.Money) (Customer, error) {
	balance, err := c.Balance.Sub(amount)
	if err != nil {
		if errors.Is(err, money.ErrNegativeAmount) {
			return Customer{}, ErrInsufficientBalance
		}
		return Customer{}, err
	}
	c.Balance = balance
	return c, nil
}
