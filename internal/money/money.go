// Package money provides the exact-decimal currency value type used by all
// pricing and payment code. Amounts are non-negative by construction and every
// operation that produces a value rounds half-up at two decimal places, so sums
// are reproducible regardless of evaluation order.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the fixed number of decimal places carried by Money.
const Scale = 2

var (
	// ErrNegativeAmount indicates an operation that would produce a negative amount.
	ErrNegativeAmount = errors.New("money: amount cannot be negative")
	// ErrCurrencyMismatch indicates arithmetic between different currencies.
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	// ErrInvalidFactor indicates a negative multiplier or divisor.
	ErrInvalidFactor = errors.New("money: factor cannot be negative")
	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("money: division by zero")
	// ErrMissingCurrency indicates an empty currency code.
	ErrMissingCurrency = errors.New("money: currency is required")
)

// Money is an immutable fixed-point decimal amount in a single currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New builds Money from a decimal amount, rounding half-up at Scale.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		return Money{}, ErrMissingCurrency
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount.Round(Scale), currency: currency}, nil
}

// NewFromString parses a decimal string into Money.
func NewFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse amount %q: %w", amount, err)
	}
	return New(d, currency)
}

// MustNew builds Money and panics on error. Intended for tests and constants.
func MustNew(amount, currency string) Money {
	m, err := NewFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount in the given currency. The code is taken on
// trust: callers pass the configured currency. A Zero built with a wrong or
// empty code fails with ErrCurrencyMismatch on first arithmetic against a
// real amount.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the underlying decimal value.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount).Round(Scale), currency: m.currency}, nil
}

// Sub returns m - other, failing if the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: result.Round(Scale), currency: m.currency}, nil
}

// Mul returns m scaled by a non-negative decimal factor.
func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, ErrInvalidFactor
	}
	return Money{amount: m.amount.Mul(factor).Round(Scale), currency: m.currency}, nil
}

// MulInt returns m scaled by a non-negative integer factor.
func (m Money) MulInt(factor int64) (Money, error) {
	return m.Mul(decimal.NewFromInt(factor))
}

// Div returns m divided by a positive decimal divisor.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	if divisor.IsNegative() {
		return Money{}, ErrInvalidFactor
	}
	return Money{amount: m.amount.DivRound(divisor, Scale), currency: m.currency}, nil
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, 1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan reports m > other, ignoring the error path for same-currency callers.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// StringFixed renders the amount with exactly Scale decimal places.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(Scale)
}

func (m Money) String() string {
	return m.StringFixed() + " " + m.currency
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

// Sum adds a series of amounts starting from zero in the given currency.
func Sum(currency string, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
