package customers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/money"
)

func creditCustomer(balance string) Customer {
	return Customer{ID: 1, Code: "C-001", Name: "Harbor Glazing", Type: TypeCredit, Balance: money.MustNew(balance, "USD")}
}

func cashCustomer() Customer {
	return Customer{ID: 2, Code: "C-002", Name: "Walk-in", Type: TypeCash, Balance: money.Zero("USD")}
}

func TestAddToBalanceCredit(t *testing.T) {
	c := creditCustomer("100.00")
	got, err := c.AddToBalance(money.MustNew("250.00", "USD"))
	require.NoError(t, err)
	require.Equal(t, "350.00", got.Balance.StringFixed())
	// original untouched
	require.Equal(t, "100.00", c.Balance.StringFixed())
}

func TestAddToBalanceCashAlwaysFails(t *testing.T) {
	c := cashCustomer()
	for _, amount := range []string{"0.01", "1.00", "99999.99"} {
		_, err := c.AddToBalance(money.MustNew(amount, "USD"))
		require.ErrorIs(t, err, ErrCashCustomerBalance, amount)
	}
}

func TestAddZeroToCashIsNoop(t *testing.T) {
	c := cashCustomer()
	got, err := c.AddToBalance(money.Zero("USD"))
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())
}

func TestSubtractFromBalance(t *testing.T) {
	c := creditCustomer("100.00")
	got, err := c.SubtractFromBalance(money.MustNew("40.00", "USD"))
	require.NoError(t, err)
	require.Equal(t, "60.00", got.Balance.StringFixed())
}

func TestSubtractExceedingBalanceFails(t *testing.T) {
	c := creditCustomer("100.00")
	_, err := c.SubtractFromBalance(money.MustNew("100.01", "USD"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	// state unchanged on failure
	require.Equal(t, "100.00", c.Balance.StringFixed())
}
