package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNegative(t *testing.T) {
	_, err := New(decimal.NewFromFloat(-0.01), "USD")
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNewRequiresCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(1), "")
	require.ErrorIs(t, err, ErrMissingCurrency)
}

func TestNewRoundsHalfUp(t *testing.T) {
	m, err := NewFromString("1.005", "USD")
	require.NoError(t, err)
	require.Equal(t, "1.01", m.StringFixed())
}

func TestSubNeverNegative(t *testing.T) {
	a := MustNew("10.00", "USD")
	b := MustNew("10.01", "USD")

	_, err := a.Sub(b)
	require.ErrorIs(t, err, ErrNegativeAmount)

	got, err := b.Sub(a)
	require.NoError(t, err)
	require.Equal(t, "0.01", got.StringFixed())
}

func TestCurrencyMismatch(t *testing.T) {
	usd := MustNew("1.00", "USD")
	eur := MustNew("1.00", "EUR")

	_, err := usd.Add(eur)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Cmp(eur)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMulRejectsNegativeFactor(t *testing.T) {
	m := MustNew("5.00", "USD")
	_, err := m.Mul(decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrInvalidFactor)
}

func TestDivGuards(t *testing.T) {
	m := MustNew("10.00", "USD")

	_, err := m.Div(decimal.Zero)
	require.ErrorIs(t, err, ErrDivisionByZero)

	got, err := m.Div(decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Equal(t, "3.33", got.StringFixed())
}

// Summation order must not change the result because every operation rounds at
// the fixed scale immediately.
func TestSumOrderIndependent(t *testing.T) {
	values := []Money{
		MustNew("0.10", "USD"),
		MustNew("33.33", "USD"),
		MustNew("0.07", "USD"),
		MustNew("199.99", "USD"),
		MustNew("0.01", "USD"),
	}

	forward, err := Sum("USD", values...)
	require.NoError(t, err)

	reversed := make([]Money, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		reversed = append(reversed, values[i])
	}
	backward, err := Sum("USD", reversed...)
	require.NoError(t, err)

	require.True(t, forward.Equal(backward))
	require.Equal(t, "233.50", forward.StringFixed())
}

func TestMulIntScalesQuantity(t *testing.T) {
	m := MustNew("130.00", "USD")
	got, err := m.MulInt(3)
	require.NoError(t, err)
	require.Equal(t, "390.00", got.StringFixed())
}

func TestZeroIsZero(t *testing.T) {
	require.True(t, Zero("USD").IsZero())
}

func TestZeroWithWrongCurrencyFailsOnArithmetic(t *testing.T) {
	_, err := Zero("").Add(MustNew("1.00", "USD"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = MustNew("1.00", "USD").Add(Zero("EUR"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}
