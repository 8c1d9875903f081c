package invoicing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

func testLine(t *testing.T, total string) Line {
	t.Helper()
	return Line{
		GlassID:    1,
		GlassCode:  "CLR-5",
		Dimensions: geometry.MustDimensions("1", "1", geometry.UnitMeter),
		Quantity:   1,
		Breakdown: pricing.LineBreakdown{
			Material:  money.MustNew(total, "USD"),
			UnitTotal: money.MustNew(total, "USD"),
			Quantity:  1,
			Total:     money.MustNew(total, "USD"),
		},
	}
}

func pendingInvoice(t *testing.T, total string) Snapshot {
	t.Helper()
	snap := NewSnapshot(7, "USD", time.Now(), "")
	snap, err := snap.AddLine(testLine(t, total))
	require.NoError(t, err)
	return snap
}

func TestPaymentLifecycle(t *testing.T) {
	snap := pendingInvoice(t, "1000.00")
	require.Equal(t, StatusPending, snap.Status)
	require.Equal(t, "1000.00", snap.Remaining.StringFixed())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	snap, err := snap.RecordPayment(money.MustNew("400.00", "USD"), at)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, snap.Status)
	require.Equal(t, "600.00", snap.Remaining.StringFixed())
	require.Nil(t, snap.PaidAt)

	snap, err = snap.RecordPayment(money.MustNew("600.00", "USD"), at.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, StatusPaid, snap.Status)
	require.True(t, snap.Remaining.IsZero())
	require.NotNil(t, snap.PaidAt)
	require.Equal(t, at.Add(time.Hour), *snap.PaidAt)

	// reversing everything walks the status back down and clears the date
	snap, err = snap.ReversePayment(money.MustNew("1000.00", "USD"))
	require.NoError(t, err)
	require.Equal(t, StatusPending, snap.Status)
	require.Equal(t, "1000.00", snap.Remaining.StringFixed())
	require.Nil(t, snap.PaidAt)
}

func TestOverpaymentRejectedWithoutChanges(t *testing.T) {
	snap := pendingInvoice(t, "1000.00")
	snap, err := snap.RecordPayment(money.MustNew("400.00", "USD"), time.Now())
	require.NoError(t, err)

	_, err = snap.RecordPayment(money.MustNew("600.01", "USD"), time.Now())
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)
	require.Equal(t, StatusPartiallyPaid, snap.Status)
	require.Equal(t, "600.00", snap.Remaining.StringFixed())
	require.Equal(t, "400.00", snap.Paid.StringFixed())
}

func TestZeroPaymentIsNoop(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	got, err := snap.RecordPayment(money.Zero("USD"), time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, "100.00", got.Remaining.StringFixed())
}

func TestPaidAtSetOnce(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	first := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	snap, err := snap.RecordPayment(money.MustNew("100.00", "USD"), first)
	require.NoError(t, err)
	require.Equal(t, first, *snap.PaidAt)

	snap, err = snap.ReversePayment(money.MustNew("50.00", "USD"))
	require.NoError(t, err)
	require.Nil(t, snap.PaidAt)

	second := first.Add(48 * time.Hour)
	snap, err = snap.RecordPayment(money.MustNew("50.00", "USD"), second)
	require.NoError(t, err)
	require.Equal(t, second, *snap.PaidAt)
}

func TestAddLineRejectedWhenClosed(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	paid, err := snap.RecordPayment(money.MustNew("100.00", "USD"), time.Now())
	require.NoError(t, err)
	_, err = paid.AddLine(testLine(t, "10.00"))
	require.ErrorIs(t, err, ErrInvoiceClosed)

	cancelled, err := snap.Cancel()
	require.NoError(t, err)
	_, err = cancelled.AddLine(testLine(t, "10.00"))
	require.ErrorIs(t, err, ErrInvoiceClosed)
}

func TestAddLineGrowsRemainingOnPartiallyPaid(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	snap, err := snap.RecordPayment(money.MustNew("40.00", "USD"), time.Now())
	require.NoError(t, err)

	snap, err = snap.AddLine(testLine(t, "50.00"))
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, snap.Status)
	require.Equal(t, "150.00", snap.Total.StringFixed())
	require.Equal(t, "110.00", snap.Remaining.StringFixed())
}

func TestInitialPayment(t *testing.T) {
	snap := pendingInvoice(t, "500.00")
	snap, err := snap.SetInitialPayment(money.MustNew("200.00", "USD"), time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, snap.Status)

	_, err = snap.SetInitialPayment(money.MustNew("10.00", "USD"), time.Now())
	require.ErrorIs(t, err, ErrAlreadySeeded)

	fresh := pendingInvoice(t, "500.00")
	_, err = fresh.SetInitialPayment(money.MustNew("500.01", "USD"), time.Now())
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)
}

func TestCancelIsTerminal(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	snap, err := snap.Cancel()
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, snap.Status)

	_, err = snap.Cancel()
	require.ErrorIs(t, err, ErrInvoiceCancelled)
	_, err = snap.RecordPayment(money.MustNew("10.00", "USD"), time.Now())
	require.ErrorIs(t, err, ErrInvoiceCancelled)
	_, err = snap.ReversePayment(money.MustNew("10.00", "USD"))
	require.ErrorIs(t, err, ErrInvoiceCancelled)
}

func TestReversalExceedingPaidRejected(t *testing.T) {
	snap := pendingInvoice(t, "100.00")
	snap, err := snap.RecordPayment(money.MustNew("30.00", "USD"), time.Now())
	require.NoError(t, err)
	_, err = snap.ReversePayment(money.MustNew("30.01", "USD"))
	require.ErrorIs(t, err, ErrReversalExceedsPaid)
}
