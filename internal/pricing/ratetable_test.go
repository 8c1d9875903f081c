package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/money"
)

func mm(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTiers() []RateTier {
	return []RateTier{
		{ID: 1, MinThickness: mm("2"), MaxThickness: mm("6"), Rate: money.MustNew("10.00", "USD"), Active: true},
		{ID: 2, MinThickness: mm("6.01"), MaxThickness: mm("12"), Rate: money.MustNew("18.50", "USD"), Active: true},
		{ID: 3, MinThickness: mm("12.01"), MaxThickness: mm("19"), Rate: money.MustNew("27.00", "USD"), Active: false},
	}
}

func TestLookupDeterministic(t *testing.T) {
	table, err := NewRateTable("polish", testTiers())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tier, err := table.Lookup(mm("4"))
		require.NoError(t, err)
		require.Equal(t, int64(1), tier.ID)
		require.True(t, tier.Rate.Equal(money.MustNew("10.00", "USD")))
	}
}

func TestLookupInclusiveBoundaries(t *testing.T) {
	table, err := NewRateTable("polish", testTiers())
	require.NoError(t, err)

	// Exactly at one tier's max resolves to that tier, not its neighbor.
	tier, err := table.Lookup(mm("6"))
	require.NoError(t, err)
	require.Equal(t, int64(1), tier.ID)

	tier, err = table.Lookup(mm("6.01"))
	require.NoError(t, err)
	require.Equal(t, int64(2), tier.ID)
}

func TestLookupIgnoresInactiveTiers(t *testing.T) {
	table, err := NewRateTable("polish", testTiers())
	require.NoError(t, err)

	_, err = table.Lookup(mm("15"))
	require.ErrorIs(t, err, ErrNoRateForThickness)
}

func TestLookupMissFailsLoudly(t *testing.T) {
	table, err := NewRateTable("polish", testTiers())
	require.NoError(t, err)

	_, err = table.Lookup(mm("25"))
	require.ErrorIs(t, err, ErrNoRateForThickness)
	require.Contains(t, err.Error(), "polish")
}

func TestExplicitFallbackRate(t *testing.T) {
	table, err := NewRateTable("polish", testTiers(), WithFallbackRate(money.MustNew("10.00", "USD")))
	require.NoError(t, err)

	tier, err := table.Lookup(mm("25"))
	require.NoError(t, err)
	require.True(t, tier.Rate.Equal(money.MustNew("10.00", "USD")))
}

func TestOverlappingTiersRejected(t *testing.T) {
	tiers := []RateTier{
		{MinThickness: mm("2"), MaxThickness: mm("6"), Rate: money.MustNew("10.00", "USD"), Active: true},
		{MinThickness: mm("6"), MaxThickness: mm("12"), Rate: money.MustNew("18.50", "USD"), Active: true},
	}
	_, err := NewRateTable("polish", tiers)
	require.ErrorIs(t, err, ErrOverlappingTiers)
}

func TestOverlapWithInactiveTierAllowed(t *testing.T) {
	tiers := []RateTier{
		{MinThickness: mm("2"), MaxThickness: mm("6"), Rate: money.MustNew("10.00", "USD"), Active: true},
		{MinThickness: mm("4"), MaxThickness: mm("12"), Rate: money.MustNew("18.50", "USD"), Active: false},
	}
	_, err := NewRateTable("polish", tiers)
	require.NoError(t, err)
}

func TestInvalidTierRangeRejected(t *testing.T) {
	tiers := []RateTier{
		{MinThickness: mm("8"), MaxThickness: mm("4"), Rate: money.MustNew("10.00", "USD"), Active: true},
	}
	err := CheckTiers(tiers)
	require.ErrorIs(t, err, ErrInvalidTierRange)
}

func TestTableSetUnknownCategory(t *testing.T) {
	set := TableSet{}
	_, err := set.Table("bevel")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bevel")
}
