package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
)

// Scenario from the billing rules: 50.00/m2 glass, 1x2m piece, one manual
// operation of 30.00 -> 130.00 per unit, 390.00 for quantity 3.
func TestPriceLineScenario(t *testing.T) {
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	unitPrice := money.MustNew("50.00", "USD")
	manual := money.MustNew("30.00", "USD")

	reqs := []OperationRequest{
		{Category: "drill", Mode: ModeManual, Manual: &manual},
	}

	breakdown, err := PriceLine(dims, PricingByArea, unitPrice, reqs, TableSet{}, 1)
	require.NoError(t, err)
	require.Equal(t, "100.00", breakdown.Material.StringFixed())
	require.Equal(t, "130.00", breakdown.UnitTotal.StringFixed())
	require.Equal(t, "130.00", breakdown.Total.StringFixed())
	require.Len(t, breakdown.Operations, 1)

	tripled, err := PriceLine(dims, PricingByArea, unitPrice, reqs, TableSet{}, 3)
	require.NoError(t, err)
	require.Equal(t, "130.00", tripled.UnitTotal.StringFixed())
	require.Equal(t, "390.00", tripled.Total.StringFixed())
}

func TestPriceLineLengthPricedGlass(t *testing.T) {
	// 1x2m, perimeter 6m, 4.00 per meter -> 24.00 material.
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	breakdown, err := PriceLine(dims, PricingByLength, money.MustNew("4.00", "USD"), nil, TableSet{}, 1)
	require.NoError(t, err)
	require.Equal(t, "24.00", breakdown.Material.StringFixed())
	require.Equal(t, "24.00", breakdown.Total.StringFixed())
}

func TestPriceLineQuantityValidation(t *testing.T) {
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)

	for _, qty := range []int{0, -1} {
		_, err := PriceLine(dims, PricingByArea, money.MustNew("50.00", "USD"), nil, TableSet{}, qty)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "quantity", verr.Field)
	}
}

func TestPriceLineResolvesTablePerCategory(t *testing.T) {
	table, err := NewRateTable("polish", []RateTier{
		{ID: 1, MinThickness: mm("2"), MaxThickness: mm("6"), Rate: money.MustNew("5.00", "USD"), Active: true},
	})
	require.NoError(t, err)

	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	reqs := []OperationRequest{
		{Category: "polish", Mode: ModeFormula, Formula: FormulaPlainBorder, Thickness: mm("4")},
	}

	breakdown, err := PriceLine(dims, PricingByArea, money.MustNew("50.00", "USD"), reqs, TableSet{"polish": table}, 1)
	require.NoError(t, err)
	// material 100.00 + polish 6m * 5.00 = 130.00
	require.Equal(t, "130.00", breakdown.Total.StringFixed())

	// A category with no table fails before any partial result is produced.
	reqs[0].Category = "bevel"
	_, err = PriceLine(dims, PricingByArea, money.MustNew("50.00", "USD"), reqs, TableSet{"polish": table}, 1)
	require.Error(t, err)
}

func TestBreakdownPreservedForExport(t *testing.T) {
	manual := money.MustNew("12.50", "USD")
	dims := geometry.MustDimensions("1", "1", geometry.UnitMeter)
	breakdown, err := PriceLine(dims, PricingByArea, money.MustNew("20.00", "USD"), []OperationRequest{
		{Category: "drill", Mode: ModeManual, Manual: &manual},
	}, TableSet{}, 2)
	require.NoError(t, err)

	opsTotal, err := breakdown.OperationsTotal()
	require.NoError(t, err)
	require.Equal(t, "12.50", opsTotal.StringFixed())

	recombined, err := breakdown.Material.Add(opsTotal)
	require.NoError(t, err)
	require.True(t, recombined.Equal(breakdown.UnitTotal))
}
