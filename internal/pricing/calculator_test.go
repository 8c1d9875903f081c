package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
)

func polishTable(t *testing.T) RateTable {
	t.Helper()
	table, err := NewRateTable("polish", []RateTier{
		{ID: 1, MinThickness: mm("2"), MaxThickness: mm("6"), Rate: money.MustNew("5.00", "USD"), Active: true},
		{ID: 2, MinThickness: mm("6.01"), MaxThickness: mm("12"), Rate: money.MustNew("9.00", "USD"), Active: true},
	})
	require.NoError(t, err)
	return table
}

func TestPriceManualOperation(t *testing.T) {
	price := money.MustNew("30.00", "USD")
	op, err := PriceOperation(OperationRequest{
		Category: "drill",
		Mode:     ModeManual,
		Manual:   &price,
	}, geometry.MustDimensions("1", "2", geometry.UnitMeter), RateTable{})
	require.NoError(t, err)
	require.Equal(t, ModeManual, op.Mode)
	require.Nil(t, op.Tier)
	require.True(t, op.Price.Equal(price))
}

func TestPriceManualRequiresPrice(t *testing.T) {
	_, err := PriceOperation(OperationRequest{
		Category: "drill",
		Mode:     ModeManual,
	}, geometry.MustDimensions("1", "2", geometry.UnitMeter), RateTable{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "manual price", verr.Field)
	require.Equal(t, Category("drill"), verr.Category)
}

func TestPriceAreaOperation(t *testing.T) {
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	op, err := PriceOperation(OperationRequest{
		Category:  "sandblast",
		Mode:      ModeArea,
		Thickness: mm("4"),
	}, dims, polishTable(t))
	require.NoError(t, err)
	require.Equal(t, ModeArea, op.Mode)
	require.NotNil(t, op.Tier)
	// 2 m2 * 5.00
	require.Equal(t, "10.00", op.Price.StringFixed())
}

func TestPriceAreaRequiresThickness(t *testing.T) {
	_, err := PriceOperation(OperationRequest{
		Category: "sandblast",
		Mode:     ModeArea,
	}, geometry.MustDimensions("1", "2", geometry.UnitMeter), polishTable(t))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "thickness", verr.Field)
}

func TestPriceFormulaOperation(t *testing.T) {
	// plain border on 1x2m: length 6m, tier rate 5.00 -> 30.00
	dims := geometry.MustDimensions("1000", "2000", geometry.UnitMillimeter)
	op, err := PriceOperation(OperationRequest{
		Category:  "polish",
		Mode:      ModeFormula,
		Formula:   FormulaPlainBorder,
		Thickness: mm("4"),
	}, dims, polishTable(t))
	require.NoError(t, err)
	require.True(t, op.Length.Equal(decimal.NewFromInt(6)))
	require.Equal(t, "30.00", op.Price.StringFixed())
}

func TestPriceFormulaDiameterRequired(t *testing.T) {
	_, err := PriceOperation(OperationRequest{
		Category:  "wheel",
		Mode:      ModeFormula,
		Formula:   FormulaWheelCut,
		Thickness: mm("4"),
	}, geometry.MustDimensions("1", "1", geometry.UnitMeter), polishTable(t))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "diameter", verr.Field)
	require.Contains(t, verr.Error(), "wheel_cut")
}

func TestPriceFormulaUnknownFormula(t *testing.T) {
	_, err := PriceOperation(OperationRequest{
		Category:  "polish",
		Mode:      ModeFormula,
		Formula:   "zigzag",
		Thickness: mm("4"),
	}, geometry.MustDimensions("1", "1", geometry.UnitMeter), polishTable(t))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "formula", verr.Field)
}

func TestPriceFormulaLookupMiss(t *testing.T) {
	_, err := PriceOperation(OperationRequest{
		Category:  "polish",
		Mode:      ModeFormula,
		Formula:   FormulaPlainBorder,
		Thickness: mm("30"),
	}, geometry.MustDimensions("1", "1", geometry.UnitMeter), polishTable(t))
	require.ErrorIs(t, err, ErrNoRateForThickness)
}

func TestRecalculateReusesTier(t *testing.T) {
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	op, err := PriceOperation(OperationRequest{
		Category:  "polish",
		Mode:      ModeFormula,
		Formula:   FormulaPlainBorder,
		Thickness: mm("4"),
	}, dims, polishTable(t))
	require.NoError(t, err)

	// New geometry, same thickness: the retained tier must be reused even
	// though no table is supplied at all.
	bigger := geometry.MustDimensions("2", "3", geometry.UnitMeter)
	got, err := Recalculate(op, bigger)
	require.NoError(t, err)
	require.True(t, got.Length.Equal(decimal.NewFromInt(10)))
	require.Equal(t, "50.00", got.Price.StringFixed())
	require.Equal(t, op.Tier.ID, got.Tier.ID)
}

func TestRecalculateLeavesManualUntouched(t *testing.T) {
	price := money.MustNew("30.00", "USD")
	op, err := PriceOperation(OperationRequest{
		Category: "drill",
		Mode:     ModeManual,
		Manual:   &price,
	}, geometry.MustDimensions("1", "2", geometry.UnitMeter), RateTable{})
	require.NoError(t, err)

	got, err := Recalculate(op, geometry.MustDimensions("5", "5", geometry.UnitMeter))
	require.NoError(t, err)
	require.True(t, got.Price.Equal(price))
}

func TestRecalculateAreaMode(t *testing.T) {
	dims := geometry.MustDimensions("1", "2", geometry.UnitMeter)
	op, err := PriceOperation(OperationRequest{
		Category:  "sandblast",
		Mode:      ModeArea,
		Thickness: mm("4"),
	}, dims, polishTable(t))
	require.NoError(t, err)

	got, err := Recalculate(op, geometry.MustDimensions("2", "2", geometry.UnitMeter))
	require.NoError(t, err)
	require.Equal(t, "20.00", got.Price.StringFixed())
}
