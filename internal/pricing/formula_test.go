package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCutLengthCatalog(t *testing.T) {
	w := decimal.NewFromInt(1)
	h := decimal.NewFromInt(2)

	cases := []struct {
		formula Formula
		want    string
	}{
		{FormulaPlainBorder, "6"},      // 2*(1+2)
		{FormulaOneHeadFrame, "8"},     // 6 + 1*2
		{FormulaTwoHeadFrame, "10"},    // 8 + 1*2
		{FormulaOneSideFrame, "8"},     // 6 + 1*2
		{FormulaTwoSideFrame, "10"},    // 8 + 1*2
		{FormulaHeadSideFrame, "9"},    // 3*(1+2)
		{FormulaTwoHeadOneSide, "14"},  // 12 + 1*2
		{FormulaTwoSideOneHead, "14"},  // 12 + 1*2
		{FormulaFullFrame, "12"},       // 4*(1+2)
	}
	for _, tc := range cases {
		got, err := tc.formula.CutLength(w, h, decimal.Zero)
		require.NoError(t, err, string(tc.formula))
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s: got %s want %s", tc.formula, got, tc.want)
	}
}

func TestOneHeadFrameSquareMeter(t *testing.T) {
	one := decimal.NewFromInt(1)
	got, err := FormulaOneHeadFrame.CutLength(one, one, decimal.Zero)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestWheelCut(t *testing.T) {
	got, err := FormulaWheelCut.CutLength(decimal.Zero, decimal.Zero, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(3)))
}

func TestWheelCutRequiresDiameter(t *testing.T) {
	_, err := FormulaWheelCut.CutLength(decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
	require.ErrorIs(t, err, ErrDiameterRequired)
}

func TestParseFormulaRejectsUnknown(t *testing.T) {
	_, err := ParseFormula("pentagon_cut")
	require.Error(t, err)
}
