// Package pricing implements the cost engine for cutting and finishing
// operations: the geometric formula catalog, thickness-tiered rate lookup, the
// per-operation calculator, and per-line aggregation.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Formula names a geometric cut-length formula. Lengths are in meters; the
// width and height inputs must already be converted to meters.
type Formula string

const (
	FormulaPlainBorder    Formula = "plain_border"
	FormulaOneHeadFrame   Formula = "one_head_frame"
	FormulaTwoHeadFrame   Formula = "two_head_frame"
	FormulaOneSideFrame   Formula = "one_side_frame"
	FormulaTwoSideFrame   Formula = "two_side_frame"
	FormulaHeadSideFrame  Formula = "head_side_frame"
	FormulaTwoHeadOneSide Formula = "two_head_one_side"
	FormulaTwoSideOneHead Formula = "two_side_one_head"
	FormulaFullFrame      Formula = "full_frame"
	FormulaWheelCut       Formula = "wheel_cut"
)

// ErrDiameterRequired indicates a formula that needs a positive diameter.
var ErrDiameterRequired = errors.New("pricing: diameter required")

// ParseFormula validates a formula name.
func ParseFormula(s string) (Formula, error) {
	switch Formula(s) {
	case FormulaPlainBorder, FormulaOneHeadFrame, FormulaTwoHeadFrame,
		FormulaOneSideFrame, FormulaTwoSideFrame, FormulaHeadSideFrame,
		FormulaTwoHeadOneSide, FormulaTwoSideOneHead, FormulaFullFrame,
		FormulaWheelCut:
		return Formula(s), nil
	}
	return "", fmt.Errorf("pricing: unknown formula %q", s)
}

// RequiresDiameter reports whether the formula takes a diameter input.
func (f Formula) RequiresDiameter() bool {
	return f == FormulaWheelCut
}

// CutLength evaluates the formula for the given geometry. Width and height are
// in meters; diameter is only consulted for formulas that require it.
func (f Formula) CutLength(widthM, heightM, diameter decimal.Decimal) (decimal.Decimal, error) {
	two := decimal.NewFromInt(2)
	three := decimal.NewFromInt(3)
	four := decimal.NewFromInt(4)
	six := decimal.NewFromInt(6)
	eight := decimal.NewFromInt(8)
	twelve := decimal.NewFromInt(12)

	sum := widthM.Add(heightM)
	product := widthM.Mul(heightM)

	switch f {
	case FormulaPlainBorder:
		return two.Mul(sum), nil
	case FormulaOneHeadFrame, FormulaOneSideFrame:
		return six.Add(product), nil
	case FormulaTwoHeadFrame, FormulaTwoSideFrame:
		return eight.Add(product), nil
	case FormulaHeadSideFrame:
		return three.Mul(sum), nil
	case FormulaTwoHeadOneSide, FormulaTwoSideOneHead:
		return twelve.Add(product), nil
	case FormulaFullFrame:
		return four.Mul(sum), nil
	case FormulaWheelCut:
		if !diameter.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("%w for formula %s", ErrDiameterRequired, f)
		}
		return six.Mul(diameter), nil
	}
	return decimal.Decimal{}, fmt.Errorf("pricing: unknown formula %q", f)
}
