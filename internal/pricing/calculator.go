package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
)

// Mode selects one of the mutually exclusive pricing strategies.
type Mode string

const (
	// ModeFormula prices by cut length from a named formula times a tiered rate.
	ModeFormula Mode = "formula"
	// ModeArea prices by surface area times a tiered rate.
	ModeArea Mode = "area"
	// ModeManual prices by an operator-supplied fixed amount.
	ModeManual Mode = "manual"
)

// ValidationError reports a missing or invalid input, naming the field and the
// operation category so the message can be surfaced to the operator verbatim.
type ValidationError struct {
	Field    string
	Category Category
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pricing: %s %s for category %s", e.Field, e.Reason, e.Category)
}

// OperationRequest describes one operation to price. Exactly one mode's inputs
// must be present; the calculator rejects anything else.
type OperationRequest struct {
	Category  Category
	Mode      Mode
	Formula   Formula         // formula mode
	Thickness decimal.Decimal // formula and area modes, millimeters
	Diameter  decimal.Decimal // formulas that require it, meters
	Manual    *money.Money    // manual mode
}

// PricedOperation is the result of pricing one operation. The resolved tier is
// retained so a later recalculation after a dimension change reuses the same
// rate without a fresh lookup.
type PricedOperation struct {
	Category    Category
	Mode        Mode
	Formula     Formula
	Thickness   decimal.Decimal
	Diameter    decimal.Decimal
	Length      decimal.Decimal // meters, formula mode
	Area        geometry.Area   // area mode
	Tier        *RateTier       // nil for manual operations
	Price       money.Money
	Description string
}

// PriceOperation prices a single operation request against the line's geometry
// using the supplied rate table. The match on Mode is exhaustive: an unknown
// mode is an error, never a silent default.
func PriceOperation(req OperationRequest, dims geometry.Dimensions, table RateTable) (PricedOperation, error) {
	switch req.Mode {
	case ModeManual:
		return priceManual(req)
	case ModeArea:
		return priceArea(req, dims, table)
	case ModeFormula:
		return priceFormula(req, dims, table)
	}
	return PricedOperation{}, &ValidationError{Field: "mode", Category: req.Category, Reason: fmt.Sprintf("unknown (%q)", req.Mode)}
}

func priceManual(req OperationRequest) (PricedOperation, error) {
	if req.Manual == nil {
		return PricedOperation{}, &ValidationError{Field: "manual price", Category: req.Category, Reason: "required"}
	}
	return PricedOperation{
		Category:    req.Category,
		Mode:        ModeManual,
		Price:       *req.Manual,
		Description: fmt.Sprintf("%s (manual)", req.Category),
	}, nil
}

func priceArea(req OperationRequest, dims geometry.Dimensions, table RateTable) (PricedOperation, error) {
	if !req.Thickness.IsPositive() {
		return PricedOperation{}, &ValidationError{Field: "thickness", Category: req.Category, Reason: "required"}
	}
	tier, err := table.Lookup(req.Thickness)
	if err != nil {
		return PricedOperation{}, err
	}
	area := dims.Area()
	price, err := tier.Rate.Mul(area.Value())
	if err != nil {
		return PricedOperation{}, err
	}
	return PricedOperation{
		Category:    req.Category,
		Mode:        ModeArea,
		Thickness:   req.Thickness,
		Area:        area,
		Tier:        &tier,
		Price:       price,
		Description: fmt.Sprintf("%s: %s m2 @ %s", req.Category, area.StringFixed(), tier.Rate),
	}, nil
}

func priceFormula(req OperationRequest, dims geometry.Dimensions, table RateTable) (PricedOperation, error) {
	formula, err := ParseFormula(string(req.Formula))
	if err != nil {
		return PricedOperation{}, &ValidationError{Field: "formula", Category: req.Category, Reason: fmt.Sprintf("unknown (%q)", req.Formula)}
	}
	if !req.Thickness.IsPositive() {
		return PricedOperation{}, &ValidationError{Field: "thickness", Category: req.Category, Reason: "required"}
	}
	if formula.RequiresDiameter() && !req.Diameter.IsPositive() {
		return PricedOperation{}, &ValidationError{Field: "diameter", Category: req.Category, Reason: fmt.Sprintf("required for formula %s", formula)}
	}
	length, err := formula.CutLength(dims.WidthMeters(), dims.HeightMeters(), req.Diameter)
	if err != nil {
		return PricedOperation{}, err
	}
	tier, err := table.Lookup(req.Thickness)
	if err != nil {
		return PricedOperation{}, err
	}
	price, err := tier.Rate.Mul(length)
	if err != nil {
		return PricedOperation{}, err
	}
	return PricedOperation{
		Category:    req.Category,
		Mode:        ModeFormula,
		Formula:     formula,
		Thickness:   req.Thickness,
		Diameter:    req.Diameter,
		Length:      length,
		Tier:        &tier,
		Price:       price,
		Description: fmt.Sprintf("%s: %s, %s m @ %s", req.Category, formula, length, tier.Rate),
	}, nil
}

// Recalculate reprices a formula- or area-based operation against new geometry
// using the tier resolved at original pricing time. The rate is deliberately
// not re-looked-up: thickness has not changed, only dimensions. Manual
// operations are returned untouched.
func Recalculate(op PricedOperation, dims geometry.Dimensions) (PricedOperation, error) {
	switch op.Mode {
	case ModeManual:
		return op, nil
	case ModeArea:
		if op.Tier == nil {
			return PricedOperation{}, fmt.Errorf("pricing: operation %s has no retained rate tier", op.Category)
		}
		area := dims.Area()
		price, err := op.Tier.Rate.Mul(area.Value())
		if err != nil {
			return PricedOperation{}, err
		}
		op.Area = area
		op.Price = price
		op.Description = fmt.Sprintf("%s: %s m2 @ %s", op.Category, area.StringFixed(), op.Tier.Rate)
		return op, nil
	case ModeFormula:
		if op.Tier == nil {
			return PricedOperation{}, fmt.Errorf("pricing: operation %s has no retained rate tier", op.Category)
		}
		length, err := op.Formula.CutLength(dims.WidthMeters(), dims.HeightMeters(), op.Diameter)
		if err != nil {
			return PricedOperation{}, err
		}
		price, err := op.Tier.Rate.Mul(length)
		if err != nil {
			return PricedOperation{}, err
		}
		op.Length = length
		op.Price = price
		op.Description = fmt.Sprintf("%s: %s, %s m @ %s", op.Category, op.Formula, length, op.Tier.Rate)
		return op, nil
	}
	return PricedOperation{}, fmt.Errorf("pricing: unknown mode %q", op.Mode)
}
