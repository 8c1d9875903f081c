package pricing

import (
	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
)

// GlassPricing selects how a glass type charges for material.
type GlassPricing string

const (
	// PricingByArea charges area (m2) times the unit price.
	PricingByArea GlassPricing = "area"
	// PricingByLength charges perimeter (m) times the unit price.
	PricingByLength GlassPricing = "length"
)

// LineBreakdown is the full pricing result for one line. The per-operation
// breakdown is always preserved alongside the totals so it can be reproduced
// for display and export.
type LineBreakdown struct {
	Material   money.Money
	Operations []PricedOperation
	UnitTotal  money.Money // material + operations, for quantity 1
	Quantity   int
	Total      money.Money // UnitTotal x Quantity
}

// OperationsTotal sums the operation prices in the breakdown.
func (b LineBreakdown) OperationsTotal() (money.Money, error) {
	total := money.Zero(b.Material.Currency())
	for _, op := range b.Operations {
		var err error
		total, err = total.Add(op.Price)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// PriceLine prices one glass piece: material cost by the glass pricing method
// plus every requested operation, multiplied by quantity. Quantity must be a
// positive integer; the full unit price including operations is scaled by it,
// matching long-standing billing behavior.
func PriceLine(dims geometry.Dimensions, method GlassPricing, unitPrice money.Money, reqs []OperationRequest, tables TableSet, quantity int) (LineBreakdown, error) {
	if quantity <= 0 {
		return LineBreakdown{}, &ValidationError{Field: "quantity", Category: "line", Reason: "must be a positive integer"}
	}

	var material money.Money
	var err error
	switch method {
	case PricingByLength:
		material, err = unitPrice.Mul(dims.Perimeter())
	default:
		material, err = unitPrice.Mul(dims.Area().Value())
	}
	if err != nil {
		return LineBreakdown{}, err
	}

	unitTotal := material
	ops := make([]PricedOperation, 0, len(reqs))
	for _, req := range reqs {
		var table RateTable
		if req.Mode != ModeManual {
			table, err = tables.Table(req.Category)
			if err != nil {
				return LineBreakdown{}, err
			}
		}
		priced, err := PriceOperation(req, dims, table)
		if err != nil {
			return LineBreakdown{}, err
		}
		ops = append(ops, priced)
		unitTotal, err = unitTotal.Add(priced.Price)
		if err != nil {
			return LineBreakdown{}, err
		}
	}

	total, err := unitTotal.MulInt(int64(quantity))
	if err != nil {
		return LineBreakdown{}, err
	}

	return LineBreakdown{
		Material:   material,
		Operations: ops,
		UnitTotal:  unitTotal,
		Quantity:   quantity,
		Total:      total,
	}, nil
}
