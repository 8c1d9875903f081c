// Package geometry provides the unit-aware dimension and area value types that
// feed the pricing formulas. All derived figures are normalised to meters
// before any multiplication happens.
package geometry

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a declared length unit for glass dimensions.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
	UnitMeter      Unit = "m"
)

// ErrNonPositiveDimension indicates a width or height that is not strictly positive.
var ErrNonPositiveDimension = errors.New("geometry: width and height must be positive")

// ParseUnit validates a unit string.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMillimeter, UnitCentimeter, UnitMeter:
		return Unit(s), nil
	}
	return "", fmt.Errorf("geometry: unknown unit %q", s)
}

// metersFactor returns the multiplier converting this unit to meters. The
// factors are exact powers of ten, so conversions do not lose precision.
func (u Unit) metersFactor() decimal.Decimal {
	switch u {
	case UnitMillimeter:
		return decimal.New(1, -3)
	case UnitCentimeter:
		return decimal.New(1, -2)
	default:
		return decimal.New(1, 0)
	}
}

// Dimensions is an immutable width/height pair with its declared unit.
type Dimensions struct {
	width  decimal.Decimal
	height decimal.Decimal
	unit   Unit
}

// NewDimensions builds Dimensions, rejecting non-positive sides and unknown units.
func NewDimensions(width, height decimal.Decimal, unit Unit) (Dimensions, error) {
	if _, err := ParseUnit(string(unit)); err != nil {
		return Dimensions{}, err
	}
	if !width.IsPositive() || !height.IsPositive() {
		return Dimensions{}, ErrNonPositiveDimension
	}
	return Dimensions{width: width, height: height, unit: unit}, nil
}

// MustDimensions builds Dimensions and panics on error. Intended for tests.
func MustDimensions(width, height string, unit Unit) Dimensions {
	w, err := decimal.NewFromString(width)
	if err != nil {
		panic(err)
	}
	h, err := decimal.NewFromString(height)
	if err != nil {
		panic(err)
	}
	d, err := NewDimensions(w, h, unit)
	if err != nil {
		panic(err)
	}
	return d
}

// Width returns the width in the declared unit.
func (d Dimensions) Width() decimal.Decimal { return d.width }

// Height returns the height in the declared unit.
func (d Dimensions) Height() decimal.Decimal { return d.height }

// Unit returns the declared unit.
func (d Dimensions) Unit() Unit { return d.unit }

// ToMeters converts to meter-denominated Dimensions.
func (d Dimensions) ToMeters() Dimensions {
	f := d.unit.metersFactor()
	return Dimensions{width: d.width.Mul(f), height: d.height.Mul(f), unit: UnitMeter}
}

// ToMillimeters converts to millimeter-denominated Dimensions.
func (d Dimensions) ToMillimeters() Dimensions {
	m := d.ToMeters()
	f := decimal.New(1, 3)
	return Dimensions{width: m.width.Mul(f), height: m.height.Mul(f), unit: UnitMillimeter}
}

// WidthMeters returns the width converted to meters.
func (d Dimensions) WidthMeters() decimal.Decimal { return d.width.Mul(d.unit.metersFactor()) }

// HeightMeters returns the height converted to meters.
func (d Dimensions) HeightMeters() decimal.Decimal { return d.height.Mul(d.unit.metersFactor()) }

// Perimeter returns 2*(w+h) in meters.
func (d Dimensions) Perimeter() decimal.Decimal {
	return d.WidthMeters().Add(d.HeightMeters()).Mul(decimal.NewFromInt(2))
}

// Area returns the surface area in square meters at the fixed Area scale.
func (d Dimensions) Area() Area {
	// Width and height are strictly positive, so the product is never negative.
	a, _ := NewArea(d.WidthMeters().Mul(d.HeightMeters()))
	return a
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%sx%s %s", d.width.String(), d.height.String(), d.unit)
}
