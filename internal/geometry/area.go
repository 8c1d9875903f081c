package geometry

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AreaScale is the fixed number of decimal places carried by Area.
const AreaScale = 4

// ErrNegativeArea indicates an operation that would produce a negative area.
var ErrNegativeArea = errors.New("geometry: area cannot be negative")

// Area is an immutable fixed-point surface measure in square meters. It follows
// the same arithmetic discipline as money.Money: non-negative by construction
// and rounded half-up at AreaScale on every producing operation.
type Area struct {
	value decimal.Decimal
}

// NewArea builds an Area from a decimal value in square meters.
func NewArea(value decimal.Decimal) (Area, error) {
	if value.IsNegative() {
		return Area{}, ErrNegativeArea
	}
	return Area{value: value.Round(AreaScale)}, nil
}

// MustArea builds an Area and panics on error. Intended for tests.
func MustArea(value string) Area {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	a, err := NewArea(d)
	if err != nil {
		panic(err)
	}
	return a
}

// Value returns the underlying decimal in square meters.
func (a Area) Value() decimal.Decimal { return a.value }

// IsZero reports whether the area is zero.
func (a Area) IsZero() bool { return a.value.IsZero() }

// Add returns a + other.
func (a Area) Add(other Area) Area {
	return Area{value: a.value.Add(other.value).Round(AreaScale)}
}

// Sub returns a - other, failing if the result would be negative.
func (a Area) Sub(other Area) (Area, error) {
	result := a.value.Sub(other.value)
	if result.IsNegative() {
		return Area{}, ErrNegativeArea
	}
	return Area{value: result.Round(AreaScale)}, nil
}

// Equal reports value equality.
func (a Area) Equal(other Area) bool { return a.value.Equal(other.value) }

// StringFixed renders the area with exactly AreaScale decimal places.
func (a Area) StringFixed() string { return a.value.StringFixed(AreaScale) }

func (a Area) String() string { return a.StringFixed() + " m2" }
