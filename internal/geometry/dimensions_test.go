package geometry

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	for _, s := range []string{"mm", "cm", "m"} {
		u, err := ParseUnit(s)
		require.NoError(t, err)
		require.Equal(t, Unit(s), u)
	}
	_, err := ParseUnit("in")
	require.Error(t, err)
}

func TestNewDimensionsRejectsNonPositive(t *testing.T) {
	_, err := NewDimensions(decimal.Zero, decimal.NewFromInt(1), UnitMeter)
	require.ErrorIs(t, err, ErrNonPositiveDimension)

	_, err = NewDimensions(decimal.NewFromInt(1), decimal.NewFromInt(-2), UnitCentimeter)
	require.ErrorIs(t, err, ErrNonPositiveDimension)
}

func TestUnitRoundTrip(t *testing.T) {
	cases := []struct {
		width, height string
		unit          Unit
	}{
		{"500", "750", UnitMillimeter},
		{"50", "75", UnitCentimeter},
		{"0.5", "0.75", UnitMeter},
		{"1234", "987", UnitMillimeter},
	}
	for _, tc := range cases {
		d := MustDimensions(tc.width, tc.height, tc.unit)
		back := d.ToMeters().ToMillimeters()
		require.True(t, back.Width().Equal(d.ToMillimeters().Width()), "width for %s", d)
		require.True(t, back.Height().Equal(d.ToMillimeters().Height()), "height for %s", d)
	}
}

func TestAreaNormalisesUnits(t *testing.T) {
	// 1000mm x 2000mm == 1m x 2m == 2 m2
	mm := MustDimensions("1000", "2000", UnitMillimeter)
	m := MustDimensions("1", "2", UnitMeter)

	require.Equal(t, "2.0000", mm.Area().StringFixed())
	require.Equal(t, "2.0000", m.Area().StringFixed())
}

func TestPerimeterInMeters(t *testing.T) {
	d := MustDimensions("100", "200", UnitCentimeter)
	require.True(t, d.Perimeter().Equal(decimal.NewFromInt(6)))
}

func TestAreaSubNeverNegative(t *testing.T) {
	small := MustArea("1.5")
	big := MustArea("2.25")

	_, err := small.Sub(big)
	require.ErrorIs(t, err, ErrNegativeArea)

	got, err := big.Sub(small)
	require.NoError(t, err)
	require.Equal(t, "0.7500", got.StringFixed())
}

func TestNewAreaRoundsAtScale(t *testing.T) {
	a, err := NewArea(decimal.RequireFromString("0.00005"))
	require.NoError(t, err)
	require.Equal(t, "0.0001", a.StringFixed())
}
