package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cents int64
	}{
		{"whole", "100", 10000},
		{"two places", "12.34", 1234},
		{"rounds half up", "0.005", 1},
		{"rounds extra precision", "10.237", 1024},
		{"truncates down below half", "10.232", 1023},
		{"zero", "0.00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromDecimal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Cents())
		})
	}

	_, err := FromDecimal("not-a-number")
	assert.ErrorIs(t, err, ErrInvalidDecimal)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []int64{0, 1, 99, 100, 12345, -12345} {
		assert.Equal(t, c, FromCents(c).Cents())
	}

	m := MustParse("123.45")
	assert.Equal(t, 123.45, m.Decimal())
	assert.Equal(t, "123.45", m.String())

	assert.Equal(t, int64(1999), FromFloat(19.99).Cents())
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.00")
	b := MustParse("2.50")

	assert.Equal(t, "12.50", a.Add(b).String())
	assert.Equal(t, "7.50", a.Sub(b).String())
	assert.Equal(t, "25.00", a.Mul(2.5).String())

	// Scaling rounds half-up to the cent.
	assert.Equal(t, int64(9500), MustParse("100.00").Mul(0.95).Cents())
	assert.Equal(t, int64(34), MustParse("0.45").Mul(0.75).Cents())

	q, err := a.Div(4)
	require.NoError(t, err)
	assert.Equal(t, "2.50", q.String())

	_, err = a.Div(0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPredicatesAndSign(t *testing.T) {
	pos := MustParse("1.00")
	neg := pos.Neg()

	assert.True(t, pos.IsPositive())
	assert.True(t, neg.IsNegative())
	assert.True(t, Zero.IsZero())
	assert.Equal(t, pos, neg.Abs())

	assert.True(t, pos.GreaterThan(Zero))
	assert.True(t, pos.GTE(pos))
	assert.True(t, neg.LessThan(Zero))
	assert.True(t, neg.LTE(neg))
	assert.True(t, pos.Equals(MustParse("1.00")))

	assert.Equal(t, pos, Max(pos, neg))
}

func TestAmountCurrencyMismatch(t *testing.T) {
	usd := NewAmount(MustParse("5.00"), "USD")
	eur := NewAmount(MustParse("5.00"), "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := usd.Add(NewAmount(MustParse("2.00"), "USD"))
	require.NoError(t, err)
	assert.Equal(t, "7.00 USD", sum.String())
}
