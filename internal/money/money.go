// Package money implements fixed-point monetary values.
//
// All values are held as an integer count of minor units (cents) at a
// fixed two-digit precision. Arithmetic is exact integer arithmetic;
// decimal parsing and scaling round half-up to the nearest cent.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDecimal   = errors.New("invalid decimal amount")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is an immutable monetary value in minor units (cents).
type Money struct {
	cents int64
}

// Zero is the zero value, exported for readability at call sites.
var Zero = Money{}

// FromCents builds a Money from a raw count of minor units.
func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// FromDecimal parses a decimal string ("10.237" -> 10.24).
func FromDecimal(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return fromDec(d), nil
}

// FromFloat converts a float amount, rounding half-up to the cent.
func FromFloat(f float64) Money {
	return fromDec(decimal.NewFromFloat(f))
}

// MustParse is FromDecimal that panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) Money {
	m, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return m
}

func fromDec(d decimal.Decimal) Money {
	// Round is half away from zero, which is half-up for the positive
	// magnitudes the ledger deals in.
	return Money{cents: d.Round(2).Shift(2).IntPart()}
}

// Cents returns the raw count of minor units.
func (m Money) Cents() int64 { return m.cents }

// Decimal renders the value as a two-decimal float.
func (m Money) Decimal() float64 {
	f, _ := decimal.New(m.cents, -2).Float64()
	return f
}

// String renders the value with two decimal places, e.g. "12.50".
func (m Money) String() string {
	return decimal.New(m.cents, -2).StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{cents: m.cents + o.cents} }
func (m Money) Sub(o Money) Money { return Money{cents: m.cents - o.cents} }

// Mul scales the value by a factor, rounding half-up to the cent.
func (m Money) Mul(factor float64) Money {
	return fromDec(decimal.New(m.cents, -2).Mul(decimal.NewFromFloat(factor)))
}

// Div divides the value by a divisor, rounding half-up to the cent.
func (m Money) Div(divisor float64) (Money, error) {
	if divisor == 0 {
		return Money{}, ErrDivisionByZero
	}
	return fromDec(decimal.New(m.cents, -2).Div(decimal.NewFromFloat(divisor))), nil
}

func (m Money) Equals(o Money) bool      { return m.cents == o.cents }
func (m Money) GreaterThan(o Money) bool { return m.cents > o.cents }
func (m Money) GTE(o Money) bool         { return m.cents >= o.cents }
func (m Money) LessThan(o Money) bool    { return m.cents < o.cents }
func (m Money) LTE(o Money) bool         { return m.cents <= o.cents }

func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsPositive() bool { return m.cents > 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }

func (m Money) Abs() Money {
	if m.cents < 0 {
		return Money{cents: -m.cents}
	}
	return m
}

func (m Money) Neg() Money { return Money{cents: -m.cents} }

// Max returns the larger of m and o.
func Max(m, o Money) Money {
	if m.cents >= o.cents {
		return m
	}
	return o
}
