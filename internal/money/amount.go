package money

import "fmt"

// Amount is a Money tagged with its ISO 4217 currency code. Combining
// two Amounts of different currencies is an error rather than a silent
// conversion.
type Amount struct {
	Money
	Currency string
}

// NewAmount builds a currency-tagged value.
func NewAmount(m Money, currency string) Amount {
	return Amount{Money: m, Currency: currency}
}

func (a Amount) check(o Amount) error {
	if a.Currency != o.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, o.Currency)
	}
	return nil
}

func (a Amount) Add(o Amount) (Amount, error) {
	if err := a.check(o); err != nil {
		return Amount{}, err
	}
	return Amount{Money: a.Money.Add(o.Money), Currency: a.Currency}, nil
}

func (a Amount) Sub(o Amount) (Amount, error) {
	if err := a.check(o); err != nil {
		return Amount{}, err
	}
	return Amount{Money: a.Money.Sub(o.Money), Currency: a.Currency}, nil
}

func (a Amount) String() string {
	return a.Money.String() + " " + a.Currency
}
