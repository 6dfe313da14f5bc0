package exchange

import (
	"testing"

	"tally/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertIdentity(t *testing.T) {
	c := NewConverter(NewStaticSource(nil))

	out, rate, err := c.Convert(money.MustParse("100.00"), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, "100.00", out.String())
}

func TestConvertAppliesRate(t *testing.T) {
	c := NewConverter(NewStaticSource(map[string]float64{"USD/EUR": 0.95}))

	out, rate, err := c.Convert(money.MustParse("100.00"), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.95, rate)
	assert.Equal(t, "95.00", out.String())
}

func TestConvertRateNotFound(t *testing.T) {
	c := NewConverter(NewStaticSource(map[string]float64{"USD/EUR": 0.95}))

	// The reverse pair is not implied.
	_, _, err := c.Convert(money.MustParse("100.00"), "EUR", "USD")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestStaticSource(t *testing.T) {
	s := NewStaticSource(map[string]float64{"USD/EUR": 0.95})

	assert.True(t, s.Supports("USD", "EUR"))
	assert.False(t, s.Supports("USD", "GBP"))

	rate, err := s.Rate("USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.95, rate)

	_, err = s.Rate("USD", "GBP")
	assert.ErrorIs(t, err, ErrRateNotFound)
}
