package config

import (
	"testing"
	"time"

	"tally/internal/money"

	"github.com/stretchr/testify/assert"
)

func TestParseRates(t *testing.T) {
	rates := parseRates("USD/EUR=0.95, EUR/USD=1.05,bogus,USD/JPY=-1")
	assert.Equal(t, map[string]float64{
		"USD/EUR": 0.95,
		"EUR/USD": 1.05,
	}, rates)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"USD", "EUR"}, splitList("USD, EUR,"))
	assert.Nil(t, splitList(""))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TALLY_TEST_INT", "42")
	t.Setenv("TALLY_TEST_DUR", "90s")
	t.Setenv("TALLY_TEST_MONEY", "12.34")

	assert.Equal(t, 42, GetIntEnv("TALLY_TEST_INT", 7))
	assert.Equal(t, 7, GetIntEnv("TALLY_TEST_MISSING", 7))
	assert.Equal(t, 90*time.Second, GetDurationEnv("TALLY_TEST_DUR", time.Minute))
	assert.Equal(t, money.MustParse("12.34"), GetMoneyEnv("TALLY_TEST_MONEY", "0"))
	assert.Equal(t, money.Zero, GetMoneyEnv("TALLY_TEST_MISSING", "0"))
}
