// Package exchange applies conversion rates to monetary amounts. The
// rate itself comes from a pluggable RateSource; a missing rate is a
// hard failure, never a silently invented fallback.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/money"

	"github.com/redis/go-redis/v9"
)

var ErrRateNotFound = errors.New("conversion rate not found")

// RateSource supplies conversion rates between currency pairs.
type RateSource interface {
	Rate(from, to string) (float64, error)
	Supports(from, to string) bool
}

// Converter scales amounts between currencies.
type Converter struct {
	source RateSource
}

func NewConverter(source RateSource) *Converter {
	if source == nil {
		panic("rate source is required")
	}
	return &Converter{source: source}
}

// Convert scales amount from one currency to another, returning the
// converted amount and the effective rate. Identity (rate 1.0) when the
// currencies match.
func (c *Converter) Convert(amount money.Money, from, to string) (money.Money, float64, error) {
	if from == to {
		return amount, 1.0, nil
	}
	if !c.source.Supports(from, to) {
		return money.Zero, 0, fmt.Errorf("%w: %s/%s", ErrRateNotFound, from, to)
	}
	rate, err := c.source.Rate(from, to)
	if err != nil {
		return money.Zero, 0, fmt.Errorf("rate lookup %s/%s: %w", from, to, err)
	}
	return amount.Mul(rate), rate, nil
}

// StaticSource serves rates from a fixed pair table, keyed "USD/EUR".
type StaticSource struct {
	rates map[string]float64
}

func NewStaticSource(rates map[string]float64) *StaticSource {
	if rates == nil {
		rates = map[string]float64{}
	}
	return &StaticSource{rates: rates}
}

func pairKey(from, to string) string { return from + "/" + to }

func (s *StaticSource) Rate(from, to string) (float64, error) {
	rate, ok := s.rates[pairKey(from, to)]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrRateNotFound, from, to)
	}
	return rate, nil
}

func (s *StaticSource) Supports(from, to string) bool {
	_, ok := s.rates[pairKey(from, to)]
	return ok
}

// CachedSource decorates a RateSource with a redis cache. Cache
// failures fall through to the wrapped source.
type CachedSource struct {
	source RateSource
	client *redis.Client
	ttl    time.Duration
}

func NewCachedSource(source RateSource, client *redis.Client, ttl time.Duration) *CachedSource {
	if source == nil {
		panic("rate source is required")
	}
	if client == nil {
		panic("redis client is required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSource{source: source, client: client, ttl: ttl}
}

func (s *CachedSource) Rate(from, to string) (float64, error) {
	ctx := context.Background()
	key := "rate:" + pairKey(from, to)

	if rate, err := s.client.Get(ctx, key).Float64(); err == nil {
		return rate, nil
	}

	rate, err := s.source.Rate(from, to)
	if err != nil {
		return 0, err
	}
	_ = s.client.Set(ctx, key, rate, s.ttl).Err()
	return rate, nil
}

func (s *CachedSource) Supports(from, to string) bool {
	return s.source.Supports(from, to)
}
